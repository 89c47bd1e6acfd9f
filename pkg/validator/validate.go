package validator

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// GetValidator	returns the singleton instance of the validator
func GetValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Struct validates a struct by its `validate` tags.
func Struct(v any) error {
	return GetValidator().Struct(v)
}

// Var validates a single value against the given tag, e.g. "required".
func Var(v any, tag string) error {
	return GetValidator().Var(v, tag)
}
