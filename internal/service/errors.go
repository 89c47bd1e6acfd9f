package service

import (
	"errors"
	"fmt"
)

var (
	// lots
	ErrLotNotFound     = errors.New("lot not found")
	ErrLotClosed       = errors.New("auction is closed for bids")
	ErrInsufficientBid = errors.New("bid must be greater than current price")
)

// OrderValidationError reports a rejected order submission together with the
// per-field messages from the validation pass.
type OrderValidationError struct {
	Fields map[string]string
}

func (e *OrderValidationError) Error() string {
	return fmt.Sprintf("order has %d validation errors", len(e.Fields))
}
