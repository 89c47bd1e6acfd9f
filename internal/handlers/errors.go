package handlers

import "errors"

var (
	// common error code
	ErrInternalServer = errors.New("INTERNAL_SERVER_ERROR")
	ErrInvalidRequest = errors.New("VALIDATION_FAILED")
	ErrInvalidJson    = errors.New("INVALID_JSON_FORMAT")
	ErrMissingParam   = errors.New("MISSING_PARAM")
	ErrNoSession      = errors.New("SESSION_MISSING")

	// lot error code
	ErrLotNotFound = errors.New("LOT_NOT_FOUND")
	ErrLotClosed   = errors.New("AUCTION_CLOSED")
	ErrBidLow      = errors.New("BID_TOO_LOW")

	// order error code
	ErrOrderInvalid = errors.New("ORDER_VALIDATION_FAILED")
	ErrOrderFailed  = errors.New("ORDER_SUBMISSION_FAILED")

	// catalog error code
	ErrCatalogLoad = errors.New("CATALOG_SOURCE_ERROR")

	// event stream error code
	ErrNoStreaming = errors.New("STREAMING_UNSUPPORTED")
)
