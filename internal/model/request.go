package model

// PlaceBidRequest is the body of POST /lots/{lotId}/bids.
type PlaceBidRequest struct {
	Price int `json:"price" validate:"required,gt=0"`
}

// OrderFieldRequest is the body of PATCH /order.
type OrderFieldRequest struct {
	Field string `json:"field" validate:"required,oneof=email phone"`
	Value string `json:"value"`
}
