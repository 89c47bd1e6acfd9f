package model

// Order is the draft order the visitor fills before checkout.
// Items holds lot ids with set semantics, duplicates are never stored.
type Order struct {
	Email string   `json:"email"`
	Phone string   `json:"phone"`
	Items []string `json:"items"`
}

// OrderResult is the acknowledgement for a submitted order.
type OrderResult struct {
	ID    string `json:"id"`
	Total int    `json:"total"`
}
