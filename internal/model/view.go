package model

// LotView is a render-ready projection of one lot for the visitor's session:
// canonical fields plus everything the card templates derive from them.
type LotView struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	About         string    `json:"about"`
	Image         string    `json:"image"`
	Status        LotStatus `json:"status"`
	StatusText    string    `json:"statusText"`
	StatusLabel   string    `json:"statusLabel"`
	TimeStatus    string    `json:"timeStatus"`
	Datetime      string    `json:"datetime"`
	Price         int       `json:"price"`
	NextBid       int       `json:"nextBid"`
	IsParticipant bool      `json:"isParticipant"`
	IsMyBid       bool      `json:"isMyBid"`
}

// LotPreview is the detail view of the lot currently under preview.
type LotPreview struct {
	LotView
	Description []string `json:"description"`
	History     []int    `json:"history"`
}

// BasketView is the visitor's basket with its running total.
type BasketView struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

// OrderStatusView reports the draft order after a field update together
// with the outcome of the validation pass.
type OrderStatusView struct {
	Order  Order             `json:"order"`
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}
