package model

// LotStatus is the auction lifecycle state of a lot.
// Transitions only go wait -> active -> closed, never backward.
type LotStatus string

const (
	LotStatusWait   LotStatus = "wait"
	LotStatusActive LotStatus = "active"
	LotStatusClosed LotStatus = "closed"
)

// Lot is a raw catalog record as delivered by a catalog source.
type Lot struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	About       string    `json:"about"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Status      LotStatus `json:"status"`
	Datetime    string    `json:"datetime"`
	Price       int       `json:"price"`
	MinPrice    int       `json:"minPrice"`
	History     []int     `json:"history"`
}

// LotList is the catalog envelope returned by the upstream auction API.
type LotList struct {
	Total int   `json:"total"`
	Items []Lot `json:"items"`
}

// LotDetail is the lot detail fetch result, merged into an already loaded lot.
type LotDetail struct {
	Description string `json:"description"`
	History     []int  `json:"history"`
}
