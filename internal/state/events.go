package state

// Event names emitted by the state core. Subscribers treat the names and the
// payload types below as a stable contract.
const (
	EventCatalogChanged    = "items:changed"
	EventPreviewChanged    = "preview:changed"
	EventAuctionChanged    = "auction:changed"
	EventOrderReady        = "order:ready"
	EventFormErrorsChanged = "formErrors:changed"
)

// CatalogChange is the payload of EventCatalogChanged.
type CatalogChange struct {
	Catalog []*LotItem `json:"catalog"`
}

// PreviewChange is the payload of EventPreviewChanged.
type PreviewChange struct {
	Item *LotItem `json:"item"`
}

// BidChange is the payload of EventAuctionChanged, emitted on every placed
// bid whether or not the lot closed.
type BidChange struct {
	ID    string `json:"id"`
	Price int    `json:"price"`
}

// EventOrderReady carries the full draft order (model.Order) and
// EventFormErrorsChanged the full error map (map[string]string).
