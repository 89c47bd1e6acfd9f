package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/nonncal/ono-tebe-nado/internal/events"
	"github.com/nonncal/ono-tebe-nado/internal/model"
	"github.com/nonncal/ono-tebe-nado/pkg/validator"
)

// ErrLotMissing reports a basket id with no backing catalog entry. That is a
// broken invariant on the caller's side, not a user-facing error.
var ErrLotMissing = errors.New("lot is not in the catalog")

// ErrUnknownOrderField reports a SetOrderField call for a field the draft
// order does not have.
var ErrUnknownOrderField = errors.New("unknown order field")

// AppState is the aggregate root of one visitor session: the catalog, the
// basket and draft order, validation state and the current preview. It is
// explicitly constructed and passed around; no shared global exists. The
// struct itself is single-threaded, callers running it from concurrent
// handlers serialize access with the session's lock.
type AppState struct {
	events *events.Emitter
	now    func() time.Time

	Catalog    []*LotItem
	Order      model.Order
	FormErrors map[string]string
	Preview    string // lot id under detail view, empty when none
}

// Option configures an AppState.
type Option func(*AppState)

// WithClock overrides the time source used for countdown labels.
func WithClock(now func() time.Time) Option {
	return func(s *AppState) {
		s.now = now
	}
}

// New constructs an AppState bound to the given emitter.
func New(em *events.Emitter, opts ...Option) *AppState {
	s := &AppState{
		events:     em,
		now:        time.Now,
		FormErrors: map[string]string{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetCatalog replaces the catalog wholesale with lots built from the given
// records. Every lot shares the session emitter. Emits EventCatalogChanged.
func (s *AppState) SetCatalog(items []model.Lot) {
	catalog := make([]*LotItem, 0, len(items))
	for _, rec := range items {
		catalog = append(catalog, newLotItem(rec, s.events, s.now))
	}
	s.Catalog = catalog

	s.events.Emit(EventCatalogChanged, CatalogChange{Catalog: s.Catalog})
}

// LotByID returns the catalog entry with the given id, or nil.
func (s *AppState) LotByID(id string) *LotItem {
	for _, lot := range s.Catalog {
		if lot.ID == id {
			return lot
		}
	}
	return nil
}

// SetPreview records which lot is under detail view and emits
// EventPreviewChanged.
func (s *AppState) SetPreview(item *LotItem) {
	s.Preview = item.ID
	s.events.Emit(EventPreviewChanged, PreviewChange{Item: item})
}

// ToggleOrderLot adds or removes the id from the basket. Set semantics:
// adding twice or removing an absent id is a no-op.
func (s *AppState) ToggleOrderLot(id string, included bool) {
	if included {
		for _, existing := range s.Order.Items {
			if existing == id {
				return
			}
		}
		s.Order.Items = append(s.Order.Items, id)
		return
	}

	items := make([]string, 0, len(s.Order.Items))
	for _, existing := range s.Order.Items {
		if existing != id {
			items = append(items, existing)
		}
	}
	s.Order.Items = items
}

// ClearBasket removes every basketed lot and resets the visitor's bid on it,
// leaving price and status untouched. The id list is snapshotted first so
// removing entries does not skip or duplicate any.
func (s *AppState) ClearBasket() error {
	ids := make([]string, len(s.Order.Items))
	copy(ids, s.Order.Items)

	for _, id := range ids {
		s.ToggleOrderLot(id, false)
		lot := s.LotByID(id)
		if lot == nil {
			return fmt.Errorf("%w: %q", ErrLotMissing, id)
		}
		lot.ClearBid()
	}
	return nil
}

// Total sums the current price of every basketed lot.
func (s *AppState) Total() (int, error) {
	total := 0
	for _, id := range s.Order.Items {
		lot := s.LotByID(id)
		if lot == nil {
			return 0, fmt.Errorf("%w: %q", ErrLotMissing, id)
		}
		total += lot.Price
	}
	return total, nil
}

// ActiveLots returns the lots the visitor is currently bidding on.
func (s *AppState) ActiveLots() []*LotItem {
	lots := []*LotItem{}
	for _, lot := range s.Catalog {
		if lot.Status == model.LotStatusActive && lot.IsParticipant() {
			lots = append(lots, lot)
		}
	}
	return lots
}

// ClosedLots returns the closed lots the visitor has won.
func (s *AppState) ClosedLots() []*LotItem {
	lots := []*LotItem{}
	for _, lot := range s.Catalog {
		if lot.Status == model.LotStatusClosed && lot.IsMyBid() {
			lots = append(lots, lot)
		}
	}
	return lots
}

// SetOrderField updates one field of the draft order and emits
// EventOrderReady with the full draft. The event signals "the order has a
// new value", not that the order is valid.
func (s *AppState) SetOrderField(field, value string) error {
	switch field {
	case "email":
		s.Order.Email = value
	case "phone":
		s.Order.Phone = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOrderField, field)
	}

	s.events.Emit(EventOrderReady, s.Order)
	return nil
}

// ValidateOrder recomputes FormErrors from scratch, replacing the previous
// map so fields that became valid are cleared. Emits EventFormErrorsChanged
// and reports whether the order is valid.
func (s *AppState) ValidateOrder() bool {
	errs := map[string]string{}

	if err := validator.Var(s.Order.Email, "required"); err != nil {
		errs["email"] = "Необходимо указать email"
	}
	if err := validator.Var(s.Order.Phone, "required"); err != nil {
		errs["phone"] = "Необходимо указать телефон"
	}

	s.FormErrors = errs
	s.events.Emit(EventFormErrorsChanged, s.FormErrors)
	return len(errs) == 0
}
