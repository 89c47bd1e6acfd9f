package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nonncal/ono-tebe-nado/internal/cache"
	"github.com/nonncal/ono-tebe-nado/internal/model"
	"github.com/nonncal/ono-tebe-nado/internal/session"
	"github.com/nonncal/ono-tebe-nado/internal/state"
	"github.com/nonncal/ono-tebe-nado/pkg/config"
	"github.com/nonncal/ono-tebe-nado/pkg/logger"
)

// CatalogSource delivers raw lot records and accepts order submissions.
// Two implementations exist: the upstream auction API client and the
// Postgres lot repository.
type CatalogSource interface {
	ListLots(ctx context.Context) ([]model.Lot, error)
	GetLot(ctx context.Context, id string) (model.LotDetail, error)
	SubmitOrder(ctx context.Context, order model.Order) (model.OrderResult, error)
}

// Storefront drives one visitor session's AppState from the HTTP boundary.
// Every method takes the session lock around its state access, the state
// core itself stays single-threaded.
type Storefront struct {
	source CatalogSource
	cache  cache.Cacher
	log    *logger.Logger
}

// NewStorefront wires the service. cache may be nil, catalog loads then
// always hit the source.
func NewStorefront(source CatalogSource, c cache.Cacher, log *logger.Logger) (*Storefront, error) {
	return &Storefront{
		source: source,
		cache:  c,
		log:    log,
	}, nil
}

// LoadCatalog replaces the session catalog with fresh records and returns
// render-ready views of every lot.
func (s *Storefront) LoadCatalog(ctx context.Context, sess *session.Session) ([]model.LotView, error) {
	lots, err := s.fetchLots(ctx)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	sess.State.SetCatalog(lots)
	return lotViews(sess.State.Catalog), nil
}

// fetchLots serves the raw catalog through the cache when one is configured.
// Cache failures degrade to a source fetch, they never fail the request.
func (s *Storefront) fetchLots(ctx context.Context) ([]model.Lot, error) {
	if s.cache != nil {
		raw, hit, err := s.cache.Get(ctx, config.CatalogCacheKey)
		if err != nil {
			s.log.Warnw("catalog cache read failed", "error", err)
		} else if hit {
			var lots []model.Lot
			if err := json.Unmarshal([]byte(raw), &lots); err == nil {
				return lots, nil
			}
			s.log.Warnw("catalog cache entry is corrupt, refetching")
		}
	}

	lots, err := s.source.ListLots(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(lots); err == nil {
			if err := s.cache.Set(ctx, config.CatalogCacheKey, string(raw), config.DefaultCatalogCacheTTL); err != nil {
				s.log.Warnw("catalog cache write failed", "error", err)
			}
		}
	}

	return lots, nil
}

// OpenLot merges the lot's detail record and marks it as the preview.
func (s *Storefront) OpenLot(ctx context.Context, sess *session.Session, id string) (model.LotPreview, error) {
	sess.Lock()
	defer sess.Unlock()

	lot := sess.State.LotByID(id)
	if lot == nil {
		return model.LotPreview{}, fmt.Errorf("%w: %s", ErrLotNotFound, id)
	}

	detail, err := s.source.GetLot(ctx, id)
	if err != nil {
		return model.LotPreview{}, fmt.Errorf("open lot: %w", err)
	}

	lot.MergeDetail(detail)
	sess.State.SetPreview(lot)

	return lotPreview(lot), nil
}

// PlaceBid applies the monotonicity guard and the closed-lot guard, then
// lets the lot take the bid. The core trusts the caller, so the guards live
// here at the boundary.
func (s *Storefront) PlaceBid(sess *session.Session, id string, price int) (model.LotView, error) {
	sess.Lock()
	defer sess.Unlock()

	lot := sess.State.LotByID(id)
	if lot == nil {
		return model.LotView{}, fmt.Errorf("%w: %s", ErrLotNotFound, id)
	}
	if lot.Status == model.LotStatusClosed {
		return model.LotView{}, fmt.Errorf("%w: %s", ErrLotClosed, id)
	}
	if price <= lot.Price {
		return model.LotView{}, fmt.Errorf("%w: offered %d, current %d", ErrInsufficientBid, price, lot.Price)
	}

	lot.PlaceBid(price)
	return lotView(lot), nil
}

// ActiveLots returns the active lots the visitor is bidding on.
func (s *Storefront) ActiveLots(sess *session.Session) []model.LotView {
	sess.Lock()
	defer sess.Unlock()
	return lotViews(sess.State.ActiveLots())
}

// ClosedLots returns the closed lots the visitor has won.
func (s *Storefront) ClosedLots(sess *session.Session) []model.LotView {
	sess.Lock()
	defer sess.Unlock()
	return lotViews(sess.State.ClosedLots())
}

// ToggleBasket adds or removes one lot from the basket. Only rendered
// catalog lots may enter the basket, which keeps every basket id backed by
// a catalog entry.
func (s *Storefront) ToggleBasket(sess *session.Session, id string, included bool) (model.BasketView, error) {
	sess.Lock()
	defer sess.Unlock()

	if included && sess.State.LotByID(id) == nil {
		return model.BasketView{}, fmt.Errorf("%w: %s", ErrLotNotFound, id)
	}

	sess.State.ToggleOrderLot(id, included)
	return basketView(sess.State)
}

// Basket returns the current basket with its total.
func (s *Storefront) Basket(sess *session.Session) (model.BasketView, error) {
	sess.Lock()
	defer sess.Unlock()
	return basketView(sess.State)
}

// SetOrderField updates one draft order field and runs a validation pass.
func (s *Storefront) SetOrderField(sess *session.Session, field, value string) (model.OrderStatusView, error) {
	sess.Lock()
	defer sess.Unlock()

	if err := sess.State.SetOrderField(field, value); err != nil {
		return model.OrderStatusView{}, err
	}
	valid := sess.State.ValidateOrder()

	return model.OrderStatusView{
		Order:  sess.State.Order,
		Valid:  valid,
		Errors: sess.State.FormErrors,
	}, nil
}

// SubmitOrder validates the draft, hands it to the catalog source and
// resets the visitor's participation in every basketed lot.
func (s *Storefront) SubmitOrder(ctx context.Context, sess *session.Session) (model.OrderResult, error) {
	sess.Lock()
	defer sess.Unlock()

	if !sess.State.ValidateOrder() {
		return model.OrderResult{}, &OrderValidationError{Fields: sess.State.FormErrors}
	}

	result, err := s.source.SubmitOrder(ctx, sess.State.Order)
	if err != nil {
		return model.OrderResult{}, fmt.Errorf("submit order: %w", err)
	}

	if err := sess.State.ClearBasket(); err != nil {
		return model.OrderResult{}, err
	}

	return result, nil
}

func lotView(l *state.LotItem) model.LotView {
	return model.LotView{
		ID:            l.ID,
		Title:         l.Title,
		About:         l.About,
		Image:         l.Image,
		Status:        l.Status,
		StatusText:    l.StatusText(),
		StatusLabel:   l.StatusLabel(),
		TimeStatus:    l.TimeStatus(),
		Datetime:      l.Datetime,
		Price:         l.Price,
		NextBid:       l.NextBid(),
		IsParticipant: l.IsParticipant(),
		IsMyBid:       l.IsMyBid(),
	}
}

func lotViews(lots []*state.LotItem) []model.LotView {
	views := make([]model.LotView, 0, len(lots))
	for _, lot := range lots {
		views = append(views, lotView(lot))
	}
	return views
}

func lotPreview(l *state.LotItem) model.LotPreview {
	history := make([]int, len(l.History))
	copy(history, l.History)

	return model.LotPreview{
		LotView:     lotView(l),
		Description: strings.Split(l.Description, "\n"),
		History:     history,
	}
}

func basketView(st *state.AppState) (model.BasketView, error) {
	total, err := st.Total()
	if err != nil {
		return model.BasketView{}, err
	}

	items := make([]string, len(st.Order.Items))
	copy(items, st.Order.Items)

	return model.BasketView{Items: items, Total: total}, nil
}
