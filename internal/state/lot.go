package state

import (
	"fmt"
	"math"
	"time"

	"github.com/nonncal/ono-tebe-nado/internal/events"
	"github.com/nonncal/ono-tebe-nado/internal/model"
)

// LotItem is one auction lot together with the visitor's bidding relationship
// to it. Lots are materialized in bulk by AppState.SetCatalog and share the
// session's emitter, so their own mutations can be observed independently.
type LotItem struct {
	events *events.Emitter
	now    func() time.Time

	ID          string          `json:"id"`
	Title       string          `json:"title"`
	About       string          `json:"about"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Status      model.LotStatus `json:"status"`
	Datetime    string          `json:"datetime"`
	Price       int             `json:"price"`
	MinPrice    int             `json:"minPrice"`
	History     []int           `json:"history"`

	// Last price this visitor bid; 0 means never bid, so 0 is a
	// placeholder and not a legitimate bid value.
	myLastBid int
}

func newLotItem(rec model.Lot, em *events.Emitter, now func() time.Time) *LotItem {
	history := make([]int, len(rec.History))
	copy(history, rec.History)

	return &LotItem{
		events:      em,
		now:         now,
		ID:          rec.ID,
		Title:       rec.Title,
		About:       rec.About,
		Description: rec.Description,
		Image:       rec.Image,
		Status:      rec.Status,
		Datetime:    rec.Datetime,
		Price:       rec.Price,
		MinPrice:    rec.MinPrice,
		History:     history,
	}
}

// PlaceBid records price as the current price and the visitor's last bid and
// slides it into the fixed-length price history. A bid reaching ten times the
// floor price closes the auction on the spot. The caller is trusted to pass a
// sane bid; monotonicity is enforced one layer up. Always emits
// EventAuctionChanged, whether or not the lot closed.
func (l *LotItem) PlaceBid(price int) {
	l.Price = price
	l.myLastBid = price

	if len(l.History) == 0 {
		l.History = []int{price}
	} else {
		window := make([]int, 0, len(l.History))
		window = append(window, l.History[1:]...)
		l.History = append(window, price)
	}

	if l.Price >= l.MinPrice*10 {
		l.Status = model.LotStatusClosed
	}

	l.events.Emit(EventAuctionChanged, BidChange{ID: l.ID, Price: price})
}

// ClearBid resets the visitor's participation without touching price or
// status. No event is emitted here; the caller follows up with a
// catalog-level notification when one is due.
func (l *LotItem) ClearBid() {
	l.myLastBid = 0
}

// MergeDetail folds a lot detail fetch result into the lot.
func (l *LotItem) MergeDetail(d model.LotDetail) {
	l.Description = d.Description
	history := make([]int, len(d.History))
	copy(history, d.History)
	l.History = history
}

// IsParticipant reports whether the visitor has ever bid on this lot.
func (l *LotItem) IsParticipant() bool {
	return l.myLastBid > 0
}

// IsMyBid reports whether the visitor currently holds the leading bid.
func (l *LotItem) IsMyBid() bool {
	return l.myLastBid == l.Price
}

// NextBid is the minimum legal next bid, 10% above the current price,
// rounded down.
func (l *LotItem) NextBid() int {
	return int(math.Floor(float64(l.Price) * 1.1))
}

// StatusText is the banner text for the lot card.
func (l *LotItem) StatusText() string {
	switch l.Status {
	case model.LotStatusClosed:
		return fmt.Sprintf("Продано за %s₽", FormatNumber(l.Price))
	case model.LotStatusActive:
		return "До закрытия аукциона: "
	case model.LotStatusWait:
		return "До начала аукциона"
	default:
		return ""
	}
}

// StatusLabel is the human-readable lifecycle label with the lot's date.
func (l *LotItem) StatusLabel() string {
	switch l.Status {
	case model.LotStatusClosed:
		return fmt.Sprintf("Закрыто %s", FormatRuDatetime(l.Datetime))
	case model.LotStatusActive:
		return fmt.Sprintf("Открыто до %s", FormatRuDatetime(l.Datetime))
	case model.LotStatusWait:
		return fmt.Sprintf("Откроется %s", FormatRuDatetime(l.Datetime))
	default:
		return string(l.Status)
	}
}

// TimeStatus is the countdown to the lot's datetime, or the closed banner.
func (l *LotItem) TimeStatus() string {
	if l.Status == model.LotStatusClosed {
		return "Аукцион завершён"
	}
	t, ok := ParseLotTime(l.Datetime)
	if !ok {
		return l.Datetime
	}
	return FormatCountdown(t.Sub(l.now()))
}
