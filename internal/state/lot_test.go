package state

import (
	"testing"
	"time"

	"github.com/nonncal/ono-tebe-nado/internal/events"
	"github.com/nonncal/ono-tebe-nado/internal/model"
)

func fixedNow() time.Time {
	return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func makeLot(t *testing.T, rec model.Lot) (*LotItem, *events.Emitter) {
	t.Helper()
	em := events.New()
	return newLotItem(rec, em, fixedNow), em
}

func TestLotItem_PlaceBid(t *testing.T) {
	t.Run("records price and participation", func(t *testing.T) {
		lot, _ := makeLot(t, model.Lot{
			ID: "L1", Status: model.LotStatusActive,
			Price: 100, MinPrice: 50, History: []int{60, 70, 100},
		})

		lot.PlaceBid(120)

		if lot.Price != 120 {
			t.Fatalf("expected price 120, got %d", lot.Price)
		}
		if !lot.IsParticipant() {
			t.Fatalf("expected visitor to be a participant after bidding")
		}
		if !lot.IsMyBid() {
			t.Fatalf("expected visitor to hold the leading bid")
		}
	})

	t.Run("history keeps a fixed-length window", func(t *testing.T) {
		lot, _ := makeLot(t, model.Lot{
			ID: "L1", Status: model.LotStatusActive,
			Price: 100, MinPrice: 1000, History: []int{60, 70, 100},
		})

		for i, price := range []int{110, 125, 140, 160} {
			lot.PlaceBid(price)
			if len(lot.History) != 3 {
				t.Fatalf("after bid %d: expected history length 3, got %d", i, len(lot.History))
			}
		}

		want := []int{125, 140, 160}
		for i, price := range want {
			if lot.History[i] != price {
				t.Fatalf("expected history %v, got %v", want, lot.History)
			}
		}
	})

	t.Run("closes when the bid reaches ten times the floor", func(t *testing.T) {
		lot, _ := makeLot(t, model.Lot{
			ID: "L1", Status: model.LotStatusActive,
			Price: 100, MinPrice: 15, History: []int{100},
		})

		// 15*10 = 150: the threshold is inclusive.
		lot.PlaceBid(150)

		if lot.Status != model.LotStatusClosed {
			t.Fatalf("expected status closed at the inclusive threshold, got %s", lot.Status)
		}
	})

	t.Run("stays active below the threshold", func(t *testing.T) {
		lot, _ := makeLot(t, model.Lot{
			ID: "L1", Status: model.LotStatusActive,
			Price: 100, MinPrice: 15, History: []int{100},
		})

		lot.PlaceBid(149)

		if lot.Status != model.LotStatusActive {
			t.Fatalf("expected status active below the threshold, got %s", lot.Status)
		}
	})

	t.Run("emits auction:changed with id and price", func(t *testing.T) {
		lot, em := makeLot(t, model.Lot{
			ID: "L1", Status: model.LotStatusActive,
			Price: 100, MinPrice: 15, History: []int{100},
		})

		var got []BidChange
		em.On(EventAuctionChanged, func(_ string, data any) {
			got = append(got, data.(BidChange))
		})

		lot.PlaceBid(120)
		lot.PlaceBid(150) // closes the lot, still emits

		if len(got) != 2 {
			t.Fatalf("expected 2 emissions, got %d", len(got))
		}
		if got[0] != (BidChange{ID: "L1", Price: 120}) {
			t.Fatalf("unexpected first payload: %+v", got[0])
		}
		if got[1] != (BidChange{ID: "L1", Price: 150}) {
			t.Fatalf("unexpected second payload: %+v", got[1])
		}
	})
}

func TestLotItem_ClearBid(t *testing.T) {
	lot, _ := makeLot(t, model.Lot{
		ID: "L1", Status: model.LotStatusActive,
		Price: 100, MinPrice: 15, History: []int{100},
	})

	lot.PlaceBid(150)
	lot.ClearBid()

	if lot.IsParticipant() {
		t.Fatalf("expected participation reset after ClearBid")
	}
	if lot.Price != 150 {
		t.Fatalf("expected price untouched by ClearBid, got %d", lot.Price)
	}
	if lot.Status != model.LotStatusClosed {
		t.Fatalf("expected status untouched by ClearBid, got %s", lot.Status)
	}
}

func TestLotItem_ParticipationInvariants(t *testing.T) {
	lot, _ := makeLot(t, model.Lot{
		ID: "L1", Status: model.LotStatusActive,
		Price: 100, MinPrice: 1000, History: []int{100},
	})

	check := func(step string) {
		t.Helper()
		if lot.IsParticipant() != (lot.myLastBid > 0) {
			t.Fatalf("%s: IsParticipant disagrees with myLastBid=%d", step, lot.myLastBid)
		}
		if lot.IsMyBid() != (lot.myLastBid == lot.Price) {
			t.Fatalf("%s: IsMyBid disagrees with myLastBid=%d price=%d", step, lot.myLastBid, lot.Price)
		}
	}

	check("fresh")
	lot.PlaceBid(110)
	check("after bid")
	lot.ClearBid()
	check("after clear")
	lot.PlaceBid(120)
	lot.PlaceBid(130)
	check("after rebid")
}

func TestLotItem_NextBid(t *testing.T) {
	cases := []struct {
		price int
		want  int
	}{
		{100, 110},
		{150, 165},
		{999, 1098}, // floor(1098.9)
		{1, 1},      // floor(1.1)
	}

	for _, tc := range cases {
		lot, _ := makeLot(t, model.Lot{ID: "L1", Price: tc.price, MinPrice: 1 << 30})
		if got := lot.NextBid(); got != tc.want {
			t.Fatalf("NextBid for price %d: expected %d, got %d", tc.price, tc.want, got)
		}
	}
}

func TestLotItem_MergeDetail(t *testing.T) {
	lot, _ := makeLot(t, model.Lot{
		ID: "L1", About: "teaser", Description: "",
		Price: 100, MinPrice: 1000, History: []int{100},
	})

	lot.MergeDetail(model.LotDetail{
		Description: "первый абзац\nвторой абзац",
		History:     []int{80, 90, 100},
	})

	if lot.Description != "первый абзац\nвторой абзац" {
		t.Fatalf("expected description merged, got %q", lot.Description)
	}
	if len(lot.History) != 3 {
		t.Fatalf("expected history replaced, got %v", lot.History)
	}
	if lot.About != "teaser" {
		t.Fatalf("expected about untouched, got %q", lot.About)
	}
}

func TestLotItem_DerivedLabels(t *testing.T) {
	base := model.Lot{
		ID: "L1", Datetime: "2025-03-05T12:00:00Z",
		Price: 12500, MinPrice: 1 << 30, History: []int{12500},
	}

	t.Run("closed lot", func(t *testing.T) {
		rec := base
		rec.Status = model.LotStatusClosed
		lot, _ := makeLot(t, rec)

		if got := lot.StatusText(); got != "Продано за 12 500₽" {
			t.Fatalf("unexpected status text: %q", got)
		}
		if got := lot.StatusLabel(); got != "Закрыто 5 марта в 12:00" {
			t.Fatalf("unexpected status label: %q", got)
		}
		if got := lot.TimeStatus(); got != "Аукцион завершён" {
			t.Fatalf("unexpected time status: %q", got)
		}
	})

	t.Run("active lot counts down", func(t *testing.T) {
		rec := base
		rec.Status = model.LotStatusActive
		lot, _ := makeLot(t, rec)

		if got := lot.StatusLabel(); got != "Открыто до 5 марта в 12:00" {
			t.Fatalf("unexpected status label: %q", got)
		}
		// fixedNow is 2025-03-01 12:00 UTC, four days before close.
		if got := lot.TimeStatus(); got != "4д 0ч 0 мин 0 сек" {
			t.Fatalf("unexpected time status: %q", got)
		}
	})

	t.Run("waiting lot", func(t *testing.T) {
		rec := base
		rec.Status = model.LotStatusWait
		lot, _ := makeLot(t, rec)

		if got := lot.StatusText(); got != "До начала аукциона" {
			t.Fatalf("unexpected status text: %q", got)
		}
		if got := lot.StatusLabel(); got != "Откроется 5 марта в 12:00" {
			t.Fatalf("unexpected status label: %q", got)
		}
	})
}
