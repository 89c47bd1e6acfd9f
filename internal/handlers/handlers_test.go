package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nonncal/ono-tebe-nado/internal/middleware"
	"github.com/nonncal/ono-tebe-nado/internal/model"
	"github.com/nonncal/ono-tebe-nado/internal/service"
	"github.com/nonncal/ono-tebe-nado/internal/session"
	"github.com/nonncal/ono-tebe-nado/pkg/logger"
	"go.uber.org/zap"
)

type fakeSource struct {
	lots      []model.Lot
	details   map[string]model.LotDetail
	submitted []model.Order
	submitErr error
}

func (f *fakeSource) ListLots(ctx context.Context) ([]model.Lot, error) {
	return f.lots, nil
}

func (f *fakeSource) GetLot(ctx context.Context, id string) (model.LotDetail, error) {
	detail, ok := f.details[id]
	if !ok {
		return model.LotDetail{}, errors.New("no detail record")
	}
	return detail, nil
}

func (f *fakeSource) SubmitOrder(ctx context.Context, order model.Order) (model.OrderResult, error) {
	if f.submitErr != nil {
		return model.OrderResult{}, f.submitErr
	}
	f.submitted = append(f.submitted, order)
	return model.OrderResult{ID: "order-1", Total: 450}, nil
}

func testLots() []model.Lot {
	return []model.Lot{
		{ID: "L1", Title: "Мраморный сфинкс", Status: model.LotStatusActive, Price: 100, MinPrice: 15, History: []int{80, 90, 100}},
		{ID: "L2", Title: "Бронзовый петух", Status: model.LotStatusActive, Price: 300, MinPrice: 200, History: []int{250, 280, 300}},
		{ID: "L3", Title: "Чугунная утка", Status: model.LotStatusClosed, Price: 500, MinPrice: 50, History: []int{500}},
	}
}

func newTestServer(t *testing.T, source *fakeSource) *httptest.Server {
	t.Helper()

	log := &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}

	svc, err := service.NewStorefront(source, nil, log)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	lots, err := NewLotHandler(svc)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	orders, err := NewOrderHandler(svc)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	events, err := NewEventHandler(log)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	mux := chi.NewRouter()
	mux.Use(middleware.Session(session.NewStore(time.Minute)))
	mux.HandleFunc("GET /api/v1/lots", lots.GetCatalog)
	mux.HandleFunc("GET /api/v1/lots/{lotId}", lots.OpenLot)
	mux.HandleFunc("POST /api/v1/lots/{lotId}/bids", lots.PlaceBid)
	mux.HandleFunc("GET /api/v1/my/active", lots.ActiveLots)
	mux.HandleFunc("GET /api/v1/my/sold", lots.ClosedLots)
	mux.HandleFunc("GET /api/v1/events", events.Stream)
	mux.HandleFunc("GET /api/v1/basket", orders.GetBasket)
	mux.HandleFunc("PUT /api/v1/basket/{lotId}", orders.AddBasketLot)
	mux.HandleFunc("DELETE /api/v1/basket/{lotId}", orders.RemoveBasketLot)
	mux.HandleFunc("PATCH /api/v1/order", orders.SetOrderField)
	mux.HandleFunc("POST /api/v1/order", orders.SubmitOrder)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// visitor is one client with a stable session cookie.
type visitor struct {
	t   *testing.T
	srv *httptest.Server

	cookie *http.Cookie
}

func newVisitor(t *testing.T, srv *httptest.Server) *visitor {
	return &visitor{t: t, srv: srv}
}

func (v *visitor) do(method, path, body string) *http.Response {
	v.t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req, err := http.NewRequest(method, v.srv.URL+path, reader)
	if err != nil {
		v.t.Fatalf("expected no error, got %v", err)
	}
	if v.cookie != nil {
		req.AddCookie(v.cookie)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		v.t.Fatalf("expected no error, got %v", err)
	}

	for _, c := range res.Cookies() {
		if c.Name == "onotebe_session" {
			v.cookie = c
		}
	}
	return res
}

func decode[T any](t *testing.T, res *http.Response) model.APIResponse[T] {
	t.Helper()
	defer res.Body.Close()

	var payload model.APIResponse[T]
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return payload
}

func TestGetCatalog(t *testing.T) {
	srv := newTestServer(t, &fakeSource{lots: testLots()})
	v := newVisitor(t, srv)

	res := v.do(http.MethodGet, "/api/v1/lots", "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	if v.cookie == nil {
		t.Fatalf("expected a session cookie on first contact")
	}
	if res.Header.Get("X-Request-ID") == "" {
		t.Fatalf("expected a request id header")
	}

	payload := decode[map[string]any](t, res)
	if payload.Status != "success" {
		t.Fatalf("expected success envelope, got %q", payload.Status)
	}
	if total := payload.Data["total"].(float64); total != 3 {
		t.Fatalf("expected 3 lots, got %v", total)
	}
}

func TestOpenLot(t *testing.T) {
	source := &fakeSource{
		lots: testLots(),
		details: map[string]model.LotDetail{
			"L1": {Description: "первый абзац\nвторой абзац", History: []int{70, 80, 100}},
		},
	}
	srv := newTestServer(t, source)
	v := newVisitor(t, srv)
	v.do(http.MethodGet, "/api/v1/lots", "").Body.Close()

	t.Run("known lot", func(t *testing.T) {
		res := v.do(http.MethodGet, "/api/v1/lots/L1", "")
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", res.StatusCode)
		}

		payload := decode[model.LotPreview](t, res)
		if len(payload.Data.Description) != 2 {
			t.Fatalf("expected 2 description paragraphs, got %v", payload.Data.Description)
		}
	})

	t.Run("unknown lot", func(t *testing.T) {
		res := v.do(http.MethodGet, "/api/v1/lots/unknown", "")
		if res.StatusCode != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", res.StatusCode)
		}

		payload := decode[any](t, res)
		if payload.Error == nil || payload.Error.Code != "LOT_NOT_FOUND" {
			t.Fatalf("expected LOT_NOT_FOUND, got %+v", payload.Error)
		}
	})
}

func TestPlaceBid(t *testing.T) {
	newClient := func(t *testing.T) *visitor {
		t.Helper()
		v := newVisitor(t, newTestServer(t, &fakeSource{lots: testLots()}))
		v.do(http.MethodGet, "/api/v1/lots", "").Body.Close()
		return v
	}

	t.Run("accepted bid", func(t *testing.T) {
		v := newClient(t)

		res := v.do(http.MethodPost, "/api/v1/lots/L1/bids", `{"price": 120}`)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", res.StatusCode)
		}

		payload := decode[model.LotView](t, res)
		if payload.Data.Price != 120 || !payload.Data.IsMyBid {
			t.Fatalf("unexpected lot view: %+v", payload.Data)
		}
	})

	t.Run("bid too low", func(t *testing.T) {
		v := newClient(t)

		res := v.do(http.MethodPost, "/api/v1/lots/L1/bids", `{"price": 100}`)
		if res.StatusCode != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", res.StatusCode)
		}

		payload := decode[any](t, res)
		if payload.Error == nil || payload.Error.Code != "BID_TOO_LOW" {
			t.Fatalf("expected BID_TOO_LOW, got %+v", payload.Error)
		}
	})

	t.Run("closed auction", func(t *testing.T) {
		v := newClient(t)

		res := v.do(http.MethodPost, "/api/v1/lots/L3/bids", `{"price": 600}`)
		if res.StatusCode != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", res.StatusCode)
		}

		payload := decode[any](t, res)
		if payload.Error == nil || payload.Error.Code != "AUCTION_CLOSED" {
			t.Fatalf("expected AUCTION_CLOSED, got %+v", payload.Error)
		}
	})

	t.Run("unknown lot", func(t *testing.T) {
		v := newClient(t)

		res := v.do(http.MethodPost, "/api/v1/lots/unknown/bids", `{"price": 600}`)
		if res.StatusCode != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", res.StatusCode)
		}
		res.Body.Close()
	})

	t.Run("malformed body", func(t *testing.T) {
		v := newClient(t)

		res := v.do(http.MethodPost, "/api/v1/lots/L1/bids", `{"price":`)
		if res.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", res.StatusCode)
		}
		res.Body.Close()
	})

	t.Run("non-positive price fails validation", func(t *testing.T) {
		v := newClient(t)

		res := v.do(http.MethodPost, "/api/v1/lots/L1/bids", `{"price": 0}`)
		if res.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", res.StatusCode)
		}

		payload := decode[any](t, res)
		if payload.Error == nil || payload.Error.Code != "VALIDATION_FAILED" {
			t.Fatalf("expected VALIDATION_FAILED, got %+v", payload.Error)
		}
	})

	t.Run("bids track the visitor's session", func(t *testing.T) {
		v := newClient(t)

		v.do(http.MethodPost, "/api/v1/lots/L1/bids", `{"price": 120}`).Body.Close()

		res := v.do(http.MethodGet, "/api/v1/my/active", "")
		payload := decode[map[string]any](t, res)
		if total := payload.Data["total"].(float64); total != 1 {
			t.Fatalf("expected 1 active lot, got %v", total)
		}

		other := newVisitor(t, v.srv)
		other.do(http.MethodGet, "/api/v1/lots", "").Body.Close()
		res = other.do(http.MethodGet, "/api/v1/my/active", "")
		payload = decode[map[string]any](t, res)
		if total := payload.Data["total"].(float64); total != 0 {
			t.Fatalf("expected a fresh session to have no active lots, got %v", total)
		}
	})
}

func TestBasketAndOrder(t *testing.T) {
	source := &fakeSource{lots: testLots()}
	srv := newTestServer(t, source)
	v := newVisitor(t, srv)
	v.do(http.MethodGet, "/api/v1/lots", "").Body.Close()

	res := v.do(http.MethodPut, "/api/v1/basket/L1", "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	res.Body.Close()

	res = v.do(http.MethodPut, "/api/v1/basket/L2", "")
	basket := decode[model.BasketView](t, res)
	if basket.Data.Total != 400 {
		t.Fatalf("expected total 400, got %d", basket.Data.Total)
	}

	res = v.do(http.MethodPut, "/api/v1/basket/unknown", "")
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", res.StatusCode)
	}
	res.Body.Close()

	res = v.do(http.MethodPost, "/api/v1/order", "")
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", res.StatusCode)
	}
	invalid := decode[any](t, res)
	if invalid.Error == nil || len(invalid.Error.Details) != 2 {
		t.Fatalf("expected 2 field errors, got %+v", invalid.Error)
	}

	res = v.do(http.MethodPatch, "/api/v1/order", `{"field": "email", "value": "sphinx@example.com"}`)
	status := decode[model.OrderStatusView](t, res)
	if status.Data.Valid {
		t.Fatalf("expected a draft without a phone to stay invalid")
	}

	res = v.do(http.MethodPatch, "/api/v1/order", `{"field": "address", "value": "nope"}`)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 for an unknown field, got %d", res.StatusCode)
	}
	res.Body.Close()

	res = v.do(http.MethodPatch, "/api/v1/order", `{"field": "phone", "value": "+7 900 000-00-00"}`)
	status = decode[model.OrderStatusView](t, res)
	if !status.Data.Valid {
		t.Fatalf("expected a complete draft to be valid, got %+v", status.Data)
	}

	res = v.do(http.MethodPost, "/api/v1/order", "")
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", res.StatusCode)
	}
	result := decode[model.OrderResult](t, res)
	if result.Data.ID != "order-1" {
		t.Fatalf("expected order id order-1, got %q", result.Data.ID)
	}

	if len(source.submitted) != 1 || len(source.submitted[0].Items) != 2 {
		t.Fatalf("expected one submitted order with 2 items, got %+v", source.submitted)
	}

	res = v.do(http.MethodGet, "/api/v1/basket", "")
	basket = decode[model.BasketView](t, res)
	if len(basket.Data.Items) != 0 {
		t.Fatalf("expected basket cleared after checkout, got %v", basket.Data.Items)
	}
}

func TestEventStream(t *testing.T) {
	srv := newTestServer(t, &fakeSource{lots: testLots()})
	v := newVisitor(t, srv)
	v.do(http.MethodGet, "/api/v1/lots", "").Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	req.AddCookie(v.cookie)

	stream, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer stream.Body.Close()

	if ct := stream.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected an event stream, got %q", ct)
	}

	v.do(http.MethodPost, "/api/v1/lots/L1/bids", `{"price": 120}`).Body.Close()

	scanner := bufio.NewScanner(stream.Body)
	var name, data string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") {
			name = strings.TrimPrefix(line, "event: ")
		}
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(line, "data: ")
			break
		}
	}

	if name != "auction:changed" {
		t.Fatalf("expected an auction:changed frame, got %q", name)
	}

	var change struct {
		ID    string `json:"id"`
		Price int    `json:"price"`
	}
	if err := json.Unmarshal([]byte(data), &change); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if change.ID != "L1" || change.Price != 120 {
		t.Fatalf("unexpected frame payload: %+v", change)
	}
}
