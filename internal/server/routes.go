package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nonncal/ono-tebe-nado/internal/handlers"
)

func (s *Server) LotRoutes(mux *chi.Mux, lots *handlers.LotHandler, events *handlers.EventHandler) {
	mux.HandleFunc("GET /api/v1/lots", lots.GetCatalog)
	mux.HandleFunc("GET /api/v1/lots/{lotId}", lots.OpenLot)
	mux.HandleFunc("POST /api/v1/lots/{lotId}/bids", lots.PlaceBid)
	mux.HandleFunc("GET /api/v1/my/active", lots.ActiveLots)
	mux.HandleFunc("GET /api/v1/my/sold", lots.ClosedLots)
	mux.HandleFunc("GET /api/v1/events", events.Stream)
}

func (s *Server) OrderRoutes(mux *chi.Mux, orders *handlers.OrderHandler) {
	mux.HandleFunc("GET /api/v1/basket", orders.GetBasket)
	mux.HandleFunc("PUT /api/v1/basket/{lotId}", orders.AddBasketLot)
	mux.HandleFunc("DELETE /api/v1/basket/{lotId}", orders.RemoveBasketLot)
	mux.HandleFunc("PATCH /api/v1/order", orders.SetOrderField)
	mux.HandleFunc("POST /api/v1/order", orders.SubmitOrder)
}

func (s *Server) CommonRoutes(mux *chi.Mux) {
	mux.HandleFunc("GET /api/v1/health", healthCheck)
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"message": "ok",
		"time":    time.Now().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	json.NewEncoder(w).Encode(resp)

}
