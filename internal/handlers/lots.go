package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/nonncal/ono-tebe-nado/internal/middleware"
	"github.com/nonncal/ono-tebe-nado/internal/model"
	"github.com/nonncal/ono-tebe-nado/internal/service"
	"github.com/nonncal/ono-tebe-nado/internal/session"
	pkgvalidator "github.com/nonncal/ono-tebe-nado/pkg/validator"
)

const lotParamKey string = "lotId"

var validate = pkgvalidator.GetValidator()

type LotHandler struct {
	svc *service.Storefront
}

func NewLotHandler(svc *service.Storefront) (*LotHandler, error) {
	return &LotHandler{
		svc: svc,
	}, nil
}

// requireSession pulls the visitor session off the context. A nil return
// means the response is already written.
func requireSession(w http.ResponseWriter, r *http.Request) *session.Session {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		RespondErrorJSON(w, r, http.StatusInternalServerError, ErrNoSession.Error(), "session middleware did not run", nil)
		return nil
	}
	return sess
}

// GetCatalog godoc
//
//	@Summary		Load the lot catalog
//	@Description	Reload the session catalog from the catalog source
//	@Tags			Lots
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Failure		502	{object}	map[string]any
//	@Router			/lots [get]
func (h *LotHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	sess := requireSession(w, r)
	if sess == nil {
		return
	}

	catalog, err := h.svc.LoadCatalog(r.Context(), sess)
	if err != nil {
		RespondErrorJSON(w, r, http.StatusBadGateway, ErrCatalogLoad.Error(), "failed to load the catalog", nil)
		return
	}

	resp := map[string]any{
		"total": len(catalog),
		"items": catalog,
	}
	RespondSuccessJSON(w, r, http.StatusOK, "Catalog loaded", resp)
}

// OpenLot godoc
//
//	@Summary		Open one lot in detail view
//	@Description	Merge the lot detail record and mark the lot as previewed
//	@Tags			Lots
//	@Produce		json
//	@Param			lotId	path		string	true	"Lot ID"
//	@Success		200		{object}	map[string]any
//	@Failure		404		{object}	map[string]any
//	@Router			/lots/{lotId} [get]
func (h *LotHandler) OpenLot(w http.ResponseWriter, r *http.Request) {
	sess := requireSession(w, r)
	if sess == nil {
		return
	}

	lotID := chi.URLParam(r, lotParamKey)
	if lotID == "" {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrMissingParam.Error(), "lot id is required", nil)
		return
	}

	preview, err := h.svc.OpenLot(r.Context(), sess, lotID)
	if err != nil {
		if errors.Is(err, service.ErrLotNotFound) {
			RespondErrorJSON(w, r, http.StatusNotFound, ErrLotNotFound.Error(), "lot is not in the catalog", nil)
			return
		}
		RespondErrorJSON(w, r, http.StatusBadGateway, ErrCatalogLoad.Error(), "failed to load the lot detail", nil)
		return
	}

	RespondSuccessJSON(w, r, http.StatusOK, "Lot opened", preview)
}

// PlaceBid godoc
//
//	@Summary		Place a bid on a lot
//	@Description	Record the visitor's bid; the auction closes when the bid reaches ten times the floor price
//	@Tags			Lots
//	@Accept			json
//	@Produce		json
//	@Param			lotId	path		string					true	"Lot ID"
//	@Param			bid		body		model.PlaceBidRequest	true	"Bid price"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	map[string]any
//	@Failure		404		{object}	map[string]any
//	@Failure		409		{object}	map[string]any
//	@Router			/lots/{lotId}/bids [post]
func (h *LotHandler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	sess := requireSession(w, r)
	if sess == nil {
		return
	}

	lotID := chi.URLParam(r, lotParamKey)
	if lotID == "" {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrMissingParam.Error(), "lot id is required", nil)
		return
	}

	var req model.PlaceBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrInvalidJson.Error(), "invalid json format", nil)
		return
	}

	if err := validate.Struct(req); err != nil {
		var details []model.ErrorDetails
		if validErrs, ok := err.(validator.ValidationErrors); ok {
			for _, vErr := range validErrs {
				details = append(details, model.ErrorDetails{
					Field: vErr.Field(),
					Issue: fmt.Sprintf("failed on tag '%s' with param '%s'", vErr.Tag(), vErr.Param()),
				})
			}
		}
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrInvalidRequest.Error(), "Input validation failed", details)
		return
	}

	view, err := h.svc.PlaceBid(sess, lotID, req.Price)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLotNotFound):
			RespondErrorJSON(w, r, http.StatusNotFound, ErrLotNotFound.Error(), "lot is not in the catalog", nil)
		case errors.Is(err, service.ErrLotClosed):
			RespondErrorJSON(w, r, http.StatusConflict, ErrLotClosed.Error(), "the auction for this lot has closed", nil)
		case errors.Is(err, service.ErrInsufficientBid):
			RespondErrorJSON(w, r, http.StatusConflict, ErrBidLow.Error(), "Your bid must be higher than the current price", nil)
		default:
			RespondErrorJSON(w, r, http.StatusInternalServerError, ErrInternalServer.Error(), "Internal server error", nil)
		}
		return
	}

	RespondSuccessJSON(w, r, http.StatusOK, "Bid placed", view)
}

// ActiveLots godoc
//
//	@Summary		Lots the visitor is bidding on
//	@Tags			Lots
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Router			/my/active [get]
func (h *LotHandler) ActiveLots(w http.ResponseWriter, r *http.Request) {
	sess := requireSession(w, r)
	if sess == nil {
		return
	}

	lots := h.svc.ActiveLots(sess)
	resp := map[string]any{
		"total": len(lots),
		"items": lots,
	}
	RespondSuccessJSON(w, r, http.StatusOK, "Active lots", resp)
}

// ClosedLots godoc
//
//	@Summary		Closed lots the visitor has won
//	@Tags			Lots
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Router			/my/sold [get]
func (h *LotHandler) ClosedLots(w http.ResponseWriter, r *http.Request) {
	sess := requireSession(w, r)
	if sess == nil {
		return
	}

	lots := h.svc.ClosedLots(sess)
	resp := map[string]any{
		"total": len(lots),
		"items": lots,
	}
	RespondSuccessJSON(w, r, http.StatusOK, "Sold lots", resp)
}
