package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/nonncal/ono-tebe-nado/internal/model"
	"github.com/nonncal/ono-tebe-nado/internal/service"
	"github.com/nonncal/ono-tebe-nado/internal/state"
)

type OrderHandler struct {
	svc *service.Storefront
}

func NewOrderHandler(svc *service.Storefront) (*OrderHandler, error) {
	return &OrderHandler{
		svc: svc,
	}, nil
}

// GetBasket godoc
//
//	@Summary		The visitor's basket with its total
//	@Tags			Order
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Router			/basket [get]
func (h *OrderHandler) GetBasket(w http.ResponseWriter, r *http.Request) {
	sess := requireSession(w, r)
	if sess == nil {
		return
	}

	basket, err := h.svc.Basket(sess)
	if err != nil {
		RespondErrorJSON(w, r, http.StatusInternalServerError, ErrInternalServer.Error(), "basket references an unknown lot", nil)
		return
	}

	RespondSuccessJSON(w, r, http.StatusOK, "Basket", basket)
}

// AddBasketLot godoc
//
//	@Summary		Add a lot to the basket
//	@Tags			Order
//	@Produce		json
//	@Param			lotId	path		string	true	"Lot ID"
//	@Success		200		{object}	map[string]any
//	@Failure		404		{object}	map[string]any
//	@Router			/basket/{lotId} [put]
func (h *OrderHandler) AddBasketLot(w http.ResponseWriter, r *http.Request) {
	h.toggleBasket(w, r, true)
}

// RemoveBasketLot godoc
//
//	@Summary		Remove a lot from the basket
//	@Tags			Order
//	@Produce		json
//	@Param			lotId	path		string	true	"Lot ID"
//	@Success		200		{object}	map[string]any
//	@Router			/basket/{lotId} [delete]
func (h *OrderHandler) RemoveBasketLot(w http.ResponseWriter, r *http.Request) {
	h.toggleBasket(w, r, false)
}

func (h *OrderHandler) toggleBasket(w http.ResponseWriter, r *http.Request, included bool) {
	sess := requireSession(w, r)
	if sess == nil {
		return
	}

	lotID := chi.URLParam(r, lotParamKey)
	if lotID == "" {
		RespondErrorJSON(w, r, http.StatusBadRequest, ErrMissingParam.Error(), "lot id is required", nil)
		return
	}

	basket, err := h.svc.ToggleBasket(sess, lotID, included)
	if err != nil {
		if errors.Is(err, service.ErrLotNotFound) {
			RespondErrorJSON(w, r, http.StatusNotFound, ErrLotNotFound.Error(), "lot is not in the catalog", nil)
			return
		}
		RespondErrorJSON(w, r, http.StatusInternalServerError, ErrInternalServer.Error(), "Internal server error", nil)
		return
	}

	RespondSuccessJSON(w, r, http.StatusOK, "Basket updated", basket)
}

// SetOrderField godoc
//
//	@Summary		Update one field of the draft order
//	@Description	Set email or phone on the draft order and run a validation pass
//	@Tags			Order
//	@Accept			json
//	@Produce		json
//	@Param			field	body		model.OrderFieldRequest	true	"Field update"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	map[string]any
//	@Router			/order [patch]
func (h *OrderHandler) SetOrderField(w http.ResponseWriter, r *http.Request) {
	sess := requireSession(w, r)
	if sess == nil {
		return
	}

	var req model.OrderFieldRequest
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

	status, err := h.svc.SetOrderField(sess, req.Field, req.Value)
	if err != nil {
		if errors.Is(err, state.ErrUnknownOrderField) {
			RespondErrorJSON(w, r, http.StatusBadRequest, ErrInvalidRequest.Error(), "unknown order field", nil)
			return
		}
		RespondErrorJSON(w, r, http.StatusInternalServerError, ErrInternalServer.Error(), "Internal server error", nil)
		return
	}

	RespondSuccessJSON(w, r, http.StatusOK, "Order updated", status)
}

// SubmitOrder godoc
//
//	@Summary		Submit the order
//	@Description	Validate the draft order, hand it to the catalog source and clear the basket
//	@Tags			Order
//	@Produce		json
//	@Success		201	{object}	map[string]any
//	@Failure		422	{object}	map[string]any
//	@Failure		502	{object}	map[string]any
//	@Router			/order [post]
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	sess := requireSession(w, r)
	if sess == nil {
		return
	}

	result, err := h.svc.SubmitOrder(r.Context(), sess)
	if err != nil {
		var invalid *service.OrderValidationError
		if errors.As(err, &invalid) {
			var details []model.ErrorDetails
			for field, issue := range invalid.Fields {
				details = append(details, model.ErrorDetails{Field: field, Issue: issue})
			}
			RespondErrorJSON(w, r, http.StatusUnprocessableEntity, ErrOrderInvalid.Error(), "order validation failed", details)
			return
		}
		RespondErrorJSON(w, r, http.StatusBadGateway, ErrOrderFailed.Error(), "failed to submit the order", nil)
		return
	}

	RespondSuccessJSON(w, r, http.StatusCreated, "Order submitted", result)
}
