package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/beton-labs/backend-beton/internal/common"
	"github.com/beton-labs/backend-beton/internal/obs"
	"github.com/beton-labs/backend-beton/internal/pricing"
)

// Handler wires cart services to HTTP.
type Handler struct {
	Svc        *Service
	Calculator pricing.Calculator
	Currency   string
}

// Create creates or returns a guest cart identifier.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var payload struct {
		AnonID string `json:"anonId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)
	anonID := strings.TrimSpace(payload.AnonID)
	if anonID == "" {
		anonID = uuid.NewString()
	}
	cart, err := h.Svc.EnsureCart(r.Context(), nil, &anonID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{
			"cartId": cart.ID.String(),
			"anonId": anonID,
		},
	})
}

// Get returns cart contents plus a pricing preview over the selected lines.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	id := chi.URLParam(r, "id")
	cart, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	items, err := h.Svc.Items(r.Context(), cart.ID.String())
	if err != nil {
		h.writeError(w, err)
		return
	}

	totals := h.Calculator.Totals(LineItems(items))
	if obs.CartTotalsTotal != nil {
		obs.CartTotalsTotal.Inc()
	}

	responseItems := make([]map[string]any, 0, len(items))
	for _, it := range items {
		responseItems = append(responseItems, map[string]any{
			"id":        it.ID.String(),
			"productId": it.ProductID.String(),
			"name":      it.Name,
			"slug":      it.Slug,
			"unit":      it.Unit,
			"qty":       it.Qty,
			"selected":  it.Selected,
			"priceType": it.PriceType,
			"unitPrice": it.UnitPrice,
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"cartId":   cart.ID.String(),
			"items":    responseItems,
			"totals":   totals,
			"currency": h.Currency,
		},
	})
}

// AddItem handles POST /carts/{id}/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var payload struct {
		ProductID string `json:"productId"`
		PriceType string `json:"priceType"`
		Qty       int    `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON payload", nil)
		return
	}
	tier := pricing.ParsePriceType(payload.PriceType)
	if err := h.Svc.AddItem(r.Context(), chi.URLParam(r, "id"), payload.ProductID, tier, payload.Qty); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": map[string]any{"status": "added"}})
}

// UpdateItem handles PATCH /carts/{id}/items/{itemId} for quantity and selection.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var payload struct {
		Qty      *int  `json:"qty"`
		Selected *bool `json:"selected"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON payload", nil)
		return
	}
	cartID := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemId")
	if payload.Qty == nil && payload.Selected == nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "qty or selected is required", nil)
		return
	}
	if payload.Qty != nil {
		if err := h.Svc.UpdateQty(r.Context(), cartID, itemID, *payload.Qty); err != nil {
			h.writeError(w, err)
			return
		}
	}
	if payload.Selected != nil {
		if err := h.Svc.SetSelected(r.Context(), cartID, itemID, *payload.Selected); err != nil {
			h.writeError(w, err)
			return
		}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"status": "updated"}})
}

// RemoveItem handles DELETE /carts/{id}/items/{itemId}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	if err := h.Svc.RemoveItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId")); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"status": "removed"}})
}

// Merge handles POST /carts/merge, folding a guest cart into a user cart.
func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var payload struct {
		GuestCartID string `json:"guestCartId"`
		UserID      string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON payload", nil)
		return
	}
	cartID, err := h.Svc.Merge(r.Context(), payload.GuestCartID, payload.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"cartId": cartID}})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart operation failed", nil)
	}
}
