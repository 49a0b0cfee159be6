package recommend

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/beton-labs/backend-beton/internal/catalog"
	"github.com/beton-labs/backend-beton/internal/common"
	"github.com/beton-labs/backend-beton/internal/obs"
)

// CatalogProvider supplies the focal product and the full catalog.
type CatalogProvider interface {
	Product(ctx context.Context, slug string) (catalog.Product, error)
	Catalog(ctx context.Context) ([]catalog.Product, error)
}

// Handler exposes the recommendation endpoint.
type Handler struct {
	Provider CatalogProvider
	Engine   Engine
	Cache    *catalog.Cache
}

// ForProduct handles GET /api/v1/products/{slug}/recommendations.
func (h *Handler) ForProduct(w http.ResponseWriter, r *http.Request) {
	if h.Provider == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "recommendation provider not configured", nil)
		return
	}
	slug := chi.URLParam(r, "slug")
	cacheKey := "recommend:product:" + slug
	if h.Cache != nil {
		var cached []Group
		ok, err := h.Cache.GetJSON(r.Context(), cacheKey, &cached)
		if err == nil && ok {
			common.JSON(w, http.StatusOK, map[string]any{"data": cached})
			return
		}
	}

	focal, err := h.Provider.Product(r.Context(), slug)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load product", nil)
		return
	}
	products, err := h.Provider.Catalog(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load catalog", nil)
		return
	}

	groups := h.Engine.Recommendations(focal, products)
	if obs.RecommendationsTotal != nil {
		obs.RecommendationsTotal.WithLabelValues(focal.ProductType).Inc()
	}
	if h.Cache != nil {
		_ = h.Cache.SetJSON(r.Context(), cacheKey, groups)
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": groups})
}
