package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/beton-labs/backend-beton/internal/common"
	"github.com/beton-labs/backend-beton/internal/pricing"
)

type querier interface {
	List(ctx context.Context, params ListParams) ([]Product, error)
	Count(ctx context.Context, params ListParams) (int64, error)
	GetBySlug(ctx context.Context, slug string) (Product, error)
	All(ctx context.Context) ([]Product, error)
}

// Service orchestrates catalog queries, DTO assembly, and caching.
type Service struct {
	store        querier
	cache        *Cache
	defaultPage  int
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store        querier
	Cache        *Cache
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	defaultPage := cfg.DefaultPage
	if defaultPage < 1 {
		defaultPage = 1
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{
		store:        cfg.Store,
		cache:        cfg.Cache,
		defaultPage:  defaultPage,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// ListFilters captures normalised query filters plus pagination.
type ListFilters struct {
	Query       string
	Category    string
	ProductType string
	InStock     *bool
	Page        int
	Limit       int
}

// ListItem is the public list payload for a product.
type ListItem struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Slug        string              `json:"slug"`
	Category    string              `json:"category"`
	ProductType string              `json:"productType"`
	Grade       *string             `json:"grade,omitempty"`
	MortarRatio *string             `json:"mortarRatio,omitempty"`
	Unit        string              `json:"unit"`
	InStock     bool                `json:"inStock"`
	Tiers       []pricing.TierPrice `json:"tiers"`
}

// Detail is the public detail payload for a product.
type Detail struct {
	ListItem
	Description   string `json:"description,omitempty"`
	StockQuantity int    `json:"stockQuantity"`
}

// ListResult contains list data and pagination metadata.
type ListResult struct {
	Items []ListItem
	Total int64
	Page  int
	Limit int
}

// ParseListFilters normalises raw query values into strongly typed filters.
func (s *Service) ParseListFilters(values url.Values) (ListFilters, error) {
	filters := ListFilters{
		Page:  s.defaultPage,
		Limit: s.defaultLimit,
	}
	filters.Query = strings.TrimSpace(values.Get("q"))
	filters.Category = strings.TrimSpace(values.Get("category"))
	filters.ProductType = strings.ToLower(strings.TrimSpace(values.Get("type")))

	if filters.ProductType != "" && filters.ProductType != TypeConcrete && filters.ProductType != TypeMortar {
		return filters, badRequest("type", "type must be concrete or mortar", nil)
	}
	if v := strings.TrimSpace(values.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return filters, badRequest("page", "page must be a positive integer", err)
		}
		filters.Page = page
	}
	limit := s.defaultLimit
	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 {
			return filters, badRequest("limit", "limit must be a positive integer", err)
		}
		limit = l
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	filters.Limit = limit

	if v := strings.TrimSpace(values.Get("inStock")); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return filters, badRequest("inStock", "inStock must be true or false", err)
		}
		filters.InStock = &b
	}
	return filters, nil
}

// ListProducts returns the filtered product list with pagination metadata.
func (s *Service) ListProducts(ctx context.Context, filters ListFilters) (ListResult, error) {
	key, shouldUseCache := s.listCacheKey(filters)
	if shouldUseCache && s.cache != nil {
		var cached cachedList
		ok, err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil && ok {
			return ListResult{Items: cached.Items, Total: cached.Total, Page: filters.Page, Limit: filters.Limit}, nil
		}
	}

	params := ListParams{
		Query:       filters.Query,
		Category:    filters.Category,
		ProductType: filters.ProductType,
		InStock:     filters.InStock,
		Limit:       filters.Limit,
		Offset:      (filters.Page - 1) * filters.Limit,
	}
	total, err := s.store.Count(ctx, params)
	if err != nil {
		return ListResult{}, err
	}
	products, err := s.store.List(ctx, params)
	if err != nil {
		return ListResult{}, err
	}
	items := make([]ListItem, 0, len(products))
	for _, p := range products {
		items = append(items, toListItem(p))
	}
	result := ListResult{Items: items, Total: total, Page: filters.Page, Limit: filters.Limit}
	if shouldUseCache && s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, cachedList{Items: items, Total: total})
	}
	return result, nil
}

// GetDetail returns the full product payload including offered delivery tiers.
func (s *Service) GetDetail(ctx context.Context, slug string) (Detail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Detail{}, badRequest("slug", "slug is required", nil)
	}
	cacheKey := detailCacheKey(slug)
	if s.cache != nil {
		var cached Detail
		ok, err := s.cache.GetJSON(ctx, cacheKey, &cached)
		if err == nil && ok {
			return cached, nil
		}
	}
	product, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Detail{}, &common.AppError{Code: "NOT_FOUND", Message: "product not found", HTTPStatus: http.StatusNotFound, Err: err}
		}
		return Detail{}, err
	}
	detail := Detail{
		ListItem:      toListItem(product),
		Description:   product.Description,
		StockQuantity: product.StockQuantity,
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, cacheKey, detail)
	}
	return detail, nil
}

// Catalog exposes the raw product set for the recommendation engine.
func (s *Service) Catalog(ctx context.Context) ([]Product, error) {
	return s.store.All(ctx)
}

// Product loads a single raw product by slug.
func (s *Service) Product(ctx context.Context, slug string) (Product, error) {
	return s.store.GetBySlug(ctx, strings.TrimSpace(slug))
}

func toListItem(p Product) ListItem {
	return ListItem{
		ID:          p.ID.String(),
		Name:        p.Name,
		Slug:        p.Slug,
		Category:    p.Category,
		ProductType: p.ProductType,
		Grade:       p.Grade,
		MortarRatio: p.MortarRatio,
		Unit:        p.Unit,
		InStock:     p.StockQuantity > 0,
		Tiers:       pricing.AvailableTiers(p.Prices),
	}
}

type cachedList struct {
	Items []ListItem `json:"items"`
	Total int64      `json:"total"`
}

func (s *Service) listCacheKey(filters ListFilters) (string, bool) {
	if filters.Page != s.defaultPage || filters.Limit != s.defaultLimit {
		return "", false
	}
	if filters.Query != "" || filters.Category != "" || filters.ProductType != "" || filters.InStock != nil {
		return "", false
	}
	return "catalog:products:list:front", true
}

func detailCacheKey(slug string) string {
	return "catalog:products:detail:" + slug
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "y":
		return true, nil
	case "false", "0", "no", "n":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean: %s", value)
	}
}

func badRequest(field, message string, err error) *common.AppError {
	return &common.AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
		Details: map[string]any{
			"field": field,
		},
	}
}
