package catalog

import (
	"context"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/beton-labs/backend-beton/internal/pricing"
)

type fakeStore struct {
	products   []Product
	listCalls  int
	lastParams ListParams
}

func (f *fakeStore) List(ctx context.Context, params ListParams) ([]Product, error) {
	f.listCalls++
	f.lastParams = params
	return f.products, nil
}

func (f *fakeStore) Count(ctx context.Context, params ListParams) (int64, error) {
	return int64(len(f.products)), nil
}

func (f *fakeStore) GetBySlug(ctx context.Context, slug string) (Product, error) {
	for _, p := range f.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (f *fakeStore) All(ctx context.Context) ([]Product, error) {
	return f.products, nil
}

func testProduct(name, slug string) Product {
	normal := decimal.NewFromInt(230)
	pump := decimal.NewFromInt(255)
	grade := "N20"
	return Product{
		ID:            uuid.New(),
		Name:          name,
		Slug:          slug,
		Category:      "concrete",
		ProductType:   TypeConcrete,
		Grade:         &grade,
		Unit:          "m3",
		StockQuantity: 12,
		Prices:        pricing.PriceSet{Normal: &normal, Pump: &pump},
	}
}

func newTestService(t *testing.T, store *fakeStore) *Service {
	t.Helper()
	svc, err := NewService(ServiceConfig{Store: store, DefaultPage: 1, DefaultLimit: 20, MaxLimit: 100})
	require.NoError(t, err)
	return svc
}

func TestParseListFilters(t *testing.T) {
	svc := newTestService(t, &fakeStore{})

	filters, err := svc.ParseListFilters(url.Values{"q": {" mix "}, "type": {"Concrete"}, "page": {"2"}, "limit": {"500"}})
	require.NoError(t, err)
	require.Equal(t, "mix", filters.Query)
	require.Equal(t, TypeConcrete, filters.ProductType)
	require.Equal(t, 2, filters.Page)
	require.Equal(t, 100, filters.Limit, "limit should clamp to max")

	_, err = svc.ParseListFilters(url.Values{"type": {"cement"}})
	require.Error(t, err)

	_, err = svc.ParseListFilters(url.Values{"page": {"0"}})
	require.Error(t, err)

	_, err = svc.ParseListFilters(url.Values{"inStock": {"maybe"}})
	require.Error(t, err)
}

func TestListProductsPagination(t *testing.T) {
	store := &fakeStore{products: []Product{testProduct("Ready-Mix Concrete N20", "ready-mix-concrete-n20")}}
	svc := newTestService(t, store)

	result, err := svc.ListProducts(context.Background(), ListFilters{Page: 3, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 20, store.lastParams.Offset)
	require.Equal(t, 10, store.lastParams.Limit)
	require.Equal(t, int64(1), result.Total)
	require.Len(t, result.Items, 1)

	item := result.Items[0]
	require.True(t, item.InStock)
	require.Len(t, item.Tiers, 2)
	require.Equal(t, pricing.PriceNormal, item.Tiers[0].Type)
	require.Equal(t, pricing.PricePump, item.Tiers[1].Type)
}

func TestGetDetailNotFound(t *testing.T) {
	svc := newTestService(t, &fakeStore{})

	_, err := svc.GetDetail(context.Background(), "missing")
	require.Error(t, err)

	_, err = svc.GetDetail(context.Background(), "  ")
	require.Error(t, err)
}

func TestGetDetailIncludesTiers(t *testing.T) {
	store := &fakeStore{products: []Product{testProduct("Ready-Mix Concrete N20", "ready-mix-concrete-n20")}}
	svc := newTestService(t, store)

	detail, err := svc.GetDetail(context.Background(), "ready-mix-concrete-n20")
	require.NoError(t, err)
	require.Equal(t, 12, detail.StockQuantity)
	require.Equal(t, "Normal Delivery", detail.Tiers[0].Label)
}
