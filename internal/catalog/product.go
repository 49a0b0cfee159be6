package catalog

import (
	"github.com/google/uuid"

	"github.com/beton-labs/backend-beton/internal/pricing"
)

// Product categories and types carried by the catalog. Category is the
// merchandising bucket; ProductType drives recommendation behaviour.
const (
	TypeConcrete = "concrete"
	TypeMortar   = "mortar"
)

// Product is the catalog entry shared by pricing, recommendation, and cart
// surfaces. Grade and MortarRatio are free-text specification fields parsed
// on demand; absent tier prices mean the tier is not offered.
type Product struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Description   string           `json:"description,omitempty"`
	Category      string           `json:"category"`
	ProductType   string           `json:"productType"`
	Grade         *string          `json:"grade,omitempty"`
	MortarRatio   *string          `json:"mortarRatio,omitempty"`
	Unit          string           `json:"unit"`
	StockQuantity int              `json:"stockQuantity"`
	Prices        pricing.PriceSet `json:"-"`
}

// Sellable reports whether the product carries at least one offered tier.
func (p Product) Sellable() bool {
	return len(pricing.AvailableTiers(p.Prices)) > 0
}
