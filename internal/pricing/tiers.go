package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PriceType identifies a delivery method a product can be priced under.
type PriceType string

// Delivery tiers in their canonical presentation order.
const (
	PriceNormal  PriceType = "normal"
	PricePump    PriceType = "pump"
	PriceTremie1 PriceType = "tremie_1"
	PriceTremie2 PriceType = "tremie_2"
	PriceTremie3 PriceType = "tremie_3"
)

var tierOrder = []PriceType{PriceNormal, PricePump, PriceTremie1, PriceTremie2, PriceTremie3}

var tierLabels = map[PriceType]string{
	PriceNormal:  "Normal Delivery",
	PricePump:    "Pump Delivery",
	PriceTremie1: "Tremie 1",
	PriceTremie2: "Tremie 2",
	PriceTremie3: "Tremie 3",
}

// ParsePriceType normalises a raw tier string. Unknown values fall back to the
// normal tier so a stale client can never select a price that does not exist.
func ParsePriceType(value string) PriceType {
	switch PriceType(strings.ToLower(strings.TrimSpace(value))) {
	case PricePump:
		return PricePump
	case PriceTremie1:
		return PriceTremie1
	case PriceTremie2:
		return PriceTremie2
	case PriceTremie3:
		return PriceTremie3
	default:
		return PriceNormal
	}
}

// Label returns the human readable name for the tier.
func (t PriceType) Label() string {
	if label, ok := tierLabels[t]; ok {
		return label
	}
	return tierLabels[PriceNormal]
}

// PriceSet carries the per-tier unit prices of a product. A nil entry means the
// tier is not offered, never that it is free.
type PriceSet struct {
	Normal  *decimal.Decimal
	Pump    *decimal.Decimal
	Tremie1 *decimal.Decimal
	Tremie2 *decimal.Decimal
	Tremie3 *decimal.Decimal
}

func (p PriceSet) at(tier PriceType) *decimal.Decimal {
	switch tier {
	case PricePump:
		return p.Pump
	case PriceTremie1:
		return p.Tremie1
	case PriceTremie2:
		return p.Tremie2
	case PriceTremie3:
		return p.Tremie3
	default:
		return p.Normal
	}
}

// Resolve returns the unit price for the requested tier, falling back to the
// normal price when the tier is absent, and zero when no price exists at all.
func Resolve(prices PriceSet, tier PriceType) decimal.Decimal {
	if v := prices.at(tier); v != nil {
		return *v
	}
	if prices.Normal != nil {
		return *prices.Normal
	}
	return decimal.Zero
}

// TierPrice pairs an offered tier with its price and display label.
type TierPrice struct {
	Type  PriceType       `json:"type"`
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

// AvailableTiers enumerates the offered tiers in canonical order. The first
// entry is the sensible default when the caller has not chosen a tier.
func AvailableTiers(prices PriceSet) []TierPrice {
	tiers := make([]TierPrice, 0, len(tierOrder))
	for _, tier := range tierOrder {
		if v := prices.at(tier); v != nil {
			tiers = append(tiers, TierPrice{Type: tier, Label: tier.Label(), Price: *v})
		}
	}
	return tiers
}
