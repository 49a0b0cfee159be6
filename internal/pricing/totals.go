package pricing

import "github.com/shopspring/decimal"

// LineItem describes a cart line used for total calculation. Prices is the
// pricing snapshot recorded when the item was added to the cart.
type LineItem struct {
	Qty       int
	Selected  bool
	PriceType PriceType
	Prices    PriceSet
}

// Totals aggregates the computed pricing components. All amounts are rounded
// to two decimal places.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	Shipping      decimal.Decimal `json:"shipping"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	SelectedCount int             `json:"selectedCount"`
}

// Calculator derives cart totals from line items. The zero value applies no
// tax and free shipping; callers provide policy from configuration.
type Calculator struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRateBps            int
}

// Totals computes subtotal, shipping, tax and grand total over the selected
// line items. An empty selection yields zero totals. Intermediate sums keep
// full precision; rounding happens once per component at the end.
func (c Calculator) Totals(items []LineItem) Totals {
	subtotal := decimal.Zero
	selected := 0
	for _, it := range items {
		if !it.Selected {
			continue
		}
		selected++
		if it.Qty <= 0 {
			continue
		}
		unit := Resolve(it.Prices, it.PriceType)
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	if selected == 0 {
		return Totals{Subtotal: decimal.Zero, Shipping: decimal.Zero, Tax: decimal.Zero, Total: decimal.Zero}
	}

	shipping := decimal.Zero
	if subtotal.LessThan(c.FreeShippingThreshold) {
		shipping = c.FlatShippingFee
	}
	tax := subtotal.Mul(decimal.NewFromInt(int64(c.TaxRateBps))).Div(decimal.NewFromInt(10000))

	sub := subtotal.Round(2)
	ship := shipping.Round(2)
	taxed := tax.Round(2)
	return Totals{
		Subtotal:      sub,
		Shipping:      ship,
		Tax:           taxed,
		Total:         sub.Add(ship).Add(taxed),
		SelectedCount: selected,
	}
}
