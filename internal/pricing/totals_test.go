package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(value string) *decimal.Decimal {
	d := dec(value)
	return &d
}

func testCalculator() Calculator {
	return Calculator{
		FreeShippingThreshold: dec("100"),
		FlatShippingFee:       dec("10"),
		TaxRateBps:            600,
	}
}

func TestTotalsEmptySelection(t *testing.T) {
	items := []LineItem{
		{Qty: 2, Selected: false, Prices: PriceSet{Normal: decPtr("25.00")}},
		{Qty: 1, Selected: false, Prices: PriceSet{Normal: decPtr("80.00")}},
	}
	got := testCalculator().Totals(items)
	if !got.Subtotal.IsZero() || !got.Shipping.IsZero() || !got.Tax.IsZero() || !got.Total.IsZero() {
		t.Fatalf("expected zero totals, got %+v", got)
	}
	if got.SelectedCount != 0 {
		t.Fatalf("expected no selected items, got %d", got.SelectedCount)
	}
}

func TestTotalsShippingThreshold(t *testing.T) {
	cases := []struct {
		name     string
		subtotal string
		shipping string
	}{
		{name: "just under threshold", subtotal: "99.99", shipping: "10"},
		{name: "exactly at threshold", subtotal: "100.00", shipping: "0"},
		{name: "over threshold", subtotal: "250.00", shipping: "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items := []LineItem{{Qty: 1, Selected: true, Prices: PriceSet{Normal: decPtr(tc.subtotal)}}}
			got := testCalculator().Totals(items)
			if !got.Shipping.Equal(dec(tc.shipping)) {
				t.Fatalf("subtotal %s: expected shipping %s, got %s", tc.subtotal, tc.shipping, got.Shipping)
			}
		})
	}
}

func TestTotalsTaxAndTotal(t *testing.T) {
	items := []LineItem{
		{Qty: 2, Selected: true, Prices: PriceSet{Normal: decPtr("25.50")}},
		{Qty: 1, Selected: true, Prices: PriceSet{Normal: decPtr("8.49")}},
	}
	got := testCalculator().Totals(items)
	// subtotal 59.49, shipping 10, tax 3.5694 -> 3.57
	if !got.Subtotal.Equal(dec("59.49")) {
		t.Fatalf("unexpected subtotal %s", got.Subtotal)
	}
	if !got.Tax.Equal(dec("3.57")) {
		t.Fatalf("expected tax 3.57, got %s", got.Tax)
	}
	want := got.Subtotal.Add(got.Shipping).Add(got.Tax)
	if !got.Total.Equal(want) {
		t.Fatalf("total %s not consistent with components %s", got.Total, want)
	}
	if got.SelectedCount != 2 {
		t.Fatalf("expected 2 selected line items, got %d", got.SelectedCount)
	}
}

func TestTotalsCountsLineItemsNotQuantity(t *testing.T) {
	items := []LineItem{{Qty: 7, Selected: true, Prices: PriceSet{Normal: decPtr("10.00")}}}
	got := testCalculator().Totals(items)
	if got.SelectedCount != 1 {
		t.Fatalf("expected line item count 1, got %d", got.SelectedCount)
	}
}

func TestTotalsNegativeQtyContributesNothing(t *testing.T) {
	items := []LineItem{
		{Qty: -3, Selected: true, Prices: PriceSet{Normal: decPtr("40.00")}},
		{Qty: 1, Selected: true, Prices: PriceSet{Normal: decPtr("50.00")}},
	}
	got := testCalculator().Totals(items)
	if !got.Subtotal.Equal(dec("50.00")) {
		t.Fatalf("expected subtotal 50.00, got %s", got.Subtotal)
	}
	if got.Total.LessThan(decimal.Zero) {
		t.Fatalf("totals must never be negative, got %s", got.Total)
	}
}

func TestTotalsIdempotent(t *testing.T) {
	items := []LineItem{
		{Qty: 3, Selected: true, PriceType: PricePump, Prices: PriceSet{Normal: decPtr("30.00"), Pump: decPtr("35.00")}},
		{Qty: 1, Selected: false, Prices: PriceSet{Normal: decPtr("99.00")}},
	}
	calc := testCalculator()
	first := calc.Totals(items)
	second := calc.Totals(items)
	if !first.Total.Equal(second.Total) || first.SelectedCount != second.SelectedCount {
		t.Fatalf("expected identical results, got %+v vs %+v", first, second)
	}
}

func TestTotalsUsesSelectedTier(t *testing.T) {
	items := []LineItem{{
		Qty:       2,
		Selected:  true,
		PriceType: PriceTremie1,
		Prices:    PriceSet{Normal: decPtr("100.00"), Tremie1: decPtr("120.00")},
	}}
	got := testCalculator().Totals(items)
	if !got.Subtotal.Equal(dec("240.00")) {
		t.Fatalf("expected tremie pricing 240.00, got %s", got.Subtotal)
	}
}
