package pricing

import "testing"

func TestResolveFallsBackToNormal(t *testing.T) {
	prices := PriceSet{Normal: decPtr("55.00")}
	got := Resolve(prices, PricePump)
	if !got.Equal(dec("55.00")) {
		t.Fatalf("expected fallback to normal price, got %s", got)
	}
}

func TestResolvePrefersRequestedTier(t *testing.T) {
	prices := PriceSet{Normal: decPtr("55.00"), Pump: decPtr("70.00")}
	got := Resolve(prices, PricePump)
	if !got.Equal(dec("70.00")) {
		t.Fatalf("expected pump price 70.00, got %s", got)
	}
}

func TestResolveNoPricesYieldsZero(t *testing.T) {
	got := Resolve(PriceSet{}, PriceTremie3)
	if !got.IsZero() {
		t.Fatalf("expected zero for missing pricing, got %s", got)
	}
}

func TestAvailableTiersOrderAndDefault(t *testing.T) {
	prices := PriceSet{
		Pump:    decPtr("70.00"),
		Normal:  decPtr("55.00"),
		Tremie2: decPtr("90.00"),
	}
	tiers := AvailableTiers(prices)
	if len(tiers) != 3 {
		t.Fatalf("expected 3 offered tiers, got %d", len(tiers))
	}
	wantOrder := []PriceType{PriceNormal, PricePump, PriceTremie2}
	for i, tier := range tiers {
		if tier.Type != wantOrder[i] {
			t.Fatalf("position %d: expected %s, got %s", i, wantOrder[i], tier.Type)
		}
	}
	if tiers[0].Type != PriceNormal {
		t.Fatalf("default tier should be the first offered, got %s", tiers[0].Type)
	}
}

func TestAvailableTiersSkipsAbsent(t *testing.T) {
	tiers := AvailableTiers(PriceSet{Tremie1: decPtr("80.00")})
	if len(tiers) != 1 || tiers[0].Type != PriceTremie1 {
		t.Fatalf("unexpected tiers %+v", tiers)
	}
	if tiers[0].Label != "Tremie 1" {
		t.Fatalf("unexpected label %q", tiers[0].Label)
	}
}

func TestParsePriceType(t *testing.T) {
	cases := map[string]PriceType{
		"pump":     PricePump,
		" Pump ":   PricePump,
		"tremie_2": PriceTremie2,
		"normal":   PriceNormal,
		"":         PriceNormal,
		"unknown":  PriceNormal,
	}
	for input, want := range cases {
		if got := ParsePriceType(input); got != want {
			t.Fatalf("parse %q: expected %s, got %s", input, want, got)
		}
	}
}
