package recommend

import (
	"fmt"

	"github.com/beton-labs/backend-beton/internal/catalog"
)

// concreteGradeRule reasons over concrete compressive strength grades. Upsell
// targets the closest higher grade within +10MPa, downsell the closest lower
// grade within -10MPa, plus one mortar alternative.
type concreteGradeRule struct{}

func (concreteGradeRule) Matches(focal catalog.Product) bool {
	if focal.Category != catalog.TypeConcrete || focal.Grade == nil {
		return false
	}
	_, ok := catalog.ParseGrade(*focal.Grade)
	return ok
}

func (concreteGradeRule) Produce(focal catalog.Product, products []catalog.Product) []Result {
	grade, ok := catalog.ParseGrade(derefOr(focal.Grade))
	if !ok {
		return nil
	}

	var (
		results  []Result
		upsell   *catalog.Product
		upGrade  int
		downsell *catalog.Product
		dnGrade  int
	)
	for i := range products {
		p := products[i]
		if p.ID == focal.ID || p.Category != catalog.TypeConcrete || p.Grade == nil {
			continue
		}
		g, ok := catalog.ParseGrade(*p.Grade)
		if !ok {
			continue
		}
		// Closest higher grade, capped at +10 to avoid absurd over-recommendation.
		if g > grade && g <= grade+10 {
			if upsell == nil || g < upGrade {
				upsell, upGrade = &products[i], g
			}
		}
		if g < grade && g >= grade-10 {
			if downsell == nil || g > dnGrade {
				downsell, dnGrade = &products[i], g
			}
		}
	}
	if upsell != nil {
		results = append(results, Result{
			Product: *upsell,
			Reason:  fmt.Sprintf("Suitable for higher strength applications requiring %dMPa", upGrade),
			Type:    TypeUpsell,
			Score:   0.9,
		})
	}
	if downsell != nil {
		results = append(results, Result{
			Product: *downsell,
			Reason:  fmt.Sprintf("Cost-effective option for lighter applications at %dMPa", dnGrade),
			Type:    TypeDownsell,
			Score:   0.8,
		})
	}
	for _, p := range products {
		if p.ID == focal.ID || p.ProductType != catalog.TypeMortar {
			continue
		}
		results = append(results, Result{
			Product: p,
			Reason:  "Consider mortar for wall construction and non-structural applications",
			Type:    TypeAlternative,
			Score:   0.6,
		})
		break
	}
	return results
}

// mortarRatioRule reasons over cement:sand mix ratios. Strength ordering uses
// the cement numerator only, matching how the mixes are merchandised.
type mortarRatioRule struct{}

func (mortarRatioRule) Matches(focal catalog.Product) bool {
	if focal.Category != catalog.TypeMortar || focal.MortarRatio == nil {
		return false
	}
	_, ok := catalog.ParseMortarRatio(*focal.MortarRatio)
	return ok
}

func (mortarRatioRule) Produce(focal catalog.Product, products []catalog.Product) []Result {
	mix, ok := catalog.ParseMortarRatio(derefOr(focal.MortarRatio))
	if !ok {
		return nil
	}

	var (
		results  []Result
		upsell   *catalog.Product
		upMix    catalog.MixRatio
		downsell *catalog.Product
		dnMix    catalog.MixRatio
	)
	for i := range products {
		p := products[i]
		if p.ID == focal.ID || p.Category != catalog.TypeMortar || p.MortarRatio == nil {
			continue
		}
		m, ok := catalog.ParseMortarRatio(*p.MortarRatio)
		if !ok {
			continue
		}
		if m.Cement > mix.Cement {
			if upsell == nil || m.Cement > upMix.Cement {
				upsell, upMix = &products[i], m
			}
		}
		if m.Cement < mix.Cement {
			if downsell == nil || m.Cement < dnMix.Cement {
				downsell, dnMix = &products[i], m
			}
		}
	}
	if upsell != nil {
		results = append(results, Result{
			Product: *upsell,
			Reason:  fmt.Sprintf("Richer %d:%d mix for load-bearing and exposed work", upMix.Cement, upMix.Sand),
			Type:    TypeUpsell,
			Score:   0.9,
		})
	}
	if downsell != nil {
		results = append(results, Result{
			Product: *downsell,
			Reason:  fmt.Sprintf("Economical %d:%d mix for general purpose work", dnMix.Cement, dnMix.Sand),
			Type:    TypeDownsell,
			Score:   0.8,
		})
	}
	for _, p := range products {
		if p.ID == focal.ID || p.ProductType != catalog.TypeConcrete {
			continue
		}
		results = append(results, Result{
			Product: p,
			Reason:  "Consider concrete for structural applications requiring higher strength",
			Type:    TypeAlternative,
			Score:   0.7,
		})
		break
	}
	return results
}

// similarTypeRule always applies and suggests up to two products of the same
// type with a different grade or mix ratio.
type similarTypeRule struct{}

func (similarTypeRule) Matches(catalog.Product) bool { return true }

func (similarTypeRule) Produce(focal catalog.Product, products []catalog.Product) []Result {
	var results []Result
	for _, p := range products {
		if len(results) == 2 {
			break
		}
		if p.ID == focal.ID || p.ProductType != focal.ProductType {
			continue
		}
		if derefOr(p.Grade) == derefOr(focal.Grade) && derefOr(p.MortarRatio) == derefOr(focal.MortarRatio) {
			continue
		}
		results = append(results, Result{
			Product: p,
			Reason:  "Similar product with a different specification",
			Type:    TypeAlternative,
			Score:   0.5,
		})
	}
	return results
}

func derefOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
