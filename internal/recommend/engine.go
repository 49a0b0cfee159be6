package recommend

import (
	"sort"

	"github.com/beton-labs/backend-beton/internal/catalog"
)

// Type tags how a recommendation relates to the focal product.
type Type string

// Recommendation relationship tags.
const (
	TypeUpsell      Type = "upsell"
	TypeDownsell    Type = "downsell"
	TypeAlternative Type = "alternative"
	TypeComplement  Type = "complement"
)

// Result is a single recommendation with its ranking score in [0,1].
type Result struct {
	Product catalog.Product `json:"product"`
	Reason  string          `json:"reason"`
	Type    Type            `json:"type"`
	Score   float64         `json:"score"`
}

// Group presents ranked recommendations in a labeled bucket.
type Group struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Products    []Result `json:"products"`
}

// Rule is one entry in the recommendation pipeline. Matches guards whether the
// rule applies to the focal product; Produce yields its candidates.
type Rule interface {
	Matches(focal catalog.Product) bool
	Produce(focal catalog.Product, products []catalog.Product) []Result
}

// Engine evaluates an ordered rule pipeline over the product catalog. It holds
// no mutable state and is safe for concurrent use.
type Engine struct {
	rules []Rule
}

// NewEngine returns an engine with the default rule set. Rule order matters:
// earlier rules win de-duplication ties.
func NewEngine() Engine {
	return Engine{rules: []Rule{
		concreteGradeRule{},
		mortarRatioRule{},
		similarTypeRule{},
	}}
}

const groupCap = 3

// Recommendations runs every matching rule against the catalog and returns
// grouped, ranked results. An empty slice is a valid outcome, never an error.
func (e Engine) Recommendations(focal catalog.Product, products []catalog.Product) []Group {
	var results []Result
	for _, rule := range e.rules {
		if !rule.Matches(focal) {
			continue
		}
		results = append(results, rule.Produce(focal, products)...)
	}

	// First occurrence wins so earlier rules keep their type and score.
	seen := make(map[string]struct{}, len(results))
	unique := results[:0]
	for _, res := range results {
		if res.Product.ID == focal.ID {
			continue
		}
		key := res.Product.ID.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, res)
	}
	sort.SliceStable(unique, func(i, j int) bool { return unique[i].Score > unique[j].Score })

	buckets := map[Type][]Result{}
	var leftover []Result
	for _, res := range unique {
		switch res.Type {
		case TypeUpsell, TypeDownsell, TypeAlternative:
			if len(buckets[res.Type]) < groupCap {
				buckets[res.Type] = append(buckets[res.Type], res)
			}
		default:
			if len(leftover) < groupCap {
				leftover = append(leftover, res)
			}
		}
	}

	var groups []Group
	if len(buckets[TypeUpsell]) > 0 {
		groups = append(groups, Group{
			Title:       "Upgrade Options",
			Description: "Higher specification products for demanding applications",
			Products:    buckets[TypeUpsell],
		})
	}
	if len(buckets[TypeDownsell]) > 0 {
		groups = append(groups, Group{
			Title:       "Budget-Friendly Alternatives",
			Description: "Lower cost options that may suit lighter work",
			Products:    buckets[TypeDownsell],
		})
	}
	if len(buckets[TypeAlternative]) > 0 {
		groups = append(groups, Group{
			Title:       "Alternative Solutions",
			Description: "Different materials worth considering for your project",
			Products:    buckets[TypeAlternative],
		})
	}
	if len(groups) == 0 && len(leftover) > 0 {
		groups = append(groups, Group{
			Title:       "You Might Also Like",
			Description: "Other products from our range",
			Products:    leftover,
		})
	}
	return groups
}
