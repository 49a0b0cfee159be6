package recommend

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beton-labs/backend-beton/internal/catalog"
)

func concreteProduct(name, grade string) catalog.Product {
	g := grade
	return catalog.Product{
		ID:          uuid.New(),
		Name:        name,
		Slug:        name,
		Category:    catalog.TypeConcrete,
		ProductType: catalog.TypeConcrete,
		Grade:       &g,
	}
}

func mortarProduct(name, ratio string) catalog.Product {
	r := ratio
	return catalog.Product{
		ID:          uuid.New(),
		Name:        name,
		Slug:        name,
		Category:    catalog.TypeMortar,
		ProductType: catalog.TypeMortar,
		MortarRatio: &r,
	}
}

func findGroup(groups []Group, title string) (Group, bool) {
	for _, g := range groups {
		if g.Title == title {
			return g, true
		}
	}
	return Group{}, false
}

func TestGradeUpsellPicksClosestHigher(t *testing.T) {
	focal := concreteProduct("ready-mix-n20", "N20")
	products := []catalog.Product{
		concreteProduct("ready-mix-n15", "N15"),
		focal,
		concreteProduct("ready-mix-n25", "N25"),
		concreteProduct("ready-mix-n30", "N30"),
	}

	groups := NewEngine().Recommendations(focal, products)

	upgrades, ok := findGroup(groups, "Upgrade Options")
	require.True(t, ok, "expected an upgrade group")
	require.NotEmpty(t, upgrades.Products)
	assert.Equal(t, "ready-mix-n25", upgrades.Products[0].Product.Name)
	assert.Equal(t, TypeUpsell, upgrades.Products[0].Type)
	assert.InDelta(t, 0.9, upgrades.Products[0].Score, 0.0001)

	budget, ok := findGroup(groups, "Budget-Friendly Alternatives")
	require.True(t, ok, "expected a downsell group")
	assert.Equal(t, "ready-mix-n15", budget.Products[0].Product.Name)
}

func TestGradeUpsellCappedAtTenMPa(t *testing.T) {
	focal := concreteProduct("ready-mix-n20", "N20")
	products := []catalog.Product{
		focal,
		concreteProduct("ready-mix-n40", "N40"),
	}
	groups := NewEngine().Recommendations(focal, products)
	if upgrades, ok := findGroup(groups, "Upgrade Options"); ok {
		t.Fatalf("N40 is outside the +10 window, got %+v", upgrades.Products)
	}
}

func TestMortarRatioUpsellByCementContent(t *testing.T) {
	focal := mortarProduct("mortar-1-4", "1:4")
	products := []catalog.Product{
		mortarProduct("mortar-2-3", "2:3"),
		mortarProduct("mortar-3-3", "3:3"),
		focal,
		mortarProduct("mortar-1-6", "1:6"),
	}

	groups := NewEngine().Recommendations(focal, products)

	upgrades, ok := findGroup(groups, "Upgrade Options")
	require.True(t, ok)
	// Highest cement numerator wins; sand is ignored for ranking.
	assert.Equal(t, "mortar-3-3", upgrades.Products[0].Product.Name)
	assert.Contains(t, upgrades.Products[0].Reason, "3:3")

	if _, ok := findGroup(groups, "Budget-Friendly Alternatives"); ok {
		t.Fatal("no mortar has a strictly lower cement content than 1")
	}
}

func TestMortarAlternativeSuggestsConcrete(t *testing.T) {
	focal := mortarProduct("mortar-1-4", "1:4")
	products := []catalog.Product{
		focal,
		concreteProduct("ready-mix-n20", "N20"),
	}
	groups := NewEngine().Recommendations(focal, products)
	alts, ok := findGroup(groups, "Alternative Solutions")
	require.True(t, ok)
	assert.Equal(t, "ready-mix-n20", alts.Products[0].Product.Name)
	assert.InDelta(t, 0.7, alts.Products[0].Score, 0.0001)
}

func TestDeduplicationKeepsHigherPriorityRule(t *testing.T) {
	focal := concreteProduct("ready-mix-n20", "N20")
	upgrade := concreteProduct("ready-mix-n25", "N25")
	products := []catalog.Product{focal, upgrade}

	groups := NewEngine().Recommendations(focal, products)

	// The N25 product also matches the similar-type fallback; it must appear
	// once, attributed to the grade rule.
	total := 0
	for _, g := range groups {
		for _, res := range g.Products {
			if res.Product.ID == upgrade.ID {
				total++
				assert.Equal(t, TypeUpsell, res.Type)
				assert.InDelta(t, 0.9, res.Score, 0.0001)
			}
		}
	}
	assert.Equal(t, 1, total)
}

func TestGroupsCappedAtThree(t *testing.T) {
	focal := concreteProduct("ready-mix-n20", "N20")
	products := []catalog.Product{focal}
	for i := 0; i < 6; i++ {
		products = append(products, mortarProduct(fmt.Sprintf("mortar-%d", i), "1:3"))
	}
	groups := NewEngine().Recommendations(focal, products)
	for _, g := range groups {
		assert.LessOrEqual(t, len(g.Products), 3, "group %q exceeds cap", g.Title)
	}
}

func TestFocalNeverRecommended(t *testing.T) {
	focal := concreteProduct("ready-mix-n20", "N20")
	products := []catalog.Product{
		focal,
		concreteProduct("ready-mix-n25", "N25"),
		mortarProduct("mortar-1-3", "1:3"),
	}
	groups := NewEngine().Recommendations(focal, products)
	for _, g := range groups {
		for _, res := range g.Products {
			assert.NotEqual(t, focal.ID, res.Product.ID)
		}
	}
}

func TestMalformedGradeSkipsRule(t *testing.T) {
	focal := concreteProduct("ready-mix-bad", "grade-20")
	products := []catalog.Product{
		focal,
		concreteProduct("ready-mix-n25", "N25"),
	}
	groups := NewEngine().Recommendations(focal, products)
	if _, ok := findGroup(groups, "Upgrade Options"); ok {
		t.Fatal("grade rule must not fire on a malformed grade")
	}
	// The fallback rule still offers same-type alternatives.
	alts, ok := findGroup(groups, "Alternative Solutions")
	require.True(t, ok)
	assert.NotEmpty(t, alts.Products)
}

func TestEmptyCatalogYieldsNoGroups(t *testing.T) {
	focal := concreteProduct("ready-mix-n20", "N20")
	assert.Empty(t, NewEngine().Recommendations(focal, nil))
	assert.Empty(t, NewEngine().Recommendations(focal, []catalog.Product{focal}))
}
