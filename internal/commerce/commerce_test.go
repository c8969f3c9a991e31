package commerce_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snackstack/internal/commerce"
	"snackstack/internal/domain"
)

func catalog() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "Classic Sea Salt", Brand: "Lay's", Category: "chips", Price: 3.99, InStock: true, Tags: []string{"bestseller"}},
		{ID: "2", Name: "Spicy Jalapeño", Brand: "Doritos", Category: "chips", Price: 4.29, InStock: true},
		{ID: "3", Name: "Chocolate Almonds", Brand: "Smartfood", Category: "chocolate", Price: 5.49, InStock: true},
		{ID: "4", Name: "Mountain Trail Mix", Brand: "Smartfood", Category: "trail-mix", Price: 6.99, InStock: true},
		{ID: "5", Name: "Smokehouse Jerky", Brand: "Chester's", Category: "jerky", Price: 7.99, InStock: true},
		{ID: "6", Name: "Flamin' Hot Puffs", Brand: "Cheetos", Category: "chips", Price: 3.79, InStock: false},
		{ID: "7", Name: "Caramel Popcorn", Brand: "Smartfood", Category: "popcorn", Price: 4.49, InStock: true},
	}
}

func TestCalculateBundleDiscount(t *testing.T) {
	p1 := domain.Product{ID: "a", Price: 3.00}
	p2 := domain.Product{ID: "b", Price: 2.00}

	q := commerce.CalculateBundleDiscount([]domain.Product{p1, p2}, 2)
	assert.Equal(t, 15.0, q.DiscountPercent)
	assert.InDelta(t, 5.00, q.TotalOriginal, 1e-9)
	assert.InDelta(t, 4.25, q.TotalDiscounted, 1e-9)
	assert.InDelta(t, 0.75, q.Savings, 1e-9)

	q = commerce.CalculateBundleDiscount([]domain.Product{p1, p2}, 1)
	assert.Equal(t, 10.0, q.DiscountPercent)
	assert.InDelta(t, 4.50, q.TotalDiscounted, 1e-9)

	assert.Equal(t, 0.0, commerce.BundleDiscountPercent(0))
	assert.Equal(t, 15.0, commerce.BundleDiscountPercent(5))
}

func TestFindComplementaryRanksByWeightedScore(t *testing.T) {
	cat := catalog()
	got := commerce.FindComplementary(cat[0], cat, 2)
	require.Len(t, got, 2)

	// Doritos: same category + complementary + near price = 5.5.
	// Popcorn: complementary + near price = 3.5. Cheetos is out of stock.
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "7", got[1].ID)
	for _, p := range got {
		assert.NotEqual(t, cat[0].ID, p.ID)
	}
}

func TestPairingScoreWeights(t *testing.T) {
	base := domain.Product{Brand: "B", Category: "chips", Price: 3}
	c := domain.Product{Brand: "B", Category: "chips", Price: 4, Tags: []string{"bestseller"}}
	assert.InDelta(t, 3+2+2.5+1+0.5, commerce.PairingScore(base, c), 1e-9)

	far := domain.Product{Brand: "X", Category: "energy", Price: 10}
	assert.Equal(t, 0.0, commerce.PairingScore(base, far))
}

func TestBestVarietyPackPrefersLargestSavings(t *testing.T) {
	packs := []domain.VarietyPack{
		{ID: "small", ProductIDs: []string{"1", "2"}, Savings: 5.00},
		{ID: "other", ProductIDs: []string{"3"}, Savings: 50.00},
		{ID: "big", ProductIDs: []string{"2", "1", "7"}, Savings: 10.00},
		{ID: "tie", ProductIDs: []string{"1"}, Savings: 10.00},
	}
	best, ok := commerce.BestVarietyPack(packs, "1")
	require.True(t, ok)
	assert.Equal(t, "big", best.ID)

	_, ok = commerce.BestVarietyPack(packs, "99")
	assert.False(t, ok)
}

func TestPackUpgradeFiltersMissingMembers(t *testing.T) {
	idx := commerce.IndexByID(catalog())
	pack := domain.VarietyPack{ID: "vp", ProductIDs: []string{"1", "2", "missing"}, Savings: 2.07}

	members, pct := commerce.PackUpgrade(pack, "1", idx)
	require.Len(t, members, 1)
	assert.Equal(t, "2", members[0].ID)
	// 2.07 / (3.99 + 4.29) * 100
	assert.InDelta(t, 25.0, pct, 1e-9)

	empty := domain.VarietyPack{ProductIDs: []string{"nope"}, Savings: 3}
	assert.Equal(t, 0.0, commerce.PackDiscountPercent(empty, idx))
}

func TestSampleInStockSkipsOutOfStock(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 20; i++ {
		got := commerce.SampleInStock(catalog(), 3, rnd)
		require.Len(t, got, 3)
		ids := map[string]bool{}
		for _, p := range got {
			assert.True(t, p.InStock)
			assert.False(t, ids[p.ID], "duplicate %s", p.ID)
			ids[p.ID] = true
		}
	}
}

func TestRelatedProducts(t *testing.T) {
	cat := catalog()
	got := commerce.RelatedProducts(cat[2], cat, 2) // Smartfood chocolate
	require.Len(t, got, 2)
	assert.Equal(t, "4", got[0].ID)
	assert.Equal(t, "7", got[1].ID)
}

func TestUniformDelayRange(t *testing.T) {
	rnd := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 200; i++ {
		d := commerce.UniformDelay(rnd, 3*time.Second, 5*time.Second)
		assert.GreaterOrEqual(t, d, 3*time.Second)
		assert.Less(t, d, 5*time.Second)
	}
	assert.Equal(t, time.Second, commerce.UniformDelay(rnd, time.Second, time.Second))
}

func TestExitMessage(t *testing.T) {
	assert.Contains(t, commerce.ExitMessage("Lay's", "Classic"), "Lay's is on a limited-time offer")
	assert.Contains(t, commerce.ExitMessage("Frito", "Doritos Nacho"), "Doritos are flying")
	assert.Equal(t, "Wait! This spicy favourite is on a limited-time offer.", commerce.ExitMessage("Acme", "Hot Wings"))
	assert.Equal(t, "Wait! Before you leave, this Acme favourite is on a limited-time offer.", commerce.ExitMessage("Acme", "Plain"))
}
