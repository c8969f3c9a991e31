// Package commerce holds the pure scoring functions behind the nudges:
// complementary product pairing, bundle and variety pack discounts, exit
// copy and replenishment urgency. Nothing here touches storage or time
// other than through its arguments.
package commerce

import (
	"math"
	"sort"

	"snackstack/internal/domain"
)

// complementary lists, per category, the categories that pair well with it.
// Pairings are directional: chocolate lists energy, energy does not list chocolate.
var complementary = map[string][]string{
	"chips":     {"chips", "popcorn", "jerky"},
	"chocolate": {"trail-mix", "popcorn", "energy"},
	"jerky":     {"chips", "trail-mix", "energy"},
	"popcorn":   {"chocolate", "chips"},
	"trail-mix": {"jerky", "chocolate", "energy"},
	"energy":    {"trail-mix", "jerky"},
}

const (
	weightSameBrand     = 3.0
	weightSameCategory  = 2.0
	weightComplementary = 2.5
	weightNearPrice     = 1.0
	weightBestseller    = 0.5

	nearPriceDelta = 2.0
)

func isComplementary(base, other string) bool {
	for _, c := range complementary[base] {
		if c == other {
			return true
		}
	}
	return false
}

// PairingScore is the weighted compatibility of candidate with base.
func PairingScore(base, candidate domain.Product) float64 {
	score := 0.0
	if candidate.Brand == base.Brand {
		score += weightSameBrand
	}
	if candidate.Category == base.Category {
		score += weightSameCategory
	}
	if isComplementary(base.Category, candidate.Category) {
		score += weightComplementary
	}
	if math.Abs(candidate.Price-base.Price) <= nearPriceDelta {
		score += weightNearPrice
	}
	if candidate.HasTag("bestseller") {
		score += weightBestseller
	}
	return score
}

// FindComplementary returns the count best-scoring in-stock products other
// than base. Equal scores keep catalog order.
func FindComplementary(base domain.Product, catalog []domain.Product, count int) []domain.Product {
	type scored struct {
		p     domain.Product
		score float64
	}
	var cands []scored
	for _, p := range catalog {
		if p.ID == base.ID || !p.InStock {
			continue
		}
		cands = append(cands, scored{p: p, score: PairingScore(base, p)})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })
	if count < len(cands) {
		cands = cands[:count]
	}
	out := make([]domain.Product, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.p)
	}
	return out
}

// IndexByID builds an id lookup over a catalog snapshot.
func IndexByID(catalog []domain.Product) map[string]domain.Product {
	idx := make(map[string]domain.Product, len(catalog))
	for _, p := range catalog {
		idx[p.ID] = p
	}
	return idx
}
