package commerce

import (
	"math/rand/v2"
	"time"

	"snackstack/internal/domain"
)

// SampleInStock draws n in-stock products uniformly without replacement.
func SampleInStock(catalog []domain.Product, n int, rnd *rand.Rand) []domain.Product {
	pool := make([]domain.Product, 0, len(catalog))
	for _, p := range catalog {
		if p.InStock {
			pool = append(pool, p)
		}
	}
	rnd.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if n < len(pool) {
		pool = pool[:n]
	}
	return pool
}

// RelatedProducts returns up to n in-stock products sharing brand or
// category with hovered, in catalog order, never hovered itself.
func RelatedProducts(hovered domain.Product, catalog []domain.Product, n int) []domain.Product {
	seen := map[string]bool{hovered.ID: true}
	var out []domain.Product
	for _, p := range catalog {
		if len(out) >= n {
			break
		}
		if seen[p.ID] || !p.InStock {
			continue
		}
		if p.Brand == hovered.Brand || p.Category == hovered.Category {
			seen[p.ID] = true
			out = append(out, p)
		}
	}
	return out
}

// UniformDelay samples a duration in [lo, hi).
func UniformDelay(rnd *rand.Rand, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rnd.Int64N(int64(hi-lo)))
}
