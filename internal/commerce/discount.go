package commerce

import "snackstack/internal/domain"

// BundleQuote is the price breakdown shown for a smart-pairing bundle.
type BundleQuote struct {
	DiscountPercent float64 `json:"discountPercent"`
	TotalOriginal   float64 `json:"totalOriginal"`
	TotalDiscounted float64 `json:"totalDiscounted"`
	Savings         float64 `json:"savings"`
}

// BundleDiscountPercent is the tier for itemCount extra items: 10% for
// exactly one, 15% for two or more, nothing otherwise.
func BundleDiscountPercent(itemCount int) float64 {
	switch {
	case itemCount == 1:
		return 10
	case itemCount >= 2:
		return 15
	}
	return 0
}

// CalculateBundleDiscount prices products as one bundle, with the tier
// chosen by itemCount (the number of items added on top of the trigger).
func CalculateBundleDiscount(products []domain.Product, itemCount int) BundleQuote {
	pct := BundleDiscountPercent(itemCount)
	total := 0.0
	for _, p := range products {
		total += p.Price
	}
	discounted := DiscountedPrice(total, pct)
	return BundleQuote{
		DiscountPercent: pct,
		TotalOriginal:   total,
		TotalDiscounted: discounted,
		Savings:         total - discounted,
	}
}

func DiscountedPrice(price, percent float64) float64 {
	return price * (1 - percent/100)
}
