package commerce

import "snackstack/internal/domain"

func PacksForProduct(packs []domain.VarietyPack, productID string) []domain.VarietyPack {
	var out []domain.VarietyPack
	for _, p := range packs {
		if p.Contains(productID) {
			out = append(out, p)
		}
	}
	return out
}

// BestVarietyPack picks the pack containing productID with the largest
// savings. Ties go to the pack encountered first.
func BestVarietyPack(packs []domain.VarietyPack, productID string) (domain.VarietyPack, bool) {
	var best domain.VarietyPack
	found := false
	for _, p := range PacksForProduct(packs, productID) {
		if !found || p.Savings > best.Savings {
			best, found = p, true
		}
	}
	return best, found
}

// PackDiscountPercent spreads the pack savings over the original prices of
// every member found in idx. Missing members contribute nothing.
func PackDiscountPercent(pack domain.VarietyPack, idx map[string]domain.Product) float64 {
	total := 0.0
	for _, id := range pack.ProductIDs {
		if p, ok := idx[id]; ok {
			total += p.Price
		}
	}
	if total <= 0 {
		return 0
	}
	return pack.Savings / total * 100
}

// PackUpgrade returns the members still to add when upgrading from
// addedID to the whole pack, and the uniform per-item discount.
func PackUpgrade(pack domain.VarietyPack, addedID string, idx map[string]domain.Product) ([]domain.Product, float64) {
	var members []domain.Product
	for _, id := range pack.ProductIDs {
		if id == addedID {
			continue
		}
		if p, ok := idx[id]; ok {
			members = append(members, p)
		}
	}
	return members, PackDiscountPercent(pack, idx)
}
