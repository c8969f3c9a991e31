package services

import (
	"database/sql"
	"errors"
	"fmt"

	"snackstack/internal/domain"
	"snackstack/internal/repos"
)

const lowStockBelow = 5

// InventoryService owns stock levels. A product is in stock for every
// nudge exactly when its qty is positive.
type InventoryService struct {
	Stock *repos.InventoryRepo
}

func NewInventoryService(stock *repos.InventoryRepo) *InventoryService {
	return &InventoryService{Stock: stock}
}

// CheckAvailability treats a product with no inventory row as sold out.
func (s *InventoryService) CheckAvailability(productID string) (domain.Availability, error) {
	qty, err := s.Stock.Qty(productID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AvailabilityFor(0, lowStockBelow), nil
	}
	if err != nil {
		return domain.Availability{}, fmt.Errorf("stock for %s: %w", productID, err)
	}
	return domain.AvailabilityFor(qty, lowStockBelow), nil
}

func (s *InventoryService) List() ([]repos.InventoryRow, error) { return s.Stock.ListAll() }

// SetStock is the admin stock update. Negative quantities store as zero,
// which takes the product out of every nudge.
func (s *InventoryService) SetStock(productID string, qty int) error {
	err := s.Stock.UpsertQty(productID, max(qty, 0))
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
