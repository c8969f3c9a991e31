package services

import (
	"context"
	"fmt"

	"snackstack/internal/domain"
	"snackstack/internal/repos"
)

// OrderService serves the order history contract from the local database.
type OrderService struct {
	Orders *repos.OrderRepo
}

func NewOrderService(orders *repos.OrderRepo) *OrderService {
	return &OrderService{Orders: orders}
}

func (s *OrderService) History(email string) ([]domain.Order, error) {
	out, err := s.Orders.ByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("order history for %s: %w", email, err)
	}
	return out, nil
}

// LocalHistory adapts OrderService to nudge.OrderHistory.
type LocalHistory struct{ Svc *OrderService }

func (h LocalHistory) Orders(ctx context.Context, email string) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.Svc.History(email)
}
