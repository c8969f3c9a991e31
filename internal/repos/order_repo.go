package repos

import (
	"github.com/jmoiron/sqlx"

	"snackstack/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// ByEmail returns the order history of a user, most recent first.
func (r *OrderRepo) ByEmail(email string) ([]domain.Order, error) {
	out := []domain.Order{}
	err := r.db.Select(&out, `
		SELECT id, user_email, product_name, quantity, price, total_price, status, order_date
		FROM orders
		WHERE LOWER(user_email) = LOWER(?)
		ORDER BY datetime(order_date) DESC, id DESC
	`, email)
	return out, err
}

