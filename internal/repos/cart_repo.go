package repos

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"snackstack/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type cartItemRow struct {
	ProductJSON   string          `db:"product_json"`
	Qty           int             `db:"qty"`
	PriceAtAdd    float64         `db:"price_at_add"`
	OriginalPrice sql.NullFloat64 `db:"original_price"`
	DiscountPct   sql.NullFloat64 `db:"discount_pct"`
	ComboID       sql.NullString  `db:"combo_id"`
}

func (r cartItemRow) toDomain() domain.CartEntry {
	e := domain.CartEntry{Quantity: r.Qty, Price: r.PriceAtAdd}
	_ = json.Unmarshal([]byte(r.ProductJSON), &e.Product)
	if r.ComboID.Valid {
		e.Discount = &domain.Discount{
			OriginalPrice:      r.OriginalPrice.Float64,
			DiscountPercentage: r.DiscountPct.Float64,
			ComboID:            r.ComboID.String,
		}
	}
	return e
}

func (r *CartRepo) EnsureCart(sessionID string) (string, error) {
	var cartID string
	if err := r.db.Get(&cartID, `SELECT id FROM carts WHERE session_id = ?`, sessionID); err == nil {
		return cartID, nil
	}
	_, err := r.db.Exec(`INSERT INTO carts(id,session_id,updated_at) VALUES(?,?,?)
		ON CONFLICT(session_id) DO NOTHING`,
		sessionID, sessionID, time.Now().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

// UpsertItem adds qty of p. An existing line only grows its quantity; its
// snapshot, price and discount stay those of the first add.
func (r *CartRepo) UpsertItem(cartID string, p domain.Product, qty int, price float64, d *domain.Discount) error {
	snapshot, err := json.Marshal(p)
	if err != nil {
		return err
	}
	var orig, pct, combo any
	if d != nil {
		orig, pct, combo = d.OriginalPrice, d.DiscountPercentage, d.ComboID
	}
	_, err = r.db.Exec(`
		INSERT INTO cart_items(cart_id,product_id,product_json,qty,price_at_add,original_price,discount_pct,combo_id,created_at,seq)
		VALUES(?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP,(SELECT COALESCE(MAX(seq),0)+1 FROM cart_items WHERE cart_id = ?))
		ON CONFLICT(cart_id,product_id) DO UPDATE
		SET qty = cart_items.qty + excluded.qty, updated_at = CURRENT_TIMESTAMP
	`, cartID, p.ID, string(snapshot), qty, price, orig, pct, combo, cartID)
	return err
}

// Items returns the cart lines in the order they were first added.
func (r *CartRepo) Items(cartID string) ([]domain.CartEntry, error) {
	var rows []cartItemRow
	if err := r.db.Select(&rows, `
	  SELECT product_json, qty, price_at_add, original_price, discount_pct, combo_id
	  FROM cart_items
	  WHERE cart_id = ?
	  ORDER BY seq
	`, cartID); err != nil {
		return nil, err
	}
	out := make([]domain.CartEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *CartRepo) Count(cartID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM cart_items WHERE cart_id = ?`, cartID)
	return n, err
}

// SetQty reports false when the product is not in the cart.
func (r *CartRepo) SetQty(cartID, productID string, qty int) (bool, error) {
	res, err := r.db.Exec(`UPDATE cart_items SET qty = ?, updated_at = CURRENT_TIMESTAMP WHERE cart_id = ? AND product_id = ?`,
		qty, cartID, productID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *CartRepo) Remove(cartID, productID string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?`, cartID, productID)
	return err
}

func (r *CartRepo) Clear(cartID string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, cartID)
	return err
}
