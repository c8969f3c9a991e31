package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type InventoryRepo struct{ db *sqlx.DB }

func NewInventoryRepo(db *sqlx.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// Row used by the admin inventory listing
type InventoryRow struct {
	ProductID string `db:"product_id" json:"productId"`
	Name      string `db:"name" json:"name"`
	Brand     string `db:"brand" json:"brand"`
	Qty       int    `db:"qty" json:"qty"`
}

// ListAll returns all inventory rows with product names
func (r *InventoryRepo) ListAll() ([]InventoryRow, error) {
	var rows []InventoryRow
	err := r.db.Select(&rows, `
		SELECT i.product_id, p.name, p.brand, i.qty
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		ORDER BY p.position, p.id
	`)
	return rows, err
}

// Qty returns current stock for a product.
// If no row exists, it returns sql.ErrNoRows from sqlx.Get.
func (r *InventoryRepo) Qty(productID string) (int, error) {
	var qty int
	err := r.db.Get(&qty, `SELECT qty FROM inventory WHERE product_id = ?`, productID)
	if err != nil {
		return 0, err
	}
	return qty, nil
}

// UpsertQty sets qty for productID creating the row if needed. It returns
// sql.ErrNoRows when the product does not exist.
func (r *InventoryRepo) UpsertQty(productID string, qty int) error {
	res, err := r.db.Exec(`
		INSERT INTO inventory(product_id, qty, updated_at)
		SELECT p.id, ?, CURRENT_TIMESTAMP FROM products p WHERE p.id = ?
		ON CONFLICT(product_id) DO UPDATE SET qty = excluded.qty, updated_at = CURRENT_TIMESTAMP
	`, qty, productID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
