package repos

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/jmoiron/sqlx"

	"snackstack/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

type productRow struct {
	ID            string         `db:"id"`
	Category      string         `db:"category_id"`
	Name          string         `db:"name"`
	Brand         string         `db:"brand"`
	Price         float64        `db:"price"`
	Image         string         `db:"image"`
	ImagesJSON    string         `db:"images_json"`
	Description   string         `db:"description"`
	TagsJSON      string         `db:"tags_json"`
	NutritionJSON sql.NullString `db:"nutrition_json"`
	VariantsJSON  string         `db:"variants_json"`
	Qty           int            `db:"qty"`
}

const productCols = `
    p.id, p.category_id, p.name, p.brand, p.price, p.image, p.images_json, p.description,
    p.tags_json, p.nutrition_json, p.variants_json, COALESCE(i.qty, 0) AS qty
  FROM products p
  LEFT JOIN inventory i ON i.product_id = p.id`

// toDomain decodes the JSON columns. Malformed values decode as empty.
func (r productRow) toDomain() domain.Product {
	p := domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Brand:       r.Brand,
		Category:    r.Category,
		Price:       r.Price,
		Image:       r.Image,
		Description: r.Description,
		InStock:     r.Qty > 0,
	}
	_ = json.Unmarshal([]byte(r.ImagesJSON), &p.Images)
	_ = json.Unmarshal([]byte(r.TagsJSON), &p.Tags)
	_ = json.Unmarshal([]byte(r.VariantsJSON), &p.Variants)
	if r.NutritionJSON.Valid {
		var n domain.Nutrition
		if json.Unmarshal([]byte(r.NutritionJSON.String), &n) == nil {
			p.Nutrition = &n
		}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p
}

func toProducts(rows []productRow) []domain.Product {
	out := make([]domain.Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}

// All returns the catalog in display order.
func (r *ProductRepo) All() ([]domain.Product, error) {
	var rows []productRow
	if err := r.db.Select(&rows, `SELECT `+productCols+` ORDER BY p.position, p.id`); err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var row productRow
	if err := r.db.Get(&row, `SELECT `+productCols+` WHERE p.id = ?`, id); err != nil {
		return domain.Product{}, err
	}
	return row.toDomain(), nil
}

func (r *ProductRepo) Search(q, catID string, limit, offset int) ([]domain.Product, error) {
	where := `1 = 1`
	args := []any{}
	if q != "" {
		q = strings.ToLower(q)
		where += ` AND (LOWER(p.name) LIKE ? OR LOWER(p.brand) LIKE ? OR LOWER(p.description) LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%", "%"+q+"%")
	}
	if catID != "" {
		where += ` AND p.category_id = ?`
		args = append(args, catID)
	}
	args = append(args, limit, offset)

	var rows []productRow
	if err := r.db.Select(&rows, `SELECT `+productCols+` WHERE `+where+` ORDER BY p.position, p.id LIMIT ? OFFSET ?`, args...); err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}
