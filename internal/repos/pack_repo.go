package repos

import (
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"snackstack/internal/domain"
)

type PackRepo struct{ db *sqlx.DB }

func NewPackRepo(db *sqlx.DB) *PackRepo { return &PackRepo{db: db} }

type packRow struct {
	ID             string  `db:"id"`
	Name           string  `db:"name"`
	Description    string  `db:"description"`
	Price          float64 `db:"price"`
	Image          string  `db:"image"`
	ProductIDsJSON string  `db:"product_ids_json"`
	ItemCount      int     `db:"item_count"`
	TagsJSON       string  `db:"tags_json"`
	Savings        float64 `db:"savings"`
}

// All returns packs in their curated order, which decides savings ties.
func (r *PackRepo) All() ([]domain.VarietyPack, error) {
	var rows []packRow
	if err := r.db.Select(&rows, `
		SELECT id, name, description, price, image, product_ids_json, item_count, tags_json, savings
		FROM variety_packs
		ORDER BY position, id
	`); err != nil {
		return nil, err
	}
	out := make([]domain.VarietyPack, 0, len(rows))
	for _, row := range rows {
		v := domain.VarietyPack{
			ID:          row.ID,
			Name:        row.Name,
			Description: row.Description,
			Price:       row.Price,
			Image:       row.Image,
			ItemCount:   row.ItemCount,
			Savings:     row.Savings,
		}
		_ = json.Unmarshal([]byte(row.ProductIDsJSON), &v.ProductIDs)
		_ = json.Unmarshal([]byte(row.TagsJSON), &v.Tags)
		out = append(out, v)
	}
	return out, nil
}
