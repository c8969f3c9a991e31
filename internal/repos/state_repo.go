package repos

import (
	"github.com/jmoiron/sqlx"
)

// StateRepo stores small per-browser documents keyed by (owner, key),
// the server-side stand-in for browser local storage.
type StateRepo struct{ db *sqlx.DB }

func NewStateRepo(db *sqlx.DB) *StateRepo { return &StateRepo{db: db} }

// Get returns sql.ErrNoRows when nothing was stored.
func (r *StateRepo) Get(owner, key string) (string, error) {
	var v string
	err := r.db.Get(&v, `SELECT value FROM local_state WHERE owner = ? AND key = ?`, owner, key)
	return v, err
}

func (r *StateRepo) Put(owner, key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO local_state(owner, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(owner, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, owner, key, value)
	return err
}
