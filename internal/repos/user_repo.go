package repos

import (
	"github.com/jmoiron/sqlx"

	"snackstack/internal/domain"
)

// UserRepo holds shoppers and the browser sessions bound to them. A
// session row outlives logout with user_id cleared, so the sid keeps its
// cart and seen state.
type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

const (
	selectUser = `SELECT u.id, u.email, u.first_name, u.last_name, u.password_hash, u.role FROM users u`

	qUserByEmail   = selectUser + ` WHERE LOWER(u.email) = LOWER(?)`
	qUserBySession = selectUser + ` JOIN sessions s ON s.user_id = u.id WHERE s.id = ?`

	qBindSession = `
		INSERT INTO sessions(id, user_id, last_seen) VALUES(?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id, last_seen = CURRENT_TIMESTAMP`
	qUnbindSession = `UPDATE sessions SET user_id = NULL, last_seen = CURRENT_TIMESTAMP WHERE id = ?`
)

func (r *UserRepo) getOne(query string, arg any) (*domain.User, error) {
	u := new(domain.User)
	if err := r.db.Get(u, query, arg); err != nil {
		return nil, err
	}
	return u, nil
}

// ByEmail matches case-insensitively. Missing users return sql.ErrNoRows.
func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	return r.getOne(qUserByEmail, email)
}

// SessionUser returns the user bound to sid, or sql.ErrNoRows for an
// anonymous or unknown session.
func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	return r.getOne(qUserBySession, sid)
}

func (r *UserRepo) BindSession(sid, userID string) error {
	_, err := r.db.Exec(qBindSession, sid, userID)
	return err
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.db.Exec(qUnbindSession, sid)
	return err
}
