package repos

import (
	"time"

	"github.com/jmoiron/sqlx"
)

type NudgeRepo struct{ db *sqlx.DB }

func NewNudgeRepo(db *sqlx.DB) *NudgeRepo { return &NudgeRepo{db: db} }

type NudgeStat struct {
	Kind    string `db:"kind" json:"kind"`
	Outcome string `db:"outcome" json:"outcome"`
	Count   int    `db:"n" json:"count"`
}

func (r *NudgeRepo) Insert(sessionID, kind, outcome string, at time.Time) error {
	_, err := r.db.Exec(`INSERT INTO nudge_events(session_id, kind, outcome, created_at) VALUES(?,?,?,?)`,
		sessionID, kind, outcome, at.UTC().Format(time.RFC3339))
	return err
}

// Report counts outcomes per kind.
func (r *NudgeRepo) Report() ([]NudgeStat, error) {
	out := []NudgeStat{}
	err := r.db.Select(&out, `
		SELECT kind, outcome, COUNT(*) AS n
		FROM nudge_events
		GROUP BY kind, outcome
		ORDER BY kind, outcome
	`)
	return out, err
}

// InsertTelemetry stores one report from the nudge telemetry sink.
func (r *NudgeRepo) InsertTelemetry(email, productName, nudgeType string, at time.Time) error {
	_, err := r.db.Exec(`INSERT INTO nudge_telemetry(user_email, product_name, nudge_type, created_at) VALUES(?,?,?,?)`,
		email, productName, nudgeType, at.UTC().Format(time.RFC3339))
	return err
}

type TelemetryStat struct {
	NudgeType string `db:"nudge_type" json:"nudgeType"`
	Count     int    `db:"n" json:"count"`
}

func (r *NudgeRepo) TelemetryReport() ([]TelemetryStat, error) {
	out := []TelemetryStat{}
	err := r.db.Select(&out, `SELECT nudge_type, COUNT(*) AS n FROM nudge_telemetry GROUP BY nudge_type ORDER BY nudge_type`)
	return out, err
}
