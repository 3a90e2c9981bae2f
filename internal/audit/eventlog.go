// Package audit keeps an append-only log of grade-sync decisions so a
// failed remote push or a teacher reset can be reconstructed later.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const (
	TypeGradeSubmitted = "GradeSubmitted"
	TypeSubmitFailed   = "GradeSubmitFailed"
	TypeAttemptsReset  = "AttemptsReset"
)

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, typ, key string, data any) error {
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, string(buf), time.Now().Unix())
	return err
}
