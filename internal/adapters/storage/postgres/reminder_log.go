package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"saludhogar/internal/domain/reminders"
)

const reminderLogSchema = `
CREATE TABLE IF NOT EXISTS reminder_log (
	key                 TEXT PRIMARY KEY,
	id                  UUID NOT NULL,
	type                TEXT NOT NULL,
	family_id           TEXT NOT NULL,
	member_id           TEXT NOT NULL DEFAULT '',
	related_entity_type TEXT NOT NULL,
	related_entity_id   TEXT NOT NULL,
	message             TEXT NOT NULL,
	due_at              TIMESTAMPTZ NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS reminder_log_due_at_idx ON reminder_log (due_at);
`

// ReminderLog persiste las claves emitidas; sobrevive reinicios y se
// comparte entre réplicas del agente.
type ReminderLog struct {
	db *sql.DB
}

func NewReminderLog(db *sql.DB) *ReminderLog {
	return &ReminderLog{db: db}
}

// EnsureSchema crea la tabla si no existe (lo usa el comando migrate).
func (r *ReminderLog) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, reminderLogSchema)
	return err
}

func (r *ReminderLog) Seen(ctx context.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, nil
	}
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM reminder_log WHERE key = $1`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Record es idempotente: una clave repetida no es error.
func (r *ReminderLog) Record(ctx context.Context, d reminders.Decision) error {
	if strings.TrimSpace(d.Key) == "" {
		return errors.New("reminder key required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reminder_log (
			key, id, type,
			family_id, member_id,
			related_entity_type, related_entity_id,
			message, due_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (key) DO NOTHING
	`,
		d.Key,
		d.ID,
		string(d.Type),
		d.FamilyID,
		d.MemberID,
		d.RelatedEntityType,
		d.RelatedEntityID,
		d.Message,
		d.DueAt,
		d.CreatedAt,
	)
	return err
}

// Prune borra entradas con due_at anterior a before.
func (r *ReminderLog) Prune(ctx context.Context, before time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminder_log WHERE due_at < $1`, before)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
