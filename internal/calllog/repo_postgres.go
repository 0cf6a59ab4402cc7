package calllog

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresRepo writes dispositions to Postgres via database/sql (pgx stdlib
// driver). Schema:
//
//	CREATE TABLE call_dispositions (
//	    call_id          TEXT PRIMARY KEY,
//	    from_number      TEXT NOT NULL DEFAULT '',
//	    to_number        TEXT NOT NULL DEFAULT '',
//	    status           TEXT NOT NULL,
//	    reason           TEXT NOT NULL DEFAULT '',
//	    purpose          TEXT NOT NULL DEFAULT '',
//	    turn_count       INT  NOT NULL DEFAULT 0,
//	    summary          TEXT NOT NULL DEFAULT '',
//	    started_at       TIMESTAMPTZ NOT NULL,
//	    ended_at         TIMESTAMPTZ NOT NULL,
//	    duration_seconds INT NOT NULL DEFAULT 0
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Insert(ctx context.Context, rec Record) error {
	if rec.CallID == "" {
		return ErrInvalidRecord
	}
	// ON CONFLICT DO NOTHING: first write wins on a termination race.
	const q = `
		INSERT INTO call_dispositions
			(call_id, from_number, to_number, status, reason, purpose,
			 turn_count, summary, started_at, ended_at, duration_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (call_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, q,
		rec.CallID, rec.From, rec.To, string(rec.Status), rec.Reason, rec.Purpose,
		rec.TurnCount, rec.Summary, rec.StartedAt, rec.EndedAt, rec.DurationSeconds,
	)
	if err != nil {
		return fmt.Errorf("calllog: insert %s: %w", rec.CallID, err)
	}
	return nil
}

func (r *PostgresRepo) List(ctx context.Context, from, to time.Time) ([]Record, error) {
	const q = `
		SELECT call_id, from_number, to_number, status, reason, purpose,
		       turn_count, summary, started_at, ended_at, duration_seconds
		FROM call_dispositions
		WHERE ended_at >= $1 AND ended_at < $2
		ORDER BY ended_at`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, fmt.Errorf("calllog: list: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var rec Record
		var status string
		if err := rows.Scan(
			&rec.CallID, &rec.From, &rec.To, &status, &rec.Reason, &rec.Purpose,
			&rec.TurnCount, &rec.Summary, &rec.StartedAt, &rec.EndedAt, &rec.DurationSeconds,
		); err != nil {
			return nil, fmt.Errorf("calllog: scan: %w", err)
		}
		rec.Status = CallStatus(status)
		out = append(out, rec)
	}
	return out, rows.Err()
}
