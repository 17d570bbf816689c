package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Ledger keeps completed video names in a single-column table, for
// deployments where the run host has no durable local disk.
type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

func (l *Ledger) EnsureSchema(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS completed_videos (
			video_name   TEXT PRIMARY KEY,
			completed_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create completed_videos table: %w", err)
	}
	return nil
}

func (l *Ledger) IsComplete(ctx context.Context, videoName string) (bool, error) {
	var exists bool
	err := l.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM completed_videos WHERE video_name=$1)`,
		videoName,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query ledger: %w", err)
	}
	return exists, nil
}

func (l *Ledger) MarkComplete(ctx context.Context, videoName string) error {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO completed_videos (video_name) VALUES ($1)
		 ON CONFLICT (video_name) DO NOTHING`,
		videoName,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}
