// internal/database/database.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// DB is the shared connection pool. It stays nil when no database is
// configured; the store functions are no-ops in that case.
var DB *pgxpool.Pool

// Connect initializes the pool and verifies connectivity. The schema is
// created if missing so a fresh database works out of the box.
func Connect(ctx context.Context, url string, log *logrus.Logger) error {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}
	DB = pool
	log.WithField("component", "database").Info("connected to postgres")
	return ensureSchema(ctx)
}

// Close releases the pool.
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
	}
}

func ensureSchema(ctx context.Context) error {
	_, err := DB.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS games (
			room_code     TEXT NOT NULL,
			started_at    TIMESTAMPTZ NOT NULL,
			finished_at   TIMESTAMPTZ,
			end_reason    TEXT,
			initial_state JSONB,
			final_state   JSONB,
			PRIMARY KEY (room_code, started_at)
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// UpsertInitialGameState saves the dealt state of a new hand for replay and
// audit. The snapshot is pre-marshaled JSON built by the caller while it
// still holds the room lock.
func UpsertInitialGameState(ctx context.Context, roomCode string, startedAt time.Time, snapshot []byte) error {
	if DB == nil {
		return nil
	}
	_, err := DB.Exec(ctx, `
		INSERT INTO games (room_code, started_at, initial_state)
		VALUES ($1, $2, $3)
		ON CONFLICT (room_code, started_at)
		DO UPDATE SET initial_state = EXCLUDED.initial_state`,
		roomCode, startedAt, snapshot)
	if err != nil {
		return fmt.Errorf("upsert initial state for room %s: %w", roomCode, err)
	}
	return nil
}

// StoreFinishedGame records the terminal state and results of a hand.
func StoreFinishedGame(ctx context.Context, roomCode string, startedAt time.Time, finishedAt *time.Time, endReason string, snapshot []byte) error {
	if DB == nil {
		return nil
	}
	_, err := DB.Exec(ctx, `
		INSERT INTO games (room_code, started_at, finished_at, end_reason, final_state)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (room_code, started_at)
		DO UPDATE SET
			finished_at = EXCLUDED.finished_at,
			end_reason  = EXCLUDED.end_reason,
			final_state = EXCLUDED.final_state`,
		roomCode, startedAt, finishedAt, endReason, snapshot)
	if err != nil {
		return fmt.Errorf("store finished game for room %s: %w", roomCode, err)
	}
	return nil
}
