package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/trustedgroup/enrollment-service/internal/config"
	"github.com/trustedgroup/enrollment-service/internal/utils"
)

const (
	maxRetries     = 5
	connectTimeout = 5 * time.Second
	initialBackoff = 500 * time.Millisecond
)

type App struct {
	Config *config.Config
	DB     *pgxpool.Pool
}

func NewApp(cfg *config.Config) (*App, error) {
	var (
		dbPool  *pgxpool.Pool
		err     error
		backoff = initialBackoff
	)

	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		dbPool, err = newDBPool(ctx, cfg.DBUrl)
		if err == nil {
			utils.Logger.Infof("Successfully connected to database on attempt %d", i)
			break
		}

		utils.Logger.WithError(err).Warnf(
			"Failed to connect to database on attempt %d/%d. Retrying in %v...",
			i, maxRetries, backoff,
		)

		if i == maxRetries {
			return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
		}

		time.Sleep(backoff)
		backoff *= 2
	}

	if err := ensureSchema(context.Background(), dbPool); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("schema bootstrap failed: %w", err)
	}

	return &App{
		Config: cfg,
		DB:     dbPool,
	}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		utils.Logger.Info("Database connection closed.")
	}
}

func newDBPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	// Retire idle sockets before the platform proxy does, and keep
	// every remaining conn warm with a background health check.
	poolCfg.MaxConnIdleTime = 2 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second

	return pgxpool.ConnectConfig(ctx, poolCfg)
}

// ensureSchema creates the three enrollment tables. Creation is
// idempotent; there is no migration story beyond first boot.
func ensureSchema(ctx context.Context, db *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS allowlist (
            id               UUID PRIMARY KEY,
            phone            TEXT NOT NULL UNIQUE,
            requested_handle TEXT,
            invited_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS pending_sessions (
            id            UUID PRIMARY KEY,
            phone         TEXT NOT NULL UNIQUE,
            challenge_sid TEXT NOT NULL,
            created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS identities (
            id          UUID PRIMARY KEY,
            handle      TEXT NOT NULL UNIQUE,
            phone       TEXT NOT NULL,
            enrolled_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
