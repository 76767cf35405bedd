package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

const (
	dbMaxRetries = 60
	dbRetryDelay = 2 * time.Second
)

// normalizeDatabaseURL rewrites postgresql:// to postgres:// and defaults sslmode to disable
func normalizeDatabaseURL(databaseURL string) string {
	if strings.HasPrefix(databaseURL, "postgresql:") {
		databaseURL = "postgres" + databaseURL[len("postgresql"):]
	}
	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "?"
		if strings.Contains(databaseURL, "?") {
			separator = "&"
		}
		databaseURL = databaseURL + separator + "sslmode=disable"
	}
	return databaseURL
}

// initDB opens the PostgreSQL connection, waiting for the database to come up, and ensures the schema
func initDB(ctx context.Context, databaseURL string, log zerolog.Logger) (*sql.DB, error) {
	config, err := pgx.ParseConfig(normalizeDatabaseURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	var db *sql.DB
	for i := 0; i < dbMaxRetries; i++ {
		db = stdlib.OpenDB(*config)
		err = db.PingContext(ctx)
		if err == nil {
			log.Info().Msg("Database connection established")
			break
		}
		db.Close()
		if i == dbMaxRetries-1 {
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", dbMaxRetries, err)
		}

		// Log the actual error on the first attempts and every 10 after that
		event := log.Warn().Int("attempt", i+1).Int("max_attempts", dbMaxRetries).Dur("retry_in", dbRetryDelay)
		if i%10 == 0 || i < 5 {
			event = event.Err(err)
		}
		event.Msg("Database not ready, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(dbRetryDelay):
		}
	}

	if err := ensureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
