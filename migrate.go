package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// setupDatabase creates tables and seeds the demo company and chart of accounts
func setupDatabase(ctx context.Context, databaseURL string, log zerolog.Logger) error {
	log.Info().Msg("Creating database schema...")
	db, err := initDB(ctx, databaseURL, log)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info().Msg("Schema created successfully")

	log.Info().Msg("Seeding demo company...")
	if err := seedDefaultCompany(ctx, db); err != nil {
		return err
	}

	var accounts int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE company_id = 'demo'`).Scan(&accounts); err != nil {
		return fmt.Errorf("counting seeded accounts: %w", err)
	}
	log.Info().Int("accounts", accounts).Msg("Demo company seeded successfully")

	return nil
}
