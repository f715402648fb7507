package database

import (
	"database/sql"
	"fmt"
	"sort"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Up      string
	Down    string
}

// Migrations contains all database migrations
var Migrations = []Migration{
	{
		Version: 1,
		Up: `
			CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

			CREATE TABLE IF NOT EXISTS accounts (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				account_id VARCHAR(32) UNIQUE NOT NULL,
				email VARCHAR(255) UNIQUE NOT NULL,
				display_name VARCHAR(255) NOT NULL,
				photo_url TEXT,
				password_hash VARCHAR(255) NOT NULL,
				role VARCHAR(20) NOT NULL DEFAULT 'user',
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email);
			CREATE INDEX IF NOT EXISTS idx_accounts_account_id ON accounts(account_id);
		`,
		Down: `
			DROP TABLE IF EXISTS accounts;
		`,
	},
	{
		Version: 2,
		Up: `
			CREATE TABLE IF NOT EXISTS token_balances (
				account_id VARCHAR(32) PRIMARY KEY,
				balance INT NOT NULL DEFAULT 0 CHECK (balance >= 0),
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS contact_unlocks (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				account_id VARCHAR(32) NOT NULL,
				target_account_id VARCHAR(32) NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				UNIQUE(account_id, target_account_id)
			);

			CREATE INDEX IF NOT EXISTS idx_contact_unlocks_account ON contact_unlocks(account_id);
		`,
		Down: `
			DROP TABLE IF EXISTS contact_unlocks;
			DROP TABLE IF EXISTS token_balances;
		`,
	},
	{
		Version: 3,
		Up: `
			CREATE TABLE IF NOT EXISTS chat_reports (
				id BIGSERIAL PRIMARY KEY,
				conversation_id VARCHAR(64) NOT NULL,
				reporter_account_id VARCHAR(32) NOT NULL,
				reported_account_id VARCHAR(32) NOT NULL,
				reason VARCHAR(32) NOT NULL,
				description TEXT,
				status VARCHAR(32) NOT NULL DEFAULT 'pending',
				admin_notes TEXT,
				reviewed_by VARCHAR(32),
				reviewed_at TIMESTAMP,
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_chat_reports_status ON chat_reports(status);
			CREATE INDEX IF NOT EXISTS idx_chat_reports_conversation ON chat_reports(conversation_id);
		`,
		Down: `
			DROP TABLE IF EXISTS chat_reports;
		`,
	},
}

// RunMigrations runs all pending migrations
func RunMigrations(db *sql.DB) error {
	// Ensure migrations table exists
	if err := ensureMigrationsTable(db); err != nil {
		return err
	}

	// Get current version
	currentVersion, err := getCurrentVersion(db)
	if err != nil {
		return err
	}

	// Run pending migrations in ascending order by version
	sorted := make([]Migration, len(Migrations))
	copy(sorted, Migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	for _, migration := range sorted {
		if migration.Version <= currentVersion {
			continue
		}

		fmt.Printf("Running migration %d...\n", migration.Version)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if _, err := tx.Exec(migration.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to run migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		fmt.Printf("Migration %d completed\n", migration.Version)
	}

	return nil
}

func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func getCurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}
