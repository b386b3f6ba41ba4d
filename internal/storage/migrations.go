package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a
// fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Segment and element definition tables",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS element_usage_defs (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					agency TEXT NOT NULL,
					version TEXT NOT NULL,
					segment_id TEXT NOT NULL,
					position INTEGER NOT NULL,
					element_id TEXT,
					description TEXT,
					requirement_designator TEXT,
					type TEXT,
					minimum_length INTEGER DEFAULT 0,
					maximum_length INTEGER DEFAULT 0,
					composite_element TEXT
				)`,
				`CREATE INDEX idx_element_defs_lookup
					ON element_usage_defs(segment_id, agency, version)`,

				`CREATE TABLE IF NOT EXISTS custom_element_usage_defs (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					agency TEXT NOT NULL,
					version TEXT NOT NULL,
					segment_id TEXT NOT NULL,
					position INTEGER NOT NULL,
					element_id TEXT,
					description TEXT,
					requirement_designator TEXT,
					type TEXT,
					minimum_length INTEGER DEFAULT 0,
					maximum_length INTEGER DEFAULT 0,
					composite_element TEXT
				)`,
				`CREATE INDEX idx_custom_element_defs_lookup
					ON custom_element_usage_defs(segment_id, agency, version)`,

				`CREATE TABLE IF NOT EXISTS segment_usage (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					agency TEXT NOT NULL,
					version TEXT NOT NULL,
					transaction_set_id TEXT NOT NULL,
					position INTEGER NOT NULL,
					segment_id TEXT NOT NULL,
					requirement_designator TEXT,
					maximum_usage INTEGER DEFAULT 1,
					maximum_loop_repeat INTEGER DEFAULT 0,
					loop_id TEXT,
					section TEXT
				)`,
				`CREATE INDEX idx_segment_usage_lookup
					ON segment_usage(transaction_set_id, agency, version)`,

				`CREATE TABLE IF NOT EXISTS custom_segment_usage (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					agency TEXT NOT NULL,
					version TEXT NOT NULL,
					transaction_set_id TEXT NOT NULL,
					position INTEGER NOT NULL,
					segment_id TEXT NOT NULL,
					requirement_designator TEXT,
					maximum_usage INTEGER DEFAULT 1,
					maximum_loop_repeat INTEGER DEFAULT 0,
					loop_id TEXT,
					section TEXT
				)`,
				`CREATE INDEX idx_custom_segment_usage_lookup
					ON custom_segment_usage(transaction_set_id, agency, version)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Segment description tables",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS segment_descriptions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					agency TEXT NOT NULL,
					version TEXT NOT NULL,
					segment_id TEXT NOT NULL,
					description TEXT
				)`,
				`CREATE INDEX idx_segment_descriptions_lookup
					ON segment_descriptions(segment_id, agency, version)`,

				`CREATE TABLE IF NOT EXISTS custom_segment_descriptions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					agency TEXT NOT NULL,
					version TEXT NOT NULL,
					segment_id TEXT NOT NULL,
					description TEXT
				)`,
				`CREATE INDEX idx_custom_segment_descriptions_lookup
					ON custom_segment_descriptions(segment_id, agency, version)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Document profiles and raw documents",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS document_profiles (
					interchange_sender TEXT NOT NULL,
					document_id TEXT NOT NULL,
					standard TEXT NOT NULL,
					version TEXT NOT NULL,
					transaction_set_id TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (interchange_sender, document_id)
				)`,

				`CREATE TABLE IF NOT EXISTS raw_documents (
					doc_id TEXT PRIMARY KEY,
					raw_text TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate runs all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var current int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}

		slog.Info("Applying migration",
			"version", migration.Version,
			"description", migration.Description)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec(
			`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`,
			migration.Version, migration.Description); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	var final int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&final); err != nil {
		return fmt.Errorf("failed to verify schema version: %w", err)
	}
	if final != ExpectedSchemaVersion {
		return fmt.Errorf("database at schema version %d, expected %d", final, ExpectedSchemaVersion)
	}

	return nil
}
