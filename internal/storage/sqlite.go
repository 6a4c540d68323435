package storage

import (
	"fmt"

	"go.uber.org/zap"
)

// schemaStep is one versioned schema change. Its statements run in a single
// transaction together with the version bookkeeping.
type schemaStep struct {
	version    int
	name       string
	statements []string
}

// schemaSteps must stay sorted by version; applied steps are never edited.
var schemaSteps = []schemaStep{
	{
		version: 1,
		name:    "search_history",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS search_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				search_id TEXT NOT NULL UNIQUE,
				tool TEXT NOT NULL,
				query_hash TEXT NOT NULL,
				timestamp TEXT NOT NULL,
				results_count INTEGER NOT NULL,
				duration_ms INTEGER NOT NULL DEFAULT 0,
				outcome TEXT NOT NULL DEFAULT 'success'
			)`,
			`CREATE INDEX IF NOT EXISTS idx_search_history_timestamp ON search_history(timestamp DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_search_history_tool ON search_history(tool)`,
		},
	},
	{
		version: 2,
		name:    "query_hash_index",
		statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_search_history_query_hash ON search_history(query_hash)`,
		},
	},
}

// schemaVersion is the version a fully migrated database reports.
func schemaVersion() int {
	return schemaSteps[len(schemaSteps)-1].version
}

// runMigrations brings the schema up to date.
func (s *SQLiteStorage) runMigrations() error {
	if s.db == nil {
		return nil
	}

	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	current, err := s.appliedVersion()
	if err != nil {
		return err
	}

	for _, step := range schemaSteps {
		if step.version <= current {
			continue
		}
		s.logger.Debug("applying schema step", zap.Int("version", step.version), zap.String("name", step.name))
		if err := s.apply(step); err != nil {
			return fmt.Errorf("schema step %d (%s): %w", step.version, step.name, err)
		}
	}
	return nil
}

func (s *SQLiteStorage) appliedVersion() (int, error) {
	var v int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

func (s *SQLiteStorage) apply(step schemaStep) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range step.statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, step.version, step.name); err != nil {
		return err
	}
	return tx.Commit()
}
