/*
Package storage implements the search analytics store.

Only aggregate facts about a search are kept: the tool that ran, a SHA256 hash
of the query, the result count, duration and outcome. Queries and
recommendations themselves are never written to disk.

The database lives at ~/.mcp-scout/history.db by default and uses
modernc.org/sqlite (a pure Go, CGo-free implementation). When the database
cannot be opened, storage is disabled and every operation becomes a no-op.
*/
package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Storage defines the interface for persistent storage operations.
type Storage interface {
	// Init initializes the database and runs migrations.
	Init() error

	// RecordSearch records a single search.
	RecordSearch(record SearchRecord) error

	// RecordSearches records a batch of searches in one transaction.
	RecordSearches(records []SearchRecord) error

	// Stats aggregates searches recorded since the given time.
	Stats(since time.Time) (*HistoryStats, error)

	// Cleanup removes records older than retention and returns how many
	// were deleted.
	Cleanup(retention time.Duration) (int64, error)

	// Close closes the database connection.
	Close() error
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	enabled  bool
	logger   *zap.Logger
	mu       sync.Mutex
	initOnce sync.Once
}

// NewStorage creates a SQLite storage instance for dbPath. Nothing is
// opened until Init.
func NewStorage(dbPath string, logger *zap.Logger) *SQLiteStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStorage{
		dbPath:  dbPath,
		enabled: strings.TrimSpace(dbPath) != "",
		logger:  logger,
	}
}

// Enabled reports whether the store accepts writes.
func (s *SQLiteStorage) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled && s.db != nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Init initializes the database and runs migrations.
//
// If initialization fails, storage is disabled and subsequent operations
// become no-ops (graceful degradation).
func (s *SQLiteStorage) Init() error {
	if !s.enabled {
		return nil
	}

	var initErr error
	s.initOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if err := os.MkdirAll(filepath.Dir(s.dbPath), 0755); err != nil {
			initErr = s.disable(fmt.Errorf("failed to create db directory: %w", err))
			return
		}

		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			initErr = s.disable(fmt.Errorf("failed to open database: %w", err))
			return
		}
		// SQLite serializes writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		s.db = db

		if err := db.Ping(); err != nil {
			initErr = s.disable(fmt.Errorf("failed to ping database: %w", err))
			return
		}

		if err := s.runMigrations(); err != nil {
			initErr = s.disable(fmt.Errorf("failed to run migrations: %w", err))
			return
		}
	})

	return initErr
}

// disable turns the store into a no-op after a failed Init. Callers hold mu.
func (s *SQLiteStorage) disable(err error) error {
	s.enabled = false
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}
	s.logger.Warn("search history disabled", zap.String("path", s.dbPath), zap.Error(err))
	return err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	return nil
}

// HashQuery creates a SHA256 hash of a query string for privacy.
// Queries are normalized so trivially different spellings share a hash.
func HashQuery(query string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}
