package storage

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// timeLayout is fixed-width UTC so stored timestamps compare as text.
const timeLayout = "2006-01-02T15:04:05.000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

const insertSearch = `
	INSERT INTO search_history (search_id, tool, query_hash, timestamp, results_count, duration_ms, outcome)
	VALUES (?, ?, ?, ?, ?, ?, ?)
`

// RecordSearch records a single search.
func (s *SQLiteStorage) RecordSearch(record SearchRecord) error {
	return s.RecordSearches([]SearchRecord{record})
}

// RecordSearches records a batch of searches in one transaction. Failures
// are logged and swallowed so analytics never break a discovery call.
func (s *SQLiteStorage) RecordSearches(records []SearchRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		s.logger.Warn("failed to begin history transaction", zap.Error(err))
		return nil
	}

	stmt, err := tx.Prepare(insertSearch)
	if err != nil {
		_ = tx.Rollback()
		s.logger.Warn("failed to prepare history insert", zap.Error(err))
		return nil
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(
			r.SearchID,
			r.Tool,
			r.QueryHash,
			formatTime(r.Timestamp),
			r.ResultsCount,
			r.Duration.Milliseconds(),
			r.Outcome,
		); err != nil {
			_ = tx.Rollback()
			s.logger.Warn("failed to record search", zap.String("tool", r.Tool), zap.Error(err))
			return nil
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Warn("failed to commit search history", zap.Error(err))
	}
	return nil
}

// Stats aggregates searches recorded since the given time, busiest tool
// first.
func (s *SQLiteStorage) Stats(since time.Time) (*HistoryStats, error) {
	stats := &HistoryStats{Since: since, Tools: []ToolStats{}}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return stats, nil
	}

	cutoff := formatTime(since)

	if err := s.db.QueryRow(`
		SELECT COUNT(*), COUNT(DISTINCT query_hash)
		FROM search_history
		WHERE timestamp >= ?
	`, cutoff).Scan(&stats.TotalSearches, &stats.UniqueQueries); err != nil {
		return nil, fmt.Errorf("failed to count searches: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT tool,
			COUNT(*),
			SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
			SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
			AVG(results_count),
			AVG(duration_ms),
			MAX(timestamp)
		FROM search_history
		WHERE timestamp >= ?
		GROUP BY tool
		ORDER BY COUNT(*) DESC, tool ASC
	`, OutcomeError, OutcomeEmpty, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query search stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ts       ToolStats
			lastUsed string
		)
		if err := rows.Scan(&ts.Tool, &ts.Searches, &ts.Errors, &ts.Empty, &ts.AvgResults, &ts.AvgDurationMs, &lastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan search stats: %w", err)
		}
		if t, err := time.Parse(timeLayout, lastUsed); err == nil {
			ts.LastUsed = t
		}
		stats.Tools = append(stats.Tools, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search stats: %w", err)
	}

	return stats, nil
}

// Cleanup removes old records based on retention policy.
func (s *SQLiteStorage) Cleanup(retention time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return 0, nil
	}

	cutoff := formatTime(time.Now().Add(-retention))

	res, err := s.db.Exec("DELETE FROM search_history WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup search_history: %w", err)
	}
	deleted, _ := res.RowsAffected()

	// Vacuum to reclaim space
	if _, err := s.db.Exec("VACUUM"); err != nil {
		s.logger.Warn("failed to vacuum database", zap.Error(err))
	}

	return deleted, nil
}
