package metrics

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"weekly-meals/internal/database"
)

const timestampLayout = "2006-01-02 15:04:05"

// RunMetric records metadata for a single batch command run.
type RunMetric struct {
	Command   string
	Accepted  int
	Rejected  int
	Duration  time.Duration
	Timestamp time.Time
}

// Store handles persistence of run metrics to SQLite.
type Store struct {
	q database.Querier
}

// NewStore initializes the Store with an existing database connection.
func NewStore(q database.Querier) *Store {
	return &Store{q: q}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m RunMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	query, args, err := sq.Insert("run_metrics").
		Columns("command", "accepted", "rejected", "duration_ms", "timestamp").
		Values(m.Command, m.Accepted, m.Rejected, m.Duration.Milliseconds(), ts.UTC().Format(timestampLayout)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build metric insert: %w", err)
	}
	if _, err := s.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to record run metric: %w", err)
	}
	return nil
}

// Recent returns the latest limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit uint64) ([]RunMetric, error) {
	query, args, err := sq.Select("command", "accepted", "rejected", "duration_ms", "timestamp").
		From("run_metrics").
		OrderBy("timestamp DESC", "id DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build metrics query: %w", err)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list run metrics: %w", err)
	}
	defer rows.Close()

	var results []RunMetric
	for rows.Next() {
		var m RunMetric
		var ms int64
		var ts string
		if err := rows.Scan(&m.Command, &m.Accepted, &m.Rejected, &ms, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan run metric: %w", err)
		}
		m.Duration = time.Duration(ms) * time.Millisecond
		if parsed, err := time.ParseInLocation(timestampLayout, ts, time.UTC); err == nil {
			m.Timestamp = parsed
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days and
// returns how many were deleted.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(timestampLayout)

	query, args, err := sq.Delete("run_metrics").Where(sq.Lt{"timestamp": threshold}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build cleanup query: %w", err)
	}
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up run metrics: %w", err)
	}
	return res.RowsAffected()
}
