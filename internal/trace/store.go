// Package trace records simulation signal transitions in a temporary DuckDB
// file so a workspace's run can be inspected and replayed without holding
// the event history in process memory.
package trace

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/marcboeker/go-duckdb"

	"github.com/circuitbench/backend/internal/models"
)

// Config tunes the DuckDB instance backing a store.
type Config struct {
	MemoryLimit string
	Threads     int
	BatchSize   int
}

func (c Config) withDefaults() Config {
	if c.MemoryLimit == "" {
		c.MemoryLimit = "256MB"
	}
	if c.Threads <= 0 {
		c.Threads = 2
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 32
	}
	return c
}

// Store is a DuckDB-backed recorder for one workspace's signal events.
// Appends are batched and flushed through the native Appender API; queries
// flush first so they always observe every recorded event. All methods are
// safe for concurrent use.
type Store struct {
	mu         sync.Mutex
	db         *sql.DB
	dbPath     string
	eventCount int
	batchSize  int
	batch      []models.SignalEvent
	minTs      int64
	maxTs      int64
	lastErr    error
}

// NewStore creates a store for the given workspace in tempDir.
func NewStore(tempDir, workspaceID string, cfg Config) (*Store, error) {
	dbPath := filepath.Join(tempDir, fmt.Sprintf("trace_%s.duckdb", workspaceID))
	return NewStoreAtPath(dbPath, cfg)
}

// NewStoreAtPath creates a store backed by a DuckDB file at dbPath. The
// file is removed again when the store is closed.
func NewStoreAtPath(dbPath string, cfg Config) (*Store, error) {
	cfg = cfg.withDefaults()

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			fmt.Sprintf("PRAGMA memory_limit='%s'", cfg.MemoryLimit),
			fmt.Sprintf("PRAGMA threads=%d", cfg.Threads),
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	_, err = db.Exec(`
		CREATE TABLE events (
			id        INTEGER PRIMARY KEY,
			timestamp BIGINT NOT NULL,
			signal    VARCHAR NOT NULL,
			val       BOOLEAN NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		os.Remove(dbPath)
		return nil, fmt.Errorf("failed to create events table: %w", err)
	}

	fmt.Printf("[Trace] Recording to %s\n", dbPath)
	return &Store{
		db:        db,
		dbPath:    dbPath,
		batchSize: cfg.BatchSize,
		batch:     make([]models.SignalEvent, 0, cfg.BatchSize),
	}, nil
}

// Append records one signal transition. Events are batched; a failed flush
// is remembered in LastError and does not stop later appends.
func (s *Store) Append(ev models.SignalEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batch = append(s.batch, ev)

	tsMs := ev.Timestamp.UnixMilli()
	if s.eventCount == 0 || tsMs < s.minTs {
		s.minTs = tsMs
	}
	if tsMs > s.maxTs {
		s.maxTs = tsMs
	}
	s.eventCount++

	if len(s.batch) >= s.batchSize {
		if err := s.flushLocked(); err != nil {
			s.lastErr = err
			fmt.Printf("[Trace] flush error: %v\n", err)
		}
	}
}

// LastError returns the last error seen while flushing batched events.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// flushLocked writes the current batch through the native Appender API.
// Caller holds s.mu.
func (s *Store) flushLocked() error {
	if len(s.batch) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(driver.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", "events")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		baseID := s.eventCount - len(s.batch)
		for i, ev := range s.batch {
			err := appender.AppendRow(
				int32(baseID+i),
				ev.Timestamp.UnixMilli(),
				ev.Signal,
				ev.Value,
			)
			if err != nil {
				return fmt.Errorf("failed to append row %d: %w", i, err)
			}
		}

		return appender.Flush()
	})
	if err != nil {
		return fmt.Errorf("appender error: %w", err)
	}

	s.batch = s.batch[:0]
	return nil
}

// Events returns the transitions inside [start, end], oldest first,
// optionally restricted to the named signals.
func (s *Store) Events(ctx context.Context, start, end time.Time, signals []string) ([]models.SignalEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flushLocked(); err != nil {
		s.lastErr = err
		return nil, err
	}

	query := `
		SELECT timestamp, signal, val
		FROM events WHERE timestamp >= ? AND timestamp <= ?
	`
	args := []interface{}{start.UnixMilli(), end.UnixMilli()}

	if len(signals) > 0 {
		placeholders := make([]string, len(signals))
		for i, sig := range signals {
			placeholders[i] = "?"
			args = append(args, sig)
		}
		query += " AND signal IN (" + strings.Join(placeholders, ", ") + ")"
	}

	query += " ORDER BY timestamp, id LIMIT 100000"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ValuesAt returns the most recent value of each signal at or before ts,
// optionally restricted to the named signals. Signals with no transition
// yet are absent from the result.
func (s *Store) ValuesAt(ctx context.Context, ts time.Time, signals []string) ([]models.SignalEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flushLocked(); err != nil {
		s.lastErr = err
		return nil, err
	}

	query := `
		WITH latest AS (
			SELECT
				timestamp, signal, val,
				ROW_NUMBER() OVER(PARTITION BY signal ORDER BY timestamp DESC, id DESC) as rn
			FROM events
			WHERE timestamp <= ?
	`
	args := []interface{}{ts.UnixMilli()}

	if len(signals) > 0 {
		placeholders := make([]string, len(signals))
		for i, sig := range signals {
			placeholders[i] = "?"
			args = append(args, sig)
		}
		query += " AND signal IN (" + strings.Join(placeholders, ", ") + ")"
	}

	query += `
		)
		SELECT timestamp, signal, val
		FROM latest
		WHERE rn = 1
		ORDER BY signal
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Len returns the total number of recorded events, flushed or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eventCount
}

// TimeRange returns the recorded time span, or nil while the store is
// empty.
func (s *Store) TimeRange() *models.TimeRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.eventCount == 0 {
		return nil
	}
	return &models.TimeRange{
		Start: time.UnixMilli(s.minTs),
		End:   time.UnixMilli(s.maxTs),
	}
}

// Close closes the database and removes the backing file. A query racing
// this sees a closed-database error, never a partial read.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		s.db.Close()
	}
	if s.dbPath != "" {
		os.Remove(s.dbPath)
	}
	return nil
}

func scanEvents(rows *sql.Rows) ([]models.SignalEvent, error) {
	events := make([]models.SignalEvent, 0, 64)
	for rows.Next() {
		var tsMs int64
		var signal string
		var val bool
		if err := rows.Scan(&tsMs, &signal, &val); err != nil {
			return nil, err
		}
		events = append(events, models.SignalEvent{
			Timestamp: time.UnixMilli(tsMs),
			Signal:    signal,
			Value:     val,
		})
	}
	return events, rows.Err()
}
