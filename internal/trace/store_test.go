// store_test.go - Tests for the DuckDB-backed signal trace store
package trace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/circuitbench/backend/internal/models"
)

// createTestStore creates a temporary trace store for testing
func createTestStore(t *testing.T) (*Store, func()) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir, "test_"+time.Now().Format("20060102_150405"), Config{})
	if err != nil {
		t.Fatalf("Failed to create trace store: %v", err)
	}

	cleanup := func() {
		store.Close()
	}

	return store, cleanup
}

func testEvent(signal string, ts time.Time, value bool) models.SignalEvent {
	return models.SignalEvent{
		Timestamp: ts,
		Signal:    signal,
		Value:     value,
	}
}

func TestNewStore(t *testing.T) {
	t.Run("creates store successfully", func(t *testing.T) {
		store, cleanup := createTestStore(t)
		defer cleanup()

		if store == nil {
			t.Fatal("Expected store to be created, got nil")
		}
		if store.db == nil {
			t.Error("Expected database connection to be initialized")
		}
		if store.batchSize != 32 {
			t.Errorf("Expected default batch size 32, got %d", store.batchSize)
		}
	})

	t.Run("creates database file", func(t *testing.T) {
		tempDir := t.TempDir()

		store, err := NewStore(tempDir, "file_test", Config{})
		if err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}
		defer store.Close()

		dbPath := filepath.Join(tempDir, "trace_file_test.duckdb")
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("Expected database file to be created")
		}
	})
}

func TestStore_Append(t *testing.T) {
	t.Run("counts appended events", func(t *testing.T) {
		store, cleanup := createTestStore(t)
		defer cleanup()

		base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		store.Append(testEvent(models.SignalRun, base, true))
		store.Append(testEvent(models.SignalButton, base.Add(time.Second), true))

		if store.Len() != 2 {
			t.Errorf("Expected 2 events, got %d", store.Len())
		}
	})

	t.Run("tracks time range", func(t *testing.T) {
		store, cleanup := createTestStore(t)
		defer cleanup()

		ts1 := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
		ts2 := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
		ts3 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

		store.Append(testEvent(models.SignalRun, ts1, true))
		store.Append(testEvent(models.SignalButton, ts2, true))
		store.Append(testEvent(models.SignalLed, ts3, false))

		timeRange := store.TimeRange()
		if timeRange == nil {
			t.Fatal("Expected time range to be set")
		}
		if !timeRange.Start.Equal(ts3) {
			t.Errorf("Expected start %v, got %v", ts3, timeRange.Start)
		}
		if !timeRange.End.Equal(ts2) {
			t.Errorf("Expected end %v, got %v", ts2, timeRange.End)
		}
	})

	t.Run("time range is nil while empty", func(t *testing.T) {
		store, cleanup := createTestStore(t)
		defer cleanup()

		if store.TimeRange() != nil {
			t.Error("Expected nil time range for empty store")
		}
	})
}

func TestStore_Events(t *testing.T) {
	t.Run("returns events in window oldest first", func(t *testing.T) {
		store, cleanup := createTestStore(t)
		defer cleanup()

		base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		for i := 0; i < 10; i++ {
			store.Append(testEvent(models.SignalButton, base.Add(time.Duration(i)*time.Second), i%2 == 0))
		}

		ctx := context.Background()
		events, err := store.Events(ctx, base.Add(3*time.Second), base.Add(7*time.Second), nil)
		if err != nil {
			t.Fatalf("Failed to query events: %v", err)
		}

		// Window bounds are inclusive: 3, 4, 5, 6, 7.
		if len(events) != 5 {
			t.Fatalf("Expected 5 events, got %d", len(events))
		}
		for i := 1; i < len(events); i++ {
			if events[i].Timestamp.Before(events[i-1].Timestamp) {
				t.Error("Expected events in ascending time order")
			}
		}
		if !events[0].Timestamp.Equal(base.Add(3 * time.Second)) {
			t.Errorf("Expected first event at +3s, got %v", events[0].Timestamp)
		}
	})

	t.Run("query observes unflushed batch", func(t *testing.T) {
		store, cleanup := createTestStore(t)
		defer cleanup()

		// 3 events stay below the batch size of 32, so the query path
		// must flush before reading.
		base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		store.Append(testEvent(models.SignalRun, base, true))
		store.Append(testEvent(models.SignalButton, base.Add(time.Second), true))
		store.Append(testEvent(models.SignalLed, base.Add(time.Second), true))

		events, err := store.Events(context.Background(), base, base.Add(time.Minute), nil)
		if err != nil {
			t.Fatalf("Failed to query events: %v", err)
		}
		if len(events) != 3 {
			t.Errorf("Expected 3 events, got %d", len(events))
		}
	})

	t.Run("filters by signal", func(t *testing.T) {
		store, cleanup := createTestStore(t)
		defer cleanup()

		base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		store.Append(testEvent(models.SignalRun, base, true))
		store.Append(testEvent(models.SignalButton, base.Add(time.Second), true))
		store.Append(testEvent(models.SignalLed, base.Add(time.Second), true))
		store.Append(testEvent(models.SignalButton, base.Add(2*time.Second), false))

		events, err := store.Events(context.Background(), base, base.Add(time.Minute), []string{models.SignalButton})
		if err != nil {
			t.Fatalf("Failed to query events: %v", err)
		}

		if len(events) != 2 {
			t.Fatalf("Expected 2 button events, got %d", len(events))
		}
		for _, ev := range events {
			if ev.Signal != models.SignalButton {
				t.Errorf("Expected only button events, got %s", ev.Signal)
			}
		}
	})

	t.Run("preserves values across the batch boundary", func(t *testing.T) {
		store, cleanup := createTestStore(t)
		defer cleanup()

		// Push well past one batch so both the appender path and the
		// flush-on-query path are exercised.
		base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		for i := 0; i < 80; i++ {
			store.Append(testEvent(models.SignalButton, base.Add(time.Duration(i)*time.Millisecond), i%2 == 0))
		}

		events, err := store.Events(context.Background(), base, base.Add(time.Second), nil)
		if err != nil {
			t.Fatalf("Failed to query events: %v", err)
		}
		if len(events) != 80 {
			t.Fatalf("Expected 80 events, got %d", len(events))
		}
		for i, ev := range events {
			if ev.Value != (i%2 == 0) {
				t.Errorf("Event %d: expected value %v, got %v", i, i%2 == 0, ev.Value)
			}
		}
	})

	t.Run("empty store yields empty result", func(t *testing.T) {
		store, cleanup := createTestStore(t)
		defer cleanup()

		events, err := store.Events(context.Background(), time.UnixMilli(0), time.Now(), nil)
		if err != nil {
			t.Fatalf("Failed to query empty store: %v", err)
		}
		if len(events) != 0 {
			t.Errorf("Expected 0 events, got %d", len(events))
		}
	})
}

func TestStore_ValuesAt(t *testing.T) {
	t.Run("returns latest value per signal", func(t *testing.T) {
		store, cleanup := createTestStore(t)
		defer cleanup()

		base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

		store.Append(testEvent(models.SignalRun, base, true))
		store.Append(testEvent(models.SignalButton, base.Add(2*time.Second), true))
		store.Append(testEvent(models.SignalButton, base.Add(5*time.Second), false))
		store.Append(testEvent(models.SignalLed, base.Add(2*time.Second), true))
		store.Append(testEvent(models.SignalLed, base.Add(5*time.Second), false))

		events, err := store.ValuesAt(context.Background(), base.Add(3*time.Second), nil)
		if err != nil {
			t.Fatalf("Failed to get values: %v", err)
		}

		// At +3s: run=true (t=0), button=true (t=2), led=true (t=2).
		if len(events) != 3 {
			t.Fatalf("Expected 3 signal values, got %d", len(events))
		}
		for _, ev := range events {
			if !ev.Value {
				t.Errorf("Expected %s true at +3s, got false", ev.Signal)
			}
		}
	})

	t.Run("signals with no transition yet are absent", func(t *testing.T) {
		store, cleanup := createTestStore(t)
		defer cleanup()

		base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		store.Append(testEvent(models.SignalRun, base.Add(10*time.Second), true))

		events, err := store.ValuesAt(context.Background(), base, nil)
		if err != nil {
			t.Fatalf("Failed to get values: %v", err)
		}
		if len(events) != 0 {
			t.Errorf("Expected no values before the first transition, got %d", len(events))
		}
	})

	t.Run("filters by signal", func(t *testing.T) {
		store, cleanup := createTestStore(t)
		defer cleanup()

		base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		store.Append(testEvent(models.SignalRun, base, true))
		store.Append(testEvent(models.SignalButton, base.Add(time.Second), true))

		events, err := store.ValuesAt(context.Background(), base.Add(time.Minute), []string{models.SignalRun})
		if err != nil {
			t.Fatalf("Failed to get values: %v", err)
		}
		if len(events) != 1 || events[0].Signal != models.SignalRun {
			t.Errorf("Expected only the run signal, got %v", events)
		}
	})
}

func TestStore_Close(t *testing.T) {
	t.Run("removes the database file", func(t *testing.T) {
		tempDir := t.TempDir()

		store, err := NewStore(tempDir, "close_test", Config{})
		if err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}

		store.Append(testEvent(models.SignalRun, time.Now(), true))

		dbPath := filepath.Join(tempDir, "trace_close_test.duckdb")
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Fatal("Expected database file before close")
		}

		if err := store.Close(); err != nil {
			t.Fatalf("Failed to close store: %v", err)
		}

		if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
			t.Error("Expected database file to be removed on close")
		}
	})

	t.Run("close twice is harmless", func(t *testing.T) {
		store, _ := createTestStore(t)

		if err := store.Close(); err != nil {
			t.Fatalf("First close failed: %v", err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("Second close failed: %v", err)
		}
	})
}

func TestStore_LastError(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	if store.LastError() != nil {
		t.Errorf("Expected no initial error, got %v", store.LastError())
	}
}
