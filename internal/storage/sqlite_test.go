package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sharma-sourabh3435/fleet-scheduler/internal/models"
)

func setupTestDB(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test_fleet.db")

	storage, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	cleanup := func() {
		storage.Close()
	}

	return storage, cleanup
}

func TestRecordAndGetCycle(t *testing.T) {
	storage, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	record := &models.CycleRecord{
		RunID:      "run-1",
		Cycle:      1,
		Efficiency: 87.5,
		Events: []string{
			"ASSIGNED: job T-1000 (Python, priority 3) -> worker Alpha-01",
			"DONE: worker Alpha-01 completed job T-1000",
		},
	}
	if err := storage.RecordCycle(ctx, record); err != nil {
		t.Fatalf("Failed to record cycle: %v", err)
	}
	if record.ID == 0 {
		t.Error("Expected cycle ID to be set")
	}

	retrieved, err := storage.GetCycle(ctx, record.ID)
	if err != nil {
		t.Fatalf("Failed to get cycle: %v", err)
	}
	if retrieved.RunID != "run-1" || retrieved.Cycle != 1 || retrieved.Efficiency != 87.5 {
		t.Errorf("Retrieved cycle doesn't match. Got %+v", retrieved)
	}
	if len(retrieved.Events) != 2 || retrieved.Events[1] != record.Events[1] {
		t.Errorf("Expected events in order, got %v", retrieved.Events)
	}
}

func TestGetMissingCycle(t *testing.T) {
	storage, cleanup := setupTestDB(t)
	defer cleanup()

	if _, err := storage.GetCycle(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRecordCycleWithoutEvents(t *testing.T) {
	storage, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	record := &models.CycleRecord{RunID: "run-1", Cycle: 3, Efficiency: 100}
	if err := storage.RecordCycle(ctx, record); err != nil {
		t.Fatalf("Failed to record cycle: %v", err)
	}

	retrieved, err := storage.GetCycle(ctx, record.ID)
	if err != nil {
		t.Fatalf("Failed to get cycle: %v", err)
	}
	if retrieved.Events == nil || len(retrieved.Events) != 0 {
		t.Errorf("Expected empty event list, got %#v", retrieved.Events)
	}
}

func TestListCyclesByRun(t *testing.T) {
	storage, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		record := &models.CycleRecord{
			RunID:      "run-a",
			Cycle:      i,
			Efficiency: 100,
			Events:     []string{fmt.Sprintf("event %d", i)},
		}
		if err := storage.RecordCycle(ctx, record); err != nil {
			t.Fatalf("Failed to record cycle: %v", err)
		}
	}
	if err := storage.RecordCycle(ctx, &models.CycleRecord{RunID: "run-b", Cycle: 1}); err != nil {
		t.Fatalf("Failed to record cycle: %v", err)
	}

	cycles, err := storage.ListCycles(ctx, "run-a", 2, 1)
	if err != nil {
		t.Fatalf("Failed to list cycles: %v", err)
	}
	if len(cycles) != 2 {
		t.Fatalf("Expected 2 cycles, got %d", len(cycles))
	}
	if cycles[0].Cycle != 4 || cycles[1].Cycle != 3 {
		t.Errorf("Expected cycles 4 and 3, got %d and %d", cycles[0].Cycle, cycles[1].Cycle)
	}
	if len(cycles[0].Events) != 1 || cycles[0].Events[0] != "event 4" {
		t.Errorf("Expected events loaded, got %v", cycles[0].Events)
	}
}

func TestRecentEventsMixesCyclesAndAdmin(t *testing.T) {
	storage, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	admin := &models.Event{RunID: "run-1", Message: "NEW HIRE: worker Delta-04 joined the fleet"}
	if err := storage.RecordEvent(ctx, admin); err != nil {
		t.Fatalf("Failed to record event: %v", err)
	}
	if admin.Kind != models.EventKindAdmin || admin.ID == 0 {
		t.Errorf("Expected admin event with id, got %+v", admin)
	}

	record := &models.CycleRecord{RunID: "run-1", Cycle: 1, Events: []string{"first", "second"}}
	if err := storage.RecordCycle(ctx, record); err != nil {
		t.Fatalf("Failed to record cycle: %v", err)
	}
	if err := storage.RecordEvent(ctx, &models.Event{RunID: "other", Message: "ignored"}); err != nil {
		t.Fatalf("Failed to record event: %v", err)
	}

	events, err := storage.RecentEvents(ctx, "run-1", 2)
	if err != nil {
		t.Fatalf("Failed to get recent events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Message != "first" || events[1].Message != "second" {
		t.Errorf("Expected the two newest events oldest first, got %q and %q", events[0].Message, events[1].Message)
	}
	if events[0].Kind != models.EventKindCycle || events[0].Cycle != 1 {
		t.Errorf("Unexpected cycle event %+v", events[0])
	}
}

func TestPing(t *testing.T) {
	storage, cleanup := setupTestDB(t)
	defer cleanup()

	if err := storage.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
