package storage

import (
	"context"
	"errors"

	"github.com/sharma-sourabh3435/fleet-scheduler/internal/models"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// Storage keeps the history of simulation runs: the event log of every
// cycle and admin action, grouped by run id. The engine itself never reads
// it back.
type Storage interface {
	// Cycle operations
	RecordCycle(ctx context.Context, record *models.CycleRecord) error
	GetCycle(ctx context.Context, id int) (*models.CycleRecord, error)
	ListCycles(ctx context.Context, runID string, limit, offset int) ([]*models.CycleRecord, error)

	// Event operations
	RecordEvent(ctx context.Context, event *models.Event) error
	RecentEvents(ctx context.Context, runID string, limit int) ([]*models.Event, error)

	// Database management
	Close() error
	Ping(ctx context.Context) error
}
