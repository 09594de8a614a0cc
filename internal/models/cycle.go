package models

import "time"

// Event kinds recorded in the history store
const (
	EventKindCycle = "cycle"
	EventKindAdmin = "admin"
)

// CycleRecord is one executed cycle as kept by the history store
type CycleRecord struct {
	ID         int       `json:"id" db:"id"`
	RunID      string    `json:"run_id" db:"run_id"`
	Cycle      int       `json:"cycle" db:"cycle"`
	Efficiency float64   `json:"efficiency" db:"efficiency"`
	Events     []string  `json:"events"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Event is a single human-readable log line
type Event struct {
	ID        int       `json:"id" db:"id"`
	RunID     string    `json:"run_id" db:"run_id"`
	Cycle     int       `json:"cycle" db:"cycle"`
	Kind      string    `json:"kind" db:"kind"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

