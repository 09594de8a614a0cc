package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sharma-sourabh3435/fleet-scheduler/internal/models"
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single writer avoids SQLITE_BUSY between the API handlers.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	storage := &SQLiteStorage{db: db}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema initializes the database schema
func (s *SQLiteStorage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cycles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		cycle INTEGER NOT NULL,
		efficiency REAL NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		cycle_id INTEGER,
		cycle INTEGER NOT NULL DEFAULT 0,
		seq INTEGER NOT NULL DEFAULT 0,
		kind TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (cycle_id) REFERENCES cycles(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_cycles_run_id ON cycles(run_id);
	CREATE INDEX IF NOT EXISTS idx_events_run_id ON events(run_id);
	CREATE INDEX IF NOT EXISTS idx_events_cycle_id ON events(cycle_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// RecordCycle stores a cycle and its event log in one transaction
func (s *SQLiteStorage) RecordCycle(ctx context.Context, record *models.CycleRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO cycles (run_id, cycle, efficiency, created_at) VALUES (?, ?, ?, ?)`,
		record.RunID, record.Cycle, record.Efficiency, now)
	if err != nil {
		return fmt.Errorf("failed to record cycle: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (run_id, cycle_id, cycle, seq, kind, message, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer stmt.Close()

	for seq, message := range record.Events {
		if _, err := stmt.ExecContext(ctx, record.RunID, id, record.Cycle, seq, models.EventKindCycle, message, now); err != nil {
			return fmt.Errorf("failed to record cycle event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cycle: %w", err)
	}

	record.ID = int(id)
	record.CreatedAt = now
	return nil
}

// GetCycle retrieves a cycle with its event log
func (s *SQLiteStorage) GetCycle(ctx context.Context, id int) (*models.CycleRecord, error) {
	query := `SELECT id, run_id, cycle, efficiency, created_at FROM cycles WHERE id = ?`

	record := &models.CycleRecord{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID, &record.RunID, &record.Cycle, &record.Efficiency, &record.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cycle not found: %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cycle: %w", err)
	}

	if err := s.loadCycleEvents(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ListCycles retrieves the cycles of a run, newest first
func (s *SQLiteStorage) ListCycles(ctx context.Context, runID string, limit, offset int) ([]*models.CycleRecord, error) {
	query := `SELECT id, run_id, cycle, efficiency, created_at
	          FROM cycles WHERE run_id = ? ORDER BY id DESC LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, runID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}
	defer rows.Close()

	var records []*models.CycleRecord
	for rows.Next() {
		record := &models.CycleRecord{}
		if err := rows.Scan(&record.ID, &record.RunID, &record.Cycle, &record.Efficiency, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for _, record := range records {
		if err := s.loadCycleEvents(ctx, record); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *SQLiteStorage) loadCycleEvents(ctx context.Context, record *models.CycleRecord) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT message FROM events WHERE cycle_id = ? ORDER BY seq ASC`, record.ID)
	if err != nil {
		return fmt.Errorf("failed to load cycle events: %w", err)
	}
	defer rows.Close()

	record.Events = []string{}
	for rows.Next() {
		var message string
		if err := rows.Scan(&message); err != nil {
			return fmt.Errorf("failed to scan cycle event: %w", err)
		}
		record.Events = append(record.Events, message)
	}
	return rows.Err()
}

// RecordEvent stores a single event outside any cycle
func (s *SQLiteStorage) RecordEvent(ctx context.Context, event *models.Event) error {
	if event.Kind == "" {
		event.Kind = models.EventKindAdmin
	}

	now := time.Now()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO events (run_id, cycle, kind, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		event.RunID, event.Cycle, event.Kind, event.Message, now)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	event.ID = int(id)
	event.CreatedAt = now
	return nil
}

// RecentEvents returns up to limit of the latest events of a run, oldest first
func (s *SQLiteStorage) RecentEvents(ctx context.Context, runID string, limit int) ([]*models.Event, error) {
	query := `SELECT id, run_id, cycle, kind, message, created_at FROM (
	              SELECT id, run_id, cycle, kind, message, created_at
	              FROM events WHERE run_id = ? ORDER BY id DESC LIMIT ?
	          ) ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		if err := rows.Scan(&event.ID, &event.RunID, &event.Cycle, &event.Kind, &event.Message, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
