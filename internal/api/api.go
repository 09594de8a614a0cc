package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/sharma-sourabh3435/fleet-scheduler/internal/models"
	"github.com/sharma-sourabh3435/fleet-scheduler/internal/scheduler"
	"github.com/sharma-sourabh3435/fleet-scheduler/internal/storage"
	"github.com/sharma-sourabh3435/fleet-scheduler/pkg/utils"
)

const (
	defaultListLimit  = 100
	defaultEventLimit = 50
)

// Server represents the API server
type Server struct {
	engine  *scheduler.Engine
	storage storage.Storage
	logger  *utils.Logger
	router  chi.Router
	server  *http.Server

	// mu guards runID; resets hold it exclusively, cycles shared
	mu    sync.RWMutex
	runID string
}

// NewServer creates a new API server instance. store may be nil, in which
// case history endpoints report that history is disabled.
func NewServer(engine *scheduler.Engine, store storage.Storage, addr string, logger *utils.Logger) *Server {
	if logger == nil {
		logger = utils.NewLogger("api", utils.INFO)
	}

	s := &Server{
		engine:  engine,
		storage: store,
		logger:  logger,
		runID:   uuid.NewString(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/state", s.handleState)
	r.Get("/efficiency", s.handleEfficiency)
	r.Post("/reset", s.handleReset)
	r.Get("/events", s.handleEvents)

	r.Route("/cycles", func(r chi.Router) {
		r.Post("/", s.handleRunCycle)
		r.Get("/", s.handleListCycles)
		r.Get("/{cycleID}", s.handleGetCycle)
	})

	r.Route("/workers", func(r chi.Router) {
		r.Get("/", s.handleListWorkers)
		r.Post("/", s.handleCreateWorker)
		r.Get("/{workerID}", s.handleGetWorker)
		r.Delete("/{workerID}", s.handleRemoveWorker)
	})

	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", s.handleListJobs)
		r.Post("/", s.handleInjectJob)
		r.Delete("/completed", s.handleClearCompleted)
		r.Get("/{jobID}", s.handleGetJob)
	})

	s.router = r
	s.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// RunID returns the id history rows of the current simulation are stored under
func (s *Server) RunID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runID
}

// Start starts the API server
func (s *Server) Start() error {
	s.logger.Info("Starting API server on %s (run %s)", s.server.Addr, s.RunID())
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")
	return s.server.Shutdown(ctx)
}

// Middleware: CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Middleware: Logging
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Debug("%s %s -> %d in %v [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start),
			middleware.GetReqID(r.Context()))
	})
}

// Helper: JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response: %v", err)
	}
}

// Helper: Error response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// Helper: map engine and storage errors to status codes
func (s *Server) engineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scheduler.ErrValidation):
		s.errorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, scheduler.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		s.errorResponse(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("Unexpected error: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}

// recordEvent stores an admin event; failures only get logged
func (s *Server) recordEvent(ctx context.Context, message string) {
	if s.storage == nil {
		return
	}
	event := &models.Event{
		RunID:   s.RunID(),
		Cycle:   s.engine.Cycle(),
		Kind:    models.EventKindAdmin,
		Message: message,
	}
	if err := s.storage.RecordEvent(ctx, event); err != nil {
		s.logger.Error("Failed to record event: %v", err)
	}
}

func (s *Server) historyEnabled(w http.ResponseWriter) bool {
	if s.storage == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "History is disabled")
		return false
	}
	return true
}

// pathParam returns a decoded URL parameter. chi matches on the escaped
// path when the request carries one, so escaped ids are decoded here.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return raw
	}
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func queryInt(r *http.Request, key string, def, min int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= min {
			return v
		}
	}
	return def
}

// Handler: GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "run_id": s.RunID()}
	if s.storage != nil {
		if err := s.storage.Ping(r.Context()); err != nil {
			s.logger.Warn("Storage ping failed: %v", err)
			status["status"] = "degraded"
			status["storage"] = err.Error()
		}
	}
	s.jsonResponse(w, http.StatusOK, status)
}

// Handler: GET /state
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, struct {
		RunID string `json:"run_id"`
		scheduler.Snapshot
	}{s.RunID(), s.engine.Snapshot()})
}

// Handler: GET /efficiency
func (s *Server) handleEfficiency(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]float64{"efficiency": s.engine.Efficiency()})
}

// Handler: POST /reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.engine.Reset()
	s.runID = uuid.NewString()
	runID := s.runID
	s.mu.Unlock()

	s.logger.Info("Simulation reset, new run %s", runID)
	s.recordEvent(r.Context(), "RESET: simulation restarted")
	s.jsonResponse(w, http.StatusOK, map[string]string{"run_id": runID})
}

// Handler: GET /events
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if !s.historyEnabled(w) {
		return
	}
	limit := queryInt(r, "limit", defaultEventLimit, 1)

	events, err := s.storage.RecentEvents(r.Context(), s.RunID(), limit)
	if err != nil {
		s.logger.Error("Failed to list events: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	if events == nil {
		events = []*models.Event{}
	}
	s.jsonResponse(w, http.StatusOK, events)
}

// Handler: POST /cycles
func (s *Server) handleRunCycle(w http.ResponseWriter, r *http.Request) {
	// Holding the read lock keeps a concurrent reset from changing the run
	// between the step and the id it is filed under.
	s.mu.RLock()
	runID := s.runID
	result := s.engine.Step()
	s.mu.RUnlock()

	if s.storage != nil {
		record := &models.CycleRecord{
			RunID:      runID,
			Cycle:      result.Cycle,
			Efficiency: result.Efficiency,
			Events:     result.Events,
		}
		if err := s.storage.RecordCycle(r.Context(), record); err != nil {
			s.logger.Error("Failed to record cycle %d: %v", result.Cycle, err)
		}
	}

	s.logger.Info("Cycle %d ran with %d events (efficiency %.1f%%)", result.Cycle, len(result.Events), result.Efficiency)
	s.jsonResponse(w, http.StatusOK, result)
}

// Handler: GET /cycles
func (s *Server) handleListCycles(w http.ResponseWriter, r *http.Request) {
	if !s.historyEnabled(w) {
		return
	}
	limit := queryInt(r, "limit", defaultListLimit, 1)
	offset := queryInt(r, "offset", 0, 0)

	cycles, err := s.storage.ListCycles(r.Context(), s.RunID(), limit, offset)
	if err != nil {
		s.logger.Error("Failed to list cycles: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list cycles")
		return
	}
	if cycles == nil {
		cycles = []*models.CycleRecord{}
	}
	s.jsonResponse(w, http.StatusOK, cycles)
}

// Handler: GET /cycles/{cycleID}
func (s *Server) handleGetCycle(w http.ResponseWriter, r *http.Request) {
	if !s.historyEnabled(w) {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "cycleID"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid cycle ID")
		return
	}

	record, err := s.storage.GetCycle(r.Context(), id)
	if err != nil {
		s.engineError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, record)
}

// Handler: GET /workers
func (s *Server) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.engine.Snapshot().Workers)
}

// Handler: GET /workers/{workerID}
func (s *Server) handleGetWorker(w http.ResponseWriter, r *http.Request) {
	worker, err := s.engine.Worker(pathParam(r, "workerID"))
	if err != nil {
		s.engineError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, worker)
}

// Handler: POST /workers
func (s *Server) handleCreateWorker(w http.ResponseWriter, r *http.Request) {
	var req models.CreateWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	worker, err := s.engine.CreateWorker(req.ID, req.Capabilities, req.FailureProbability)
	if err != nil {
		s.engineError(w, err)
		return
	}

	s.recordEvent(r.Context(), fmt.Sprintf("NEW HIRE: worker %s joined the fleet", worker.ID))
	s.jsonResponse(w, http.StatusCreated, worker)
}

// Handler: DELETE /workers/{workerID}
func (s *Server) handleRemoveWorker(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "workerID")

	released, err := s.engine.RemoveWorker(id)
	if err != nil {
		s.engineError(w, err)
		return
	}

	s.recordEvent(r.Context(), fmt.Sprintf("DECOMMISSIONED: worker %s removed", id))
	if released != nil {
		s.recordEvent(r.Context(), fmt.Sprintf("RELEASED: job %s returned to the queue", released.ID))
	}

	s.jsonResponse(w, http.StatusOK, struct {
		Removed     string      `json:"removed"`
		ReleasedJob *models.Job `json:"released_job,omitempty"`
	}{id, released})
}

// Handler: GET /jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.engine.Snapshot().Jobs)
}

// Handler: GET /jobs/{jobID}
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.engine.Job(pathParam(r, "jobID"))
	if err != nil {
		s.engineError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// Handler: POST /jobs
func (s *Server) handleInjectJob(w http.ResponseWriter, r *http.Request) {
	var req models.InjectJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	job, err := s.engine.InjectJob(req.ID, req.Priority, req.Capability)
	if err != nil {
		s.engineError(w, err)
		return
	}

	s.recordEvent(r.Context(), fmt.Sprintf("INJECTED: job %s (%s, priority %d)", job.ID, job.Capability, job.Priority))
	s.jsonResponse(w, http.StatusCreated, job)
}

// Handler: DELETE /jobs/completed
func (s *Server) handleClearCompleted(w http.ResponseWriter, r *http.Request) {
	removed := s.engine.ClearCompletedJobs()
	s.recordEvent(r.Context(), fmt.Sprintf("QUEUE CLEANED: %d completed jobs removed", removed))
	s.jsonResponse(w, http.StatusOK, map[string]int{"cleared": removed})
}
