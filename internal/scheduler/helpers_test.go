package scheduler

import (
	"io"
	"testing"

	"github.com/sharma-sourabh3435/fleet-scheduler/internal/models"
	"github.com/sharma-sourabh3435/fleet-scheduler/pkg/utils"
)

// scriptedRand replays fixed draws, then falls back to constants.
type scriptedRand struct {
	floats   []float64
	ints     []int
	fallback float64
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return r.fallback
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	if v >= n {
		return n - 1
	}
	return v
}

func quietLogger() *utils.Logger {
	return utils.NewLoggerWithWriter("engine", utils.ERROR, io.Discard)
}

// newTestEngine returns an engine with no seed fleet, no spawning and a
// fixed progress step.
func newTestEngine(t *testing.T, step int, opts ...Option) *Engine {
	t.Helper()
	cfg := Config{
		Seed:         1,
		ProgressStep: ProgressStep{Min: step, Max: step},
	}
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	e, err := NewEngine(cfg, opts...)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

func mustCreateWorker(t *testing.T, e *Engine, id string, caps []string, p float64) {
	t.Helper()
	if _, err := e.CreateWorker(id, caps, p); err != nil {
		t.Fatalf("Failed to create worker %s: %v", id, err)
	}
}

func mustInjectJob(t *testing.T, e *Engine, id string, priority int, capability string) {
	t.Helper()
	if _, err := e.InjectJob(id, priority, capability); err != nil {
		t.Fatalf("Failed to inject job %s: %v", id, err)
	}
}

func mustVerify(t *testing.T, e *Engine) {
	t.Helper()
	if err := e.Verify(); err != nil {
		t.Fatalf("Invariant violated: %v", err)
	}
}

func worker(id string, p float64, caps ...string) *models.Worker {
	return &models.Worker{
		ID:                 id,
		Capabilities:       models.NewCapabilitySet(caps...),
		FailureProbability: p,
		Available:          true,
	}
}
