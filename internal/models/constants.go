package models

// Default simulation values
const (
	DefaultSpawnProbability = 0.4
	DefaultMaxSpawnPriority = 5
	DefaultProgressStepMin  = 20 // percent per cycle
	DefaultProgressStepMax  = 34 // percent per cycle
	DefaultSeed             = 1

	// MaxProgress marks the resolution point of an in-progress job.
	MaxProgress = 100
)

// DefaultCapabilities is the catalog spawned jobs draw from when no fleet
// file overrides it.
var DefaultCapabilities = []string{"Python", "Security", "Data Analysis"}

// WorkerSpec describes a worker to seed the fleet with on start and reset.
type WorkerSpec struct {
	ID                 string   `json:"id" yaml:"id"`
	Capabilities       []string `json:"capabilities" yaml:"capabilities"`
	FailureProbability float64  `json:"failure_probability" yaml:"failure_probability"`
}

// DefaultFleet returns the fleet a fresh simulation starts with.
func DefaultFleet() []WorkerSpec {
	return []WorkerSpec{
		{ID: "Alpha-01", Capabilities: []string{"Python", "Security"}, FailureProbability: 0.05},
		{ID: "Beta-02", Capabilities: []string{"Data Analysis", "Python"}, FailureProbability: 0.12},
		{ID: "Gamma-03", Capabilities: []string{"Security"}, FailureProbability: 0.02},
	}
}
