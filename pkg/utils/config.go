package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sharma-sourabh3435/fleet-scheduler/internal/models"
)

// Config holds application configuration
type Config struct {
	// Database
	DatabasePath string

	// API server
	SchedulerPort int
	SchedulerHost string

	// Stepper
	SchedulerURL string
	StepInterval time.Duration

	// Logging
	LogLevel string
	LogFile  string

	// Simulation
	FleetConfigPath string
	Simulation      SimulationConfig
}

// ProgressStepConfig bounds the per-cycle progress increment
type ProgressStepConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// SimulationConfig models the fleet file. Fields left out of the file keep
// their defaults.
type SimulationConfig struct {
	Seed             uint64              `yaml:"seed"`
	SpawnProbability float64             `yaml:"spawn_probability"`
	MaxSpawnPriority int                 `yaml:"max_spawn_priority"`
	ProgressStep     ProgressStepConfig  `yaml:"progress_step"`
	Capabilities     []string            `yaml:"capabilities"`
	Workers          []models.WorkerSpec `yaml:"workers"`
}

// DefaultSimulationConfig returns the built-in simulation settings
func DefaultSimulationConfig() SimulationConfig {
	caps := make([]string, len(models.DefaultCapabilities))
	copy(caps, models.DefaultCapabilities)
	return SimulationConfig{
		Seed:             models.DefaultSeed,
		SpawnProbability: models.DefaultSpawnProbability,
		MaxSpawnPriority: models.DefaultMaxSpawnPriority,
		ProgressStep: ProgressStepConfig{
			Min: models.DefaultProgressStepMin,
			Max: models.DefaultProgressStepMax,
		},
		Capabilities: caps,
		Workers:      models.DefaultFleet(),
	}
}

// LoadConfig loads configuration from environment variables with defaults.
// When FLEET_CONFIG names a file, its simulation settings are applied before
// the SIM_* environment overrides.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		// Database
		DatabasePath: getEnv("DB_PATH", "fleet.db"),

		// API server
		SchedulerPort: getEnvAsInt("SCHEDULER_PORT", 8080),
		SchedulerHost: getEnv("SCHEDULER_HOST", "0.0.0.0"),

		// Stepper
		SchedulerURL: getEnv("SCHEDULER_URL", "http://localhost:8080"),
		StepInterval: getEnvAsDuration("STEP_INTERVAL", 2*time.Second),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
		LogFile:  getEnv("LOG_FILE", ""),

		FleetConfigPath: getEnv("FLEET_CONFIG", ""),
		Simulation:      DefaultSimulationConfig(),
	}

	if cfg.FleetConfigPath != "" {
		sim, err := LoadSimulationConfig(cfg.FleetConfigPath)
		if err != nil {
			return nil, err
		}
		cfg.Simulation = sim
	}

	cfg.Simulation.Seed = getEnvAsUint64("SIM_SEED", cfg.Simulation.Seed)
	cfg.Simulation.SpawnProbability = getEnvAsFloat("SPAWN_PROBABILITY", cfg.Simulation.SpawnProbability)

	return cfg, nil
}

// LoadSimulationConfig reads a YAML fleet file on top of the defaults
func LoadSimulationConfig(path string) (SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SimulationConfig{}, fmt.Errorf("failed to read fleet config: %w", err)
	}
	return ParseSimulationConfig(data)
}

// ParseSimulationConfig decodes YAML fleet settings on top of the defaults
func ParseSimulationConfig(data []byte) (SimulationConfig, error) {
	sim := DefaultSimulationConfig()
	if err := yaml.Unmarshal(data, &sim); err != nil {
		return SimulationConfig{}, fmt.Errorf("failed to parse fleet config: %w", err)
	}
	return sim, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

// getEnvAsDuration gets an environment variable as a duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// GetSchedulerAddress returns the full listen address of the API server
func (c *Config) GetSchedulerAddress() string {
	return c.SchedulerHost + ":" + strconv.Itoa(c.SchedulerPort)
}

// GetLogLevel converts the log level string to LogLevel type
func (c *Config) GetLogLevel() LogLevel {
	return ParseLogLevel(c.LogLevel)
}
