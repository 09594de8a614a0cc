package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseSimulationConfigOverridesDefaults(t *testing.T) {
	data := []byte(`
seed: 7
spawn_probability: 0.25
progress_step:
  max: 50
workers:
  - id: Solo
    capabilities: [Go]
    failure_probability: 0.5
`)
	sim, err := ParseSimulationConfig(data)
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	if sim.Seed != 7 {
		t.Errorf("Expected seed 7, got %d", sim.Seed)
	}
	if sim.SpawnProbability != 0.25 {
		t.Errorf("Expected spawn probability 0.25, got %v", sim.SpawnProbability)
	}
	if sim.ProgressStep.Min != 20 || sim.ProgressStep.Max != 50 {
		t.Errorf("Expected progress step 20-50, got %+v", sim.ProgressStep)
	}
	if len(sim.Workers) != 1 || sim.Workers[0].ID != "Solo" {
		t.Fatalf("Expected a single worker Solo, got %+v", sim.Workers)
	}
	if sim.Workers[0].FailureProbability != 0.5 {
		t.Errorf("Expected failure probability 0.5, got %v", sim.Workers[0].FailureProbability)
	}
	if len(sim.Capabilities) != 3 {
		t.Errorf("Expected default capability catalog, got %v", sim.Capabilities)
	}
}

func TestParseSimulationConfigRejectsGarbage(t *testing.T) {
	if _, err := ParseSimulationConfig([]byte("workers: {not: [a list")); err == nil {
		t.Error("Expected parse error")
	}
}

func TestLoadConfigReadsEnvAndFleetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet.yaml")
	if err := os.WriteFile(path, []byte("max_spawn_priority: 9\n"), 0o644); err != nil {
		t.Fatalf("Failed to write fleet file: %v", err)
	}

	t.Setenv("FLEET_CONFIG", path)
	t.Setenv("SCHEDULER_PORT", "9191")
	t.Setenv("STEP_INTERVAL", "750ms")
	t.Setenv("SIM_SEED", "99")
	t.Setenv("SPAWN_PROBABILITY", "not-a-number")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetSchedulerAddress() != "0.0.0.0:9191" {
		t.Errorf("Unexpected address %s", cfg.GetSchedulerAddress())
	}
	if cfg.StepInterval != 750*time.Millisecond {
		t.Errorf("Expected 750ms step interval, got %v", cfg.StepInterval)
	}
	if cfg.Simulation.MaxSpawnPriority != 9 {
		t.Errorf("Expected max spawn priority from file, got %d", cfg.Simulation.MaxSpawnPriority)
	}
	if cfg.Simulation.Seed != 99 {
		t.Errorf("Expected seed from env, got %d", cfg.Simulation.Seed)
	}
	if cfg.Simulation.SpawnProbability != 0.4 {
		t.Errorf("Expected default spawn probability on bad env value, got %v", cfg.Simulation.SpawnProbability)
	}
}

func TestLoadConfigMissingFleetFile(t *testing.T) {
	t.Setenv("FLEET_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error for missing fleet file")
	}
}
