package scheduler

import (
	"testing"

	"github.com/sharma-sourabh3435/fleet-scheduler/internal/models"
)

func TestEfficiencyWithoutAttemptsIs100(t *testing.T) {
	if got := Efficiency(nil); got != 100 {
		t.Errorf("Expected 100, got %v", got)
	}
	if got := Efficiency([]*models.Worker{worker("w", 0.5, "X")}); got != 100 {
		t.Errorf("Expected 100 for idle fleet, got %v", got)
	}
}

func TestEfficiencyRoundsToOneDecimal(t *testing.T) {
	a := worker("a", 0, "X")
	a.CompletedCount = 2
	b := worker("b", 0, "X")
	b.FailureCount = 1

	if got := Efficiency([]*models.Worker{a, b}); got != 66.7 {
		t.Errorf("Expected 66.7, got %v", got)
	}

	b.FailureCount = 0
	b.CompletedCount = 0
	a.CompletedCount = 0
	a.FailureCount = 4
	if got := Efficiency([]*models.Worker{a, b}); got != 0 {
		t.Errorf("Expected 0, got %v", got)
	}
}
