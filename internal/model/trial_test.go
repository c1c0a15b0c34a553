package model

import "testing"

func TestPhaseIndex(t *testing.T) {
	tests := []struct {
		phase string
		want  int
	}{
		{"Phase 1", 0},
		{"Phase 1/2", 1},
		{"Phase 2", 2},
		{"Phase 2/3", 3},
		{"Phase 3", 4},
		{"Phase 4", 5},
		{"phase 3", -1}, // exact strings only
		{"Unknown", -1},
		{"", -1},
	}

	for _, tt := range tests {
		if got := PhaseIndex(tt.phase); got != tt.want {
			t.Errorf("PhaseIndex(%q): expected %d, got %d", tt.phase, tt.want, got)
		}
	}
}

func TestPhasesAdjacent(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Phase 3", "Phase 3", true},
		{"Phase 2/3", "Phase 3", true},
		{"Phase 2", "Phase 3", false}, // two steps apart in the ordering
		{"Phase 1", "Phase 1/2", true},
		{"Phase 1", "Phase 4", false},
		{"Phase 3", "Unknown", false},
		{"", "", false},
	}

	for _, tt := range tests {
		if got := PhasesAdjacent(tt.a, tt.b); got != tt.want {
			t.Errorf("PhasesAdjacent(%q, %q): expected %v, got %v", tt.a, tt.b, tt.want, got)
		}
	}
}
