package model

// TrialRecord represents one historical clinical trial from the corpus.
// Records are immutable after loading: the corpus is read-many, write-never
// for the lifetime of the process.
type TrialRecord struct {
	NCTID             string   `json:"nct_id"`
	TrialName         string   `json:"trial_name"`
	Phase             string   `json:"phase"`
	DrugClass         string   `json:"drug_class"`
	TherapeuticArea   string   `json:"therapeutic_area"`
	Outcome           string   `json:"outcome"`
	PopulationAge     string   `json:"population_age,omitempty"`
	PlannedEnrollment int      `json:"planned_enrollment,omitempty"`
	ActualEnrollment  int      `json:"actual_enrollment,omitempty"`
	PlaceboRunIn      bool     `json:"placebo_run_in"`
	StudyDesign       string   `json:"study_design,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	KeyLearnings      []string `json:"key_learnings,omitempty"`
	FailureReasons    []string `json:"failure_reasons,omitempty"` // present only for failed/terminated trials
}

// Trial outcomes as they appear in the corpus. Anything else is treated
// as OutcomeUnknown (typically an ongoing trial).
const (
	OutcomeSuccess    = "success"
	OutcomeFailed     = "failed"
	OutcomeTerminated = "terminated"
	OutcomeUnknown    = "unknown"
)

// ScoredCandidate is a trial record paired with its similarity to a query.
// Produced transiently by search; never persisted.
type ScoredCandidate struct {
	TrialRecord
	SimilarityScore float64 `json:"similarity_score"`
}

// phaseOrder is the fixed phase ordering used for adjacency scoring.
var phaseOrder = []string{
	"Phase 1",
	"Phase 1/2",
	"Phase 2",
	"Phase 2/3",
	"Phase 3",
	"Phase 4",
}

// PhaseIndex returns the position of a phase in the fixed ordering,
// or -1 if the phase string is not one of the known phases.
func PhaseIndex(phase string) int {
	for i, p := range phaseOrder {
		if p == phase {
			return i
		}
	}
	return -1
}

// PhasesAdjacent reports whether two phases are within one step of each
// other in the fixed ordering. Unknown phases are never adjacent.
func PhasesAdjacent(a, b string) bool {
	ia, ib := PhaseIndex(a), PhaseIndex(b)
	if ia < 0 || ib < 0 {
		return false
	}
	d := ia - ib
	if d < 0 {
		d = -d
	}
	return d <= 1
}
