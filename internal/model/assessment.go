package model

import "time"

// RiskLevel grades a score or finding.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical" // finding severity only, never an overall level
)

// RiskCategory classifies the three scored risk dimensions.
type RiskCategory string

const (
	CategoryHistoricalPrecedent RiskCategory = "historical_precedent"
	CategorySafetyAlignment     RiskCategory = "safety_alignment"
	CategoryDesignCompleteness  RiskCategory = "design_completeness"
)

// MatchStatus classifies one comparison row.
type MatchStatus string

const (
	StatusExactMatch MatchStatus = "EXACT_MATCH"
	StatusMatch      MatchStatus = "MATCH"
	StatusMismatch   MatchStatus = "MISMATCH"
	StatusRiskFactor MatchStatus = "RISK_FACTOR"
)

// CategoryScore is the score for one risk dimension (0-100, higher = riskier).
type CategoryScore struct {
	Category      RiskCategory `json:"category"`
	Score         float64      `json:"score"`
	FindingsCount int          `json:"findings_count"`
	KeyConcerns   []string     `json:"key_concerns"`
}

// RiskScore is the terminal output of one risk assessment.
//
// Confidence is a heuristic proxy for how much evidence backed the
// assessment (matched trials, narrative findings). It is NOT a statistical
// confidence interval and must not be read as one.
type RiskScore struct {
	OverallScore   float64         `json:"overall_score"`
	RiskLevel      RiskLevel       `json:"risk_level"`
	Confidence     float64         `json:"confidence"`
	CategoryScores []CategoryScore `json:"category_scores"`
}

// Finding is one narrative risk finding produced by an upstream
// collaborator (e.g. the LLM provider). The engine consumes findings as
// already-structured data; it never generates them.
type Finding struct {
	Title                    string       `json:"title"`
	Category                 RiskCategory `json:"category"`
	Severity                 RiskLevel    `json:"severity"`
	Description              string       `json:"description,omitempty"`
	Evidence                 []string     `json:"evidence,omitempty"`
	Recommendation           string       `json:"recommendation,omitempty"`
	EstimatedCostToFix       string       `json:"estimated_cost_to_fix,omitempty"`
	ImplementationDifficulty string       `json:"implementation_difficulty,omitempty"` // easy, medium, hard
}

// Recommendation is an actionable, prioritized mitigation derived from a
// finding. Priority 1 is highest.
type Recommendation struct {
	Priority              int          `json:"priority"`
	Title                 string       `json:"title"`
	Description           string       `json:"description"`
	ExpectedRiskReduction float64      `json:"expected_risk_reduction"`
	EstimatedCost         string       `json:"estimated_cost,omitempty"`
	ImplementationTime    string       `json:"implementation_time,omitempty"`
	Difficulty            string       `json:"difficulty"`
	ImpactCategory        RiskCategory `json:"impact_category"`
}

// ComparisonRow is one field-by-field comparison between the candidate
// protocol and a historical trial.
type ComparisonRow struct {
	Field       string      `json:"field"`
	Current     string      `json:"current"`
	Historical  string      `json:"historical"`
	MatchStatus MatchStatus `json:"match_status"`
	RiskLevel   RiskLevel   `json:"risk_level"`
	Explanation string      `json:"explanation,omitempty"`
}

// TrialSummary is the slice of a historical trial carried inside a
// comparison table for rendering.
type TrialSummary struct {
	NCTID     string `json:"nct_id"`
	TrialName string `json:"trial_name"`
	Outcome   string `json:"outcome"`
	Phase     string `json:"phase"`
}

// ComparisonTable is the side-by-side comparison against one historical trial.
type ComparisonTable struct {
	HistoricalTrial   TrialSummary    `json:"historical_trial"`
	Rows              []ComparisonRow `json:"comparison_rows"`
	OverallSimilarity float64         `json:"overall_similarity"`
	RiskAssessment    string          `json:"risk_assessment"`
}

// Assessment is the complete output of one protocol assessment.
type Assessment struct {
	ID        string    `json:"assessment_id"`
	TrialName string    `json:"trial_name"`
	CreatedAt time.Time `json:"created_at"`

	Risk            RiskScore         `json:"risk_score"`
	SimilarTrials   []ScoredCandidate `json:"similar_trials"`
	Comparison      *ComparisonTable  `json:"comparison,omitempty"`
	Findings        []Finding         `json:"findings,omitempty"`
	Recommendations []Recommendation  `json:"recommendations,omitempty"`

	LLM *LLMInfo `json:"llm,omitempty"`
}

// LLMInfo records which provider, if any, produced the narrative findings.
// The deterministic scores never depend on this being present.
type LLMInfo struct {
	Enabled  bool     `json:"enabled"`
	Provider string   `json:"provider,omitempty"`
	Model    string   `json:"model,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
