// Package risk combines historical precedent, safety alignment and design
// completeness into one weighted, explainable risk score.
package risk

import (
	"fmt"
	"math"
	"strings"

	"github.com/mpetrov/trialgate/internal/model"
)

// Category weights. They sum to 1.0 exactly.
const (
	weightHistorical = 0.40
	weightSafety     = 0.35
	weightDesign     = 0.25
)

// Risk level thresholds over the overall score. The boundary resolves
// toward the higher band: exactly 30 is medium, exactly 60 is high.
const (
	thresholdMedium = 30
	thresholdHigh   = 60
)

const maxConcerns = 3

// neutralScore is returned for historical precedent when no matched trials
// exist at all.
const neutralScore = 50.0

// Engine computes risk scores. It is stateless and safe for concurrent use.
type Engine struct{}

// NewEngine creates a new risk engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Score combines the protocol, its matched historical trials and the
// upstream narrative findings into the final risk score. It is a total
// function: absent optional fields fall back to neutral defaults and no
// input combination produces an error.
func (e *Engine) Score(p *model.Protocol, matched []model.ScoredCandidate, findings []model.Finding) model.RiskScore {
	historical := e.historicalPrecedent(matched)
	safety := e.safetyAlignment(p)
	design := e.designCompleteness(p)

	overall := weightHistorical*historical.Score +
		weightSafety*safety.Score +
		weightDesign*design.Score

	var level model.RiskLevel
	switch {
	case overall < thresholdMedium:
		level = model.RiskLow
	case overall < thresholdHigh:
		level = model.RiskMedium
	default:
		level = model.RiskHigh
	}

	return model.RiskScore{
		OverallScore:   round1(overall),
		RiskLevel:      level,
		Confidence:     round2(confidence(len(matched), len(findings))),
		CategoryScores: []model.CategoryScore{historical, safety, design},
	}
}

// Severity multipliers for repeated failure-reason families. The maximum
// applicable multiplier is taken; multipliers never stack, which caps
// compounding risk.
var failureFamilies = []struct {
	keywords   []string
	multiplier float64
	concern    string
}{
	{[]string{"placebo"}, 1.2, "High placebo response in similar trials"},
	{[]string{"biomarker", "enrichment"}, 1.3, "Biomarker selection issues in similar trials"},
	{[]string{"power", "sample size"}, 1.15, "Statistical power issues in similar trials"},
}

// historicalPrecedent scores 0-100 from matched trial outcomes: failure
// rate scaled by average similarity, then amplified by the worst matching
// failure-reason family.
func (e *Engine) historicalPrecedent(matched []model.ScoredCandidate) model.CategoryScore {
	if len(matched) == 0 {
		return model.CategoryScore{
			Category:      model.CategoryHistoricalPrecedent,
			Score:         neutralScore,
			FindingsCount: 0,
			KeyConcerns:   []string{"Limited historical data available"},
		}
	}

	var failed []model.ScoredCandidate
	var similaritySum float64
	for _, t := range matched {
		similaritySum += t.SimilarityScore
		if strings.EqualFold(t.Outcome, model.OutcomeFailed) {
			failed = append(failed, t)
		}
	}

	failureRate := float64(len(failed)) / float64(len(matched))
	avgSimilarity := similaritySum / float64(len(matched))
	adjusted := failureRate * 100 * avgSimilarity

	multiplier := 1.0
	var concerns []string
	for _, t := range failed {
		for _, reason := range t.FailureReasons {
			lower := strings.ToLower(reason)
			for _, family := range failureFamilies {
				for _, kw := range family.keywords {
					if strings.Contains(lower, kw) {
						multiplier = math.Max(multiplier, family.multiplier)
						concerns = append(concerns, family.concern)
						break
					}
				}
			}
		}
	}

	final := math.Min(adjusted*multiplier, 100)

	concerns = dedupe(concerns)
	if len(concerns) > maxConcerns {
		concerns = concerns[:maxConcerns]
	}
	if len(concerns) == 0 {
		concerns = []string{fmt.Sprintf("%d/%d similar trials failed", len(failed), len(matched))}
	}

	return model.CategoryScore{
		Category:      model.CategoryHistoricalPrecedent,
		Score:         round1(final),
		FindingsCount: len(failed),
		KeyConcerns:   concerns,
	}
}

// safetyAlignment scores 0-100 from the gap between the drug's known risks
// and the protocol's safeguards. Concerns are emitted in fixed order:
// contraindications, monitoring, pharmacogenomics.
func (e *Engine) safetyAlignment(p *model.Protocol) model.CategoryScore {
	var score float64
	var concerns []string

	unmitigated := 0
	for _, contra := range p.DrugProfile.KnownContraindications {
		contraLower := strings.ToLower(contra)
		mentioned := false
		for _, excl := range p.PatientPopulation.ExclusionCriteria {
			if strings.Contains(strings.ToLower(excl), contraLower) {
				mentioned = true
				break
			}
		}
		if !mentioned {
			unmitigated++
			score += 20
		}
	}
	if unmitigated > 0 {
		concerns = append(concerns, fmt.Sprintf("%d contraindications not in exclusion criteria", unmitigated))
	}

	// Under 50 characters the plan is likely a placeholder.
	if len(p.SafetyMonitoringPlan) < 50 {
		score += 15
		concerns = append(concerns, "Incomplete safety monitoring plan")
	}

	if len(p.DrugProfile.PharmacogenomicMarkers) > 0 && len(p.PatientPopulation.BiomarkerRequirements) == 0 {
		score += 25
		concerns = append(concerns, "Known pharmacogenomic markers not used for patient selection")
	}

	score = math.Min(score, 100)
	findingsCount := len(concerns)
	if len(concerns) > maxConcerns {
		concerns = concerns[:maxConcerns]
	}

	return model.CategoryScore{
		Category:      model.CategorySafetyAlignment,
		Score:         round1(score),
		FindingsCount: findingsCount,
		KeyConcerns:   concerns,
	}
}

// designCompleteness scores 0-100 from structural gaps in the study design.
// Efficacy-trial checks apply only when the phase reads as Phase 2 or 3.
func (e *Engine) designCompleteness(p *model.Protocol) model.CategoryScore {
	var score float64
	var concerns []string

	phase := strings.ToLower(p.Metadata.Phase)
	isEfficacyTrial := strings.Contains(phase, "phase 2") || strings.Contains(phase, "phase 3")

	if isEfficacyTrial && !p.StudyDesign.PlaceboControlled {
		score += 30
		concerns = append(concerns, "No placebo control in efficacy trial")
	}

	if !p.StatisticalPlan.PowerCalculationProvided {
		score += 25
		concerns = append(concerns, "No statistical power calculation provided")
	}

	switch {
	case len(p.PrimaryEndpoints) == 0:
		score += 20
		concerns = append(concerns, "No primary endpoint defined")
	case len(p.PrimaryEndpoints) > 1:
		score += 10
		concerns = append(concerns, "Multiple primary endpoints may dilute power")
	}

	if p.SafetyMonitoringPlan == "" {
		score += 15
		concerns = append(concerns, "No safety monitoring plan")
	}

	if isEfficacyTrial && strings.EqualFold(p.StudyDesign.Blinding, "open-label") {
		score += 20
		concerns = append(concerns, "Open-label design in efficacy trial")
	}

	if isEfficacyTrial && p.StatisticalPlan.PlannedEnrollment < 50 {
		score += 15
		concerns = append(concerns, fmt.Sprintf("Small sample size (%d) for efficacy trial", p.StatisticalPlan.PlannedEnrollment))
	}

	score = math.Min(score, 100)
	findingsCount := len(concerns)
	if len(concerns) > maxConcerns {
		concerns = concerns[:maxConcerns]
	}

	return model.CategoryScore{
		Category:      model.CategoryDesignCompleteness,
		Score:         round1(score),
		FindingsCount: findingsCount,
		KeyConcerns:   concerns,
	}
}

// confidence is a data-availability heuristic in [0,1]: more matched trials
// and richer narrative findings raise it. It is not a statistical interval.
func confidence(matchedTrials, findingsCount int) float64 {
	c := 0.5

	switch {
	case matchedTrials >= 5:
		c += 0.3
	case matchedTrials >= 3:
		c += 0.2
	case matchedTrials >= 1:
		c += 0.1
	}

	if findingsCount >= 3 {
		c += 0.2
	}

	return math.Min(c, 1.0)
}

// dedupe removes duplicates preserving first-occurrence order, keeping
// concern lists deterministic.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
