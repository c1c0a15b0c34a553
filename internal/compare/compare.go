// Package compare builds the side-by-side comparison between a candidate
// protocol and one historical trial.
package compare

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mpetrov/trialgate/internal/model"
)

// rowCount is fixed: Population Age, Drug Class, Study Design,
// Placebo Run-in, Sample Size, always in that order.
const rowCount = 5

// Compare produces the five-row comparison table for one historical trial.
func Compare(p *model.Protocol, t model.TrialRecord) model.ComparisonTable {
	rows := make([]model.ComparisonRow, 0, rowCount)

	rows = append(rows, textRow("Population Age",
		orUnknown(p.PatientPopulation.AgeRange), orUnknown(t.PopulationAge), false))

	rows = append(rows, textRow("Drug Class",
		orUnknown(p.DrugProfile.DrugClass), orUnknown(t.DrugClass), false))

	rows = append(rows, textRow("Study Design",
		orUnknown(p.StudyDesign.DesignType), orUnknown(t.StudyDesign), false))

	// Shared absence of a placebo run-in is itself a documented risk when
	// the historical trial failed.
	trialFailed := strings.EqualFold(t.Outcome, model.OutcomeFailed)
	runInRisk := !p.StudyDesign.PlaceboRunIn && !t.PlaceboRunIn && trialFailed
	runInRow := textRow("Placebo Run-in",
		yesNo(p.StudyDesign.PlaceboRunIn), yesNo(t.PlaceboRunIn), runInRisk)
	if runInRisk {
		runInRow.Explanation = "Trial failed without placebo run-in"
	}
	rows = append(rows, runInRow)

	rows = append(rows, sampleSizeRow(p.StatisticalPlan.PlannedEnrollment, t.PlannedEnrollment))

	similarCount := 0
	riskFactorCount := 0
	for _, row := range rows {
		switch row.MatchStatus {
		case model.StatusExactMatch, model.StatusMatch:
			similarCount++
		case model.StatusRiskFactor:
			riskFactorCount++
		}
	}
	overall := float64(similarCount) / float64(len(rows))

	// Fixed three-way branch, not a continuous function.
	var assessment string
	switch {
	case riskFactorCount > 0:
		assessment = fmt.Sprintf("High similarity to failed trial (%d risk factors)", riskFactorCount)
	case overall > 0.7:
		assessment = "High similarity to historical trial"
	default:
		assessment = "Moderate similarity"
	}

	return model.ComparisonTable{
		HistoricalTrial: model.TrialSummary{
			NCTID:     orUnknown(t.NCTID),
			TrialName: orUnknown(t.TrialName),
			Outcome:   orUnknown(t.Outcome),
			Phase:     orUnknown(t.Phase),
		},
		Rows:              rows,
		OverallSimilarity: overall,
		RiskAssessment:    assessment,
	}
}

// textRow classifies a string-valued field. Equal normalized values are an
// exact match (or a risk factor when the shared value is itself evidence of
// risk); substring similarity either direction is a partial match.
func textRow(field, current, historical string, riskFactor bool) model.ComparisonRow {
	row := model.ComparisonRow{
		Field:      field,
		Current:    current,
		Historical: historical,
	}

	switch {
	case normalize(current) == normalize(historical):
		if riskFactor {
			row.MatchStatus = model.StatusRiskFactor
			row.RiskLevel = model.RiskHigh
		} else {
			row.MatchStatus = model.StatusExactMatch
			row.RiskLevel = model.RiskLow
		}
	case similar(current, historical):
		row.MatchStatus = model.StatusMatch
		row.RiskLevel = model.RiskMedium
	default:
		row.MatchStatus = model.StatusMismatch
		row.RiskLevel = model.RiskLow
	}
	return row
}

// sampleSizeRow compares planned enrollments numerically: within 50 is a
// match, and an undersized candidate relative to history is the riskier
// direction.
func sampleSizeRow(current, historical int) model.ComparisonRow {
	diff := current - historical
	if diff < 0 {
		diff = -diff
	}

	status := model.StatusMismatch
	if diff < 50 {
		status = model.StatusMatch
	}
	level := model.RiskLow
	if current < historical {
		level = model.RiskMedium
	}

	return model.ComparisonRow{
		Field:       "Sample Size",
		Current:     strconv.Itoa(current),
		Historical:  strconv.Itoa(historical),
		MatchStatus: status,
		RiskLevel:   level,
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func similar(a, b string) bool {
	na, nb := normalize(a), normalize(b)
	return na == nb || strings.Contains(na, nb) || strings.Contains(nb, na)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
