package risk

import (
	"sort"

	"github.com/mpetrov/trialgate/internal/model"
)

// Feasibility by implementation difficulty, on a 0-100 scale.
var difficultyFeasibility = map[string]float64{
	"easy":   100,
	"medium": 70,
	"hard":   40,
}

// Expected risk reduction by finding severity.
var severityReduction = map[model.RiskLevel]float64{
	model.RiskCritical: 25,
	model.RiskHigh:     18,
	model.RiskMedium:   10,
}

var implementationTime = map[string]string{
	"easy":   "1-2 weeks",
	"medium": "1-2 months",
	"hard":   "3-6 months",
}

// Prioritize converts narrative findings into recommendations ranked by
// impact and feasibility: priority = reduction² × feasibility / 10000,
// sorted descending with 1-based priority ranks assigned.
func Prioritize(findings []model.Finding) []model.Recommendation {
	type ranked struct {
		rec      model.Recommendation
		priority float64
	}

	items := make([]ranked, 0, len(findings))
	for _, f := range findings {
		reduction, ok := severityReduction[f.Severity]
		if !ok {
			reduction = 5
		}

		difficulty := f.ImplementationDifficulty
		feasibility, ok := difficultyFeasibility[difficulty]
		if !ok {
			difficulty = "medium"
			feasibility = 70
		}

		timeEstimate, ok := implementationTime[difficulty]
		if !ok {
			timeEstimate = "2-4 weeks"
		}

		title := f.Title
		if title == "" {
			title = "Untitled recommendation"
		}

		category := f.Category
		if category == "" {
			category = model.CategoryDesignCompleteness
		}

		items = append(items, ranked{
			rec: model.Recommendation{
				Title:                 title,
				Description:           f.Recommendation,
				ExpectedRiskReduction: reduction,
				EstimatedCost:         f.EstimatedCostToFix,
				ImplementationTime:    timeEstimate,
				Difficulty:            difficulty,
				ImpactCategory:        category,
			},
			priority: reduction * reduction * feasibility / 10000,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].priority > items[j].priority
	})

	recs := make([]model.Recommendation, len(items))
	for i, item := range items {
		item.rec.Priority = i + 1
		recs[i] = item.rec
	}
	return recs
}
