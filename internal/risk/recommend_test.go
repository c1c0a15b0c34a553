package risk

import (
	"testing"

	"github.com/mpetrov/trialgate/internal/model"
)

func TestPrioritize_RanksByImpactAndFeasibility(t *testing.T) {
	findings := []model.Finding{
		{Title: "Hard critical fix", Severity: model.RiskCritical, ImplementationDifficulty: "hard", Category: model.CategorySafetyAlignment},
		{Title: "Easy critical fix", Severity: model.RiskCritical, ImplementationDifficulty: "easy", Category: model.CategorySafetyAlignment},
		{Title: "Easy medium fix", Severity: model.RiskMedium, ImplementationDifficulty: "easy", Category: model.CategoryDesignCompleteness},
	}

	recs := Prioritize(findings)

	if len(recs) != 3 {
		t.Fatalf("Expected 3 recommendations, got %d", len(recs))
	}

	// 25²×100/10000 = 6.25 > 25²×40/10000 = 2.5 > 10²×100/10000 = 1.0
	wantOrder := []string{"Easy critical fix", "Hard critical fix", "Easy medium fix"}
	for i, want := range wantOrder {
		if recs[i].Title != want {
			t.Errorf("Position %d: expected %q, got %q", i, want, recs[i].Title)
		}
		if recs[i].Priority != i+1 {
			t.Errorf("Position %d: expected priority %d, got %d", i, i+1, recs[i].Priority)
		}
	}
}

func TestPrioritize_DefaultsForUnknownValues(t *testing.T) {
	findings := []model.Finding{
		{Severity: "unheard-of", ImplementationDifficulty: "impossible"},
	}

	recs := Prioritize(findings)
	if len(recs) != 1 {
		t.Fatalf("Expected 1 recommendation, got %d", len(recs))
	}

	rec := recs[0]
	if rec.Title != "Untitled recommendation" {
		t.Errorf("Expected default title, got %q", rec.Title)
	}
	if rec.ExpectedRiskReduction != 5 {
		t.Errorf("Expected default reduction 5, got %.0f", rec.ExpectedRiskReduction)
	}
	if rec.Difficulty != "medium" {
		t.Errorf("Expected defaulted difficulty medium, got %q", rec.Difficulty)
	}
	if rec.ImplementationTime != "1-2 months" {
		t.Errorf("Expected medium time estimate, got %q", rec.ImplementationTime)
	}
	if rec.ImpactCategory != model.CategoryDesignCompleteness {
		t.Errorf("Expected defaulted category, got %s", rec.ImpactCategory)
	}
}

func TestPrioritize_TimeEstimates(t *testing.T) {
	tests := []struct {
		difficulty string
		want       string
	}{
		{"easy", "1-2 weeks"},
		{"medium", "1-2 months"},
		{"hard", "3-6 months"},
	}

	for _, tt := range tests {
		recs := Prioritize([]model.Finding{{Title: "x", Severity: model.RiskHigh, ImplementationDifficulty: tt.difficulty}})
		if recs[0].ImplementationTime != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.difficulty, tt.want, recs[0].ImplementationTime)
		}
	}
}

func TestPrioritize_Empty(t *testing.T) {
	recs := Prioritize(nil)
	if len(recs) != 0 {
		t.Errorf("Expected no recommendations, got %d", len(recs))
	}
}

func TestPrioritize_TiesKeepFindingOrder(t *testing.T) {
	findings := []model.Finding{
		{Title: "first", Severity: model.RiskHigh, ImplementationDifficulty: "easy"},
		{Title: "second", Severity: model.RiskHigh, ImplementationDifficulty: "easy"},
	}

	recs := Prioritize(findings)
	if recs[0].Title != "first" || recs[1].Title != "second" {
		t.Errorf("Expected stable order on ties, got %q then %q", recs[0].Title, recs[1].Title)
	}
}
