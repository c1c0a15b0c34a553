package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mpetrov/trialgate/internal/model"
)

// Renderer writes assessment reports to files and a summary to stdout.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderReport renders the assessment to the configured outputs.
func (p *Pipeline) RenderReport(a *model.Assessment, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(a, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(a, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(a)
	return nil
}

// RenderJSON writes the full assessment as indented JSON.
func (r *Renderer) RenderJSON(a *model.Assessment, path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// RenderMarkdown writes a human-readable report.
func (r *Renderer) RenderMarkdown(a *model.Assessment, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Risk Assessment: %s\n\n", a.TrialName)
	fmt.Fprintf(&b, "- **Assessment ID**: %s\n", a.ID)
	fmt.Fprintf(&b, "- **Date**: %s\n", a.CreatedAt.Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&b, "- **Overall risk**: %.1f/100 (%s)\n", a.Risk.OverallScore, a.Risk.RiskLevel)
	fmt.Fprintf(&b, "- **Confidence**: %.2f (data-availability heuristic, not a statistical interval)\n\n", a.Risk.Confidence)

	b.WriteString("## Category Scores\n\n")
	b.WriteString("| Category | Score | Findings | Key Concerns |\n")
	b.WriteString("|----------|-------|----------|--------------|\n")
	for _, cs := range a.Risk.CategoryScores {
		fmt.Fprintf(&b, "| %s | %.1f | %d | %s |\n",
			cs.Category, cs.Score, cs.FindingsCount, strings.Join(cs.KeyConcerns, "; "))
	}
	b.WriteString("\n")

	if len(a.SimilarTrials) > 0 {
		b.WriteString("## Similar Historical Trials\n\n")
		for _, t := range a.SimilarTrials {
			fmt.Fprintf(&b, "- **%s** %s (%s, %s): outcome %s, similarity %.2f\n",
				t.NCTID, t.TrialName, t.Phase, t.DrugClass, t.Outcome, t.SimilarityScore)
		}
		b.WriteString("\n")
	}

	if a.Comparison != nil {
		c := a.Comparison
		fmt.Fprintf(&b, "## Comparison with %s\n\n", c.HistoricalTrial.NCTID)
		b.WriteString("| Field | Current | Historical | Status | Risk |\n")
		b.WriteString("|-------|---------|------------|--------|------|\n")
		for _, row := range c.Rows {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				row.Field, row.Current, row.Historical, row.MatchStatus, row.RiskLevel)
		}
		fmt.Fprintf(&b, "\nOverall similarity: %.2f — %s\n\n", c.OverallSimilarity, c.RiskAssessment)
	}

	if len(a.Findings) > 0 {
		b.WriteString("## Findings\n\n")
		for _, f := range a.Findings {
			fmt.Fprintf(&b, "### %s (%s, %s)\n\n%s\n\n", f.Title, f.Category, f.Severity, f.Description)
			for _, ev := range f.Evidence {
				fmt.Fprintf(&b, "- %s\n", ev)
			}
			if len(f.Evidence) > 0 {
				b.WriteString("\n")
			}
		}
	}

	if len(a.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for _, rec := range a.Recommendations {
			fmt.Fprintf(&b, "%d. **%s** (%s, %s): %s\n",
				rec.Priority, rec.Title, rec.Difficulty, rec.ImplementationTime, rec.Description)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\nGenerated by trialgate. Scores are deterministic rule-based signals, not predictions.\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// RenderSummary prints the headline numbers to stdout.
func (r *Renderer) RenderSummary(a *model.Assessment) {
	fmt.Println()
	fmt.Printf("  %s\n", a.TrialName)
	fmt.Printf("  Overall risk:  %.1f/100 (%s)\n", a.Risk.OverallScore, a.Risk.RiskLevel)
	fmt.Printf("  Confidence:    %.2f\n", a.Risk.Confidence)
	for _, cs := range a.Risk.CategoryScores {
		fmt.Printf("    %-22s %5.1f\n", cs.Category, cs.Score)
	}
	if len(a.SimilarTrials) > 0 {
		fmt.Printf("  Matched trials: %d\n", len(a.SimilarTrials))
	}
	fmt.Println()
}
