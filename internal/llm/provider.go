// Package llm produces narrative risk findings through an external language
// model provider. Findings are upstream input to the risk engine's
// confidence heuristic and recommendation ranking; the deterministic
// similarity and category score arithmetic never depends on this package.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/mpetrov/trialgate/internal/model"
)

// Provider defines the interface for narrative-findings providers.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Analyze generates structured risk findings for a protocol given its
	// matched historical trials.
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error)

	// IsAvailable checks that the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// AnalyzeRequest is the input for findings generation.
type AnalyzeRequest struct {
	Protocol   *model.Protocol
	Candidates []model.ScoredCandidate

	// Model overrides the configured model when non-empty.
	Model string

	// MaxTokens limits the response length.
	MaxTokens int
}

// AnalyzeResponse is the provider output.
type AnalyzeResponse struct {
	Findings   []model.Finding
	Model      string
	TokensUsed int
}

// Config holds provider configuration.
type Config struct {
	Provider  string // "openai" or "" (disabled)
	Model     string
	APIKey    string
	BaseURL   string // custom endpoints, e.g. a local OpenAI-compatible server
	Timeout   int    // seconds
	MaxTokens int
}

// DefaultConfig returns provider defaults: disabled until configured.
func DefaultConfig() Config {
	return Config{
		Provider:  "",
		Timeout:   30,
		MaxTokens: 2000,
	}
}

// ConfigFromModel converts the application LLM configuration.
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:  c.Provider,
		Model:     c.Model,
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		Timeout:   c.Timeout,
		MaxTokens: c.MaxTokens,
	}
}

// BuildPrompt constructs the analysis prompt. The contract is strict JSON:
// a single array of finding objects, nothing else, so the response can be
// parsed without heuristics.
func BuildPrompt(p *model.Protocol, candidates []model.ScoredCandidate) string {
	var b strings.Builder

	b.WriteString(`You are a clinical trial risk analyst. Analyze the candidate protocol against the similar historical trials below and produce risk findings.

Respond with ONLY a JSON array of finding objects, no prose, using exactly this schema:
[{"title": "...", "category": "historical_precedent|safety_alignment|design_completeness", "severity": "low|medium|high|critical", "description": "...", "evidence": ["..."], "recommendation": "...", "estimated_cost_to_fix": "... or empty", "implementation_difficulty": "easy|medium|hard"}]

Base every finding on the specific data provided. Cite trial IDs in evidence.

CANDIDATE PROTOCOL:
`)
	fmt.Fprintf(&b, "- Trial: %s (%s), sponsor %s\n", p.Metadata.TrialName, p.Metadata.Phase, p.Metadata.Sponsor)
	fmt.Fprintf(&b, "- Drug: %s, class %s\n", p.DrugProfile.Name, p.DrugProfile.DrugClass)
	fmt.Fprintf(&b, "- Population: %s, ages %s\n", p.PatientPopulation.TherapeuticArea, p.PatientPopulation.AgeRange)
	fmt.Fprintf(&b, "- Design: %s, blinding %s, placebo controlled %t, run-in %t\n",
		p.StudyDesign.DesignType, p.StudyDesign.Blinding, p.StudyDesign.PlaceboControlled, p.StudyDesign.PlaceboRunIn)
	fmt.Fprintf(&b, "- Statistics: planned enrollment %d, power calculation %t\n",
		p.StatisticalPlan.PlannedEnrollment, p.StatisticalPlan.PowerCalculationProvided)
	fmt.Fprintf(&b, "- Primary endpoints: %d, contraindications: %d, pharmacogenomic markers: %d\n",
		len(p.PrimaryEndpoints), len(p.DrugProfile.KnownContraindications), len(p.DrugProfile.PharmacogenomicMarkers))

	b.WriteString("\nSIMILAR HISTORICAL TRIALS:\n")
	if len(candidates) == 0 {
		b.WriteString("(none found)\n")
	}
	for i, c := range candidates {
		if i >= 10 {
			fmt.Fprintf(&b, "... and %d more\n", len(candidates)-10)
			break
		}
		fmt.Fprintf(&b, "- %s %q (%s, %s): outcome %s, similarity %.2f",
			c.NCTID, c.TrialName, c.Phase, c.DrugClass, c.Outcome, c.SimilarityScore)
		if len(c.FailureReasons) > 0 {
			fmt.Fprintf(&b, ", failure reasons: %s", strings.Join(c.FailureReasons, "; "))
		}
		b.WriteString("\n")
	}

	b.WriteString("\nReturn the JSON array now.")
	return b.String()
}
