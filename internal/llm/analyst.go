package llm

import (
	"context"
	"fmt"

	"github.com/mpetrov/trialgate/internal/model"
)

// Analyst wraps a provider and degrades gracefully: provider failures yield
// zero findings and a warning, never an aborted assessment.
type Analyst struct {
	provider Provider
	config   Config
}

// NewAnalyst creates an analyst. Returns an error only on provider
// misconfiguration; an empty provider name yields a disabled analyst.
func NewAnalyst(config Config) (*Analyst, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Analyst{provider: provider, config: config}, nil
}

// IsEnabled reports whether a provider is configured.
func (a *Analyst) IsEnabled() bool {
	return a != nil && a.provider != nil
}

// GenerateFindings produces narrative findings for the protocol. On
// provider failure it returns an empty findings list and records the
// failure as a warning in the returned LLMInfo.
func (a *Analyst) GenerateFindings(ctx context.Context, p *model.Protocol, candidates []model.ScoredCandidate) ([]model.Finding, *model.LLMInfo) {
	if !a.IsEnabled() {
		return nil, nil
	}

	info := &model.LLMInfo{
		Enabled:  true,
		Provider: a.provider.Name(),
		Model:    a.config.Model,
	}

	resp, err := a.provider.Analyze(ctx, AnalyzeRequest{
		Protocol:   p,
		Candidates: candidates,
		MaxTokens:  a.config.MaxTokens,
	})
	if err != nil {
		info.Warnings = append(info.Warnings, fmt.Sprintf("findings generation failed: %v", err))
		return nil, info
	}

	info.Model = resp.Model
	return resp.Findings, info
}
