// Package pipeline orchestrates one protocol assessment end to end:
// load protocol, search the corpus, build the comparison, gather narrative
// findings, score the risk.
package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/mpetrov/trialgate/internal/compare"
	"github.com/mpetrov/trialgate/internal/corpus"
	"github.com/mpetrov/trialgate/internal/llm"
	"github.com/mpetrov/trialgate/internal/model"
	"github.com/mpetrov/trialgate/internal/risk"
	"github.com/mpetrov/trialgate/internal/search"
)

// Pipeline wires the assessment components together. The corpus index is
// built once at construction and shared read-only, so a single pipeline is
// safe for concurrent assessments.
type Pipeline struct {
	corpusStore *corpus.Store
	searcher    *search.Searcher
	engine      *risk.Engine
	analyst     *llm.Analyst // nil when findings generation is disabled
	renderer    *Renderer
	config      *model.Config
}

// NewPipeline builds a pipeline from configuration. A missing corpus file
// degrades to an empty corpus with a warning; every other corpus problem is
// an error.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	c, err := corpus.Load(cfg.Corpus.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Warning: %v, using empty corpus\n", err)
		} else {
			return nil, err
		}
	}

	var analyst *llm.Analyst
	if cfg.LLM.Provider != "" {
		a, err := llm.NewAnalyst(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		} else {
			analyst = a
		}
	}

	corpusStore := corpus.NewStore(c.Trials)

	return &Pipeline{
		corpusStore: corpusStore,
		searcher:    search.NewSearcher(corpusStore),
		engine:      risk.NewEngine(),
		analyst:     analyst,
		renderer:    NewRenderer(cfg.Output.IncludeFooter),
		config:      cfg,
	}, nil
}

// Searcher exposes the similarity searcher for direct corpus queries.
func (p *Pipeline) Searcher() *search.Searcher {
	return p.searcher
}

// CorpusSize returns the number of records in the loaded corpus.
func (p *Pipeline) CorpusSize() int {
	return p.corpusStore.Current().Len()
}

// AssessFile loads a protocol JSON file and assesses it.
func (p *Pipeline) AssessFile(ctx context.Context, path string) (*model.Assessment, error) {
	protocol, err := LoadProtocol(path)
	if err != nil {
		return nil, err
	}
	return p.Assess(ctx, protocol)
}

// Assess runs the full assessment for one protocol.
func (p *Pipeline) Assess(ctx context.Context, protocol *model.Protocol) (*model.Assessment, error) {
	// 1. Similarity search over the corpus.
	matches := p.searcher.Search(search.Query{
		DrugClass:       protocol.DrugProfile.DrugClass,
		TherapeuticArea: protocol.PatientPopulation.TherapeuticArea,
		Phase:           protocol.Metadata.Phase,
		PopulationAge:   protocol.PatientPopulation.AgeRange,
		TopK:            p.config.Search.TopK,
	})

	// 2. Side-by-side comparison against the closest match.
	var comparison *model.ComparisonTable
	if len(matches) > 0 {
		table := compare.Compare(protocol, matches[0].TrialRecord)
		comparison = &table
	}

	// 3. Narrative findings from the external provider, if configured.
	// Failures degrade to zero findings; the deterministic scores below
	// never depend on this step.
	var findings []model.Finding
	var llmInfo *model.LLMInfo
	if p.analyst.IsEnabled() {
		findings, llmInfo = p.analyst.GenerateFindings(ctx, protocol, matches)
	}

	// 4. Deterministic risk scoring and recommendation ranking.
	riskScore := p.engine.Score(protocol, matches, findings)
	recommendations := risk.Prioritize(findings)

	return &model.Assessment{
		ID:              newAssessmentID(),
		TrialName:       protocol.Metadata.TrialName,
		CreatedAt:       time.Now().UTC(),
		Risk:            riskScore,
		SimilarTrials:   matches,
		Comparison:      comparison,
		Findings:        findings,
		Recommendations: recommendations,
		LLM:             llmInfo,
	}, nil
}

// newAssessmentID generates a short unique assessment identifier.
func newAssessmentID() string {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("tg-%d", time.Now().UnixNano())
	}
	return "tg-" + hex.EncodeToString(b[:])
}
