package llm

import (
	"strings"
	"testing"

	"github.com/mpetrov/trialgate/internal/model"
)

func TestParseFindings_PlainArray(t *testing.T) {
	content := `[{"title": "No placebo control", "category": "design_completeness", "severity": "high"}]`

	findings, err := ParseFindings(content)
	if err != nil {
		t.Fatalf("ParseFindings failed: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	if findings[0].Title != "No placebo control" {
		t.Errorf("Unexpected title %q", findings[0].Title)
	}
	if findings[0].Severity != model.RiskHigh {
		t.Errorf("Unexpected severity %s", findings[0].Severity)
	}
}

func TestParseFindings_CodeFence(t *testing.T) {
	content := "```json\n[{\"title\": \"Fenced finding\", \"category\": \"safety_alignment\", \"severity\": \"medium\"}]\n```"

	findings, err := ParseFindings(content)
	if err != nil {
		t.Fatalf("ParseFindings failed: %v", err)
	}
	if len(findings) != 1 || findings[0].Title != "Fenced finding" {
		t.Errorf("Expected fenced payload parsed, got %+v", findings)
	}
}

func TestParseFindings_ProseAroundArray(t *testing.T) {
	content := `Here are the findings you asked for:
[{"title": "Wrapped", "severity": "low"}]
Let me know if you need more.`

	findings, err := ParseFindings(content)
	if err != nil {
		t.Fatalf("ParseFindings failed: %v", err)
	}
	if len(findings) != 1 || findings[0].Title != "Wrapped" {
		t.Errorf("Expected array extracted from prose, got %+v", findings)
	}
}

func TestParseFindings_NoArray(t *testing.T) {
	if _, err := ParseFindings("I cannot analyze this protocol."); err == nil {
		t.Error("Expected error when no array present")
	}
}

func TestParseFindings_MalformedJSON(t *testing.T) {
	if _, err := ParseFindings(`[{"title": }]`); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestParseFindings_EmptyArray(t *testing.T) {
	findings, err := ParseFindings("[]")
	if err != nil {
		t.Fatalf("ParseFindings failed: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("Expected no findings, got %d", len(findings))
	}
}

func TestBuildPrompt_IncludesProtocolAndCandidates(t *testing.T) {
	p := &model.Protocol{
		Metadata:    model.ProtocolMetadata{TrialName: "CANDIDATE-1", Phase: "Phase 3"},
		DrugProfile: model.DrugProfile{Name: "testdrug", DrugClass: "SSRI"},
	}
	candidates := []model.ScoredCandidate{
		{
			TrialRecord: model.TrialRecord{
				NCTID:          "NCT01234567",
				TrialName:      "Historical",
				Outcome:        model.OutcomeFailed,
				FailureReasons: []string{"high placebo response"},
			},
			SimilarityScore: 0.85,
		},
	}

	prompt := BuildPrompt(p, candidates)

	for _, want := range []string{"CANDIDATE-1", "SSRI", "NCT01234567", "high placebo response", "JSON array"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestBuildPrompt_CapsCandidateList(t *testing.T) {
	candidates := make([]model.ScoredCandidate, 15)
	for i := range candidates {
		candidates[i] = model.ScoredCandidate{TrialRecord: model.TrialRecord{NCTID: "NCT000"}}
	}

	prompt := BuildPrompt(&model.Protocol{}, candidates)
	if !strings.Contains(prompt, "and 5 more") {
		t.Error("Expected candidate list capped at 10 with a remainder note")
	}
}

func TestNewProvider_SelectsByName(t *testing.T) {
	p, err := NewProvider(Config{Provider: ""})
	if err != nil || p != nil {
		t.Errorf("Empty provider should be disabled, got %v, %v", p, err)
	}

	p, err = NewProvider(Config{Provider: "openai", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("Expected openai provider, got error %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("Expected provider name openai, got %s", p.Name())
	}

	if _, err := NewProvider(Config{Provider: "carrier-pigeon"}); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestAnalyst_DisabledIsNilSafe(t *testing.T) {
	var a *Analyst
	if a.IsEnabled() {
		t.Error("Nil analyst must report disabled")
	}

	a, err := NewAnalyst(Config{Provider: ""})
	if err != nil {
		t.Fatalf("NewAnalyst failed: %v", err)
	}
	if a.IsEnabled() {
		t.Error("Analyst without provider must report disabled")
	}
}
