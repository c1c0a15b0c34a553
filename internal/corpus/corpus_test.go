package corpus

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mpetrov/trialgate/internal/model"
)

func TestBuildIndex_BucketsByPosition(t *testing.T) {
	trials := []model.TrialRecord{
		{NCTID: "NCT001", DrugClass: "SSRI", TherapeuticArea: "Depression", Phase: "Phase 3", Outcome: model.OutcomeFailed, Tags: []string{"psychiatry"}},
		{NCTID: "NCT002", DrugClass: "ssri ", TherapeuticArea: "depression", Phase: "Phase 2", Outcome: model.OutcomeSuccess},
		{NCTID: "", DrugClass: "SNRI", TherapeuticArea: "depression", Phase: "Phase 3", Outcome: model.OutcomeSuccess},
	}

	idx := BuildIndex(trials)

	if idx.Len() != 3 {
		t.Fatalf("Expected 3 records, got %d", idx.Len())
	}

	// Normalized class keys merge case and whitespace variants.
	if got := idx.ByDrugClass("SSRI"); len(got) != 2 {
		t.Errorf("Expected 2 SSRI positions, got %v", got)
	}
	if got := idx.ByTherapeuticArea("DEPRESSION"); len(got) != 3 {
		t.Errorf("Expected 3 depression positions, got %v", got)
	}
	if got := idx.ByOutcome("failed"); len(got) != 1 || got[0] != 0 {
		t.Errorf("Expected failed at position 0, got %v", got)
	}
	if got := idx.ByTag("Psychiatry"); len(got) != 1 {
		t.Errorf("Expected 1 tagged position, got %v", got)
	}

	// A record with no ID is still reachable by position.
	if idx.At(2).DrugClass != "SNRI" {
		t.Errorf("Expected SNRI at position 2, got %s", idx.At(2).DrugClass)
	}
}

func TestBuildIndex_DuplicateIDLastWriteWins(t *testing.T) {
	trials := []model.TrialRecord{
		{NCTID: "NCT001", TrialName: "first"},
		{NCTID: "NCT001", TrialName: "second"},
	}

	idx := BuildIndex(trials)

	got, ok := idx.ByID("NCT001")
	if !ok {
		t.Fatal("Expected NCT001 to resolve")
	}
	if got.TrialName != "second" {
		t.Errorf("Expected later record to win, got %q", got.TrialName)
	}
	if idx.Len() != 2 {
		t.Errorf("Both records stay in the corpus, got %d", idx.Len())
	}
}

func TestBuildIndex_Empty(t *testing.T) {
	idx := BuildIndex(nil)

	if idx.Len() != 0 {
		t.Errorf("Expected empty index, got %d", idx.Len())
	}
	if got := idx.ByDrugClass("SSRI"); len(got) != 0 {
		t.Errorf("Expected no positions, got %v", got)
	}
	if _, ok := idx.ByID("NCT001"); ok {
		t.Error("Expected no record by ID")
	}
}

func TestStore_ReloadSwapsAtomically(t *testing.T) {
	store := NewStore([]model.TrialRecord{{NCTID: "NCT001"}})

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			idx := store.Current()
			if n := idx.Len(); n != 1 && n != 2 {
				t.Errorf("Observed index with unexpected size %d", n)
				return
			}
		}
	}()

	for i := 0; i < 100; i++ {
		store.Reload([]model.TrialRecord{{NCTID: "NCT001"}, {NCTID: "NCT002"}})
		store.Reload([]model.TrialRecord{{NCTID: "NCT001"}})
	}
	close(stop)
	wg.Wait()

	if store.Current().Len() != 1 {
		t.Errorf("Expected final index of size 1, got %d", store.Current().Len())
	}
}

func TestLoad_MissingFileYieldsEmptyCorpus(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.json"))

	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Expected wrapped fs.ErrNotExist, got %v", err)
	}
	if c == nil || len(c.Trials) != 0 {
		t.Errorf("Expected usable empty corpus, got %+v", c)
	}
}

func TestLoad_MalformedJSONIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"trials": [{"planned_enrollment": "many"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for wrong-typed field")
	}
}

func TestLoad_DefaultsEmptyOutcome(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	doc := `{
		"trials": [
			{"nct_id": "NCT001", "drug_class": "SSRI", "therapeutic_area": "depression", "phase": "Phase 3"}
		],
		"failure_patterns": {
			"depression": {"common_failure_reasons": ["placebo response"]},
			"depression_ssri": {"failure_rate": 0.4}
		}
	}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Trials[0].Outcome != model.OutcomeUnknown {
		t.Errorf("Expected defaulted outcome %q, got %q", model.OutcomeUnknown, c.Trials[0].Outcome)
	}

	if c.Pattern("Depression", "") == nil {
		t.Error("Expected area pattern")
	}
	if c.Pattern("depression", "SSRI") == nil {
		t.Error("Expected area+class pattern")
	}
	if c.Pattern("oncology", "") != nil {
		t.Error("Expected nil for missing pattern")
	}
}
