package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mpetrov/trialgate/internal/cache"
	"github.com/mpetrov/trialgate/internal/model"
)

const studiesPayload = `{
	"studies": [
		{
			"protocolSection": {
				"identificationModule": {"nctId": "NCT11111111", "officialTitle": "A Study of Sertraline in Major Depressive Disorder"},
				"statusModule": {"overallStatus": "COMPLETED"},
				"designModule": {"phases": ["PHASE3"], "studyType": "INTERVENTIONAL"},
				"recruitmentModule": {"enrollmentInfo": {"count": 320}},
				"conditionsModule": {"conditions": ["Major Depressive Disorder"]},
				"interventionsModule": {"interventions": [{"type": "DRUG", "name": "Sertraline"}]}
			}
		},
		{
			"protocolSection": {
				"identificationModule": {"nctId": "NCT22222222", "officialTitle": "Terminated Oncology Study"},
				"statusModule": {"overallStatus": "TERMINATED", "whyStopped": "Slow accrual and futility at interim analysis"},
				"designModule": {"phases": ["PHASE2", "PHASE3"], "studyType": "INTERVENTIONAL"},
				"recruitmentModule": {"enrollmentInfo": {"count": 80}},
				"conditionsModule": {"conditions": ["Melanoma"]},
				"interventionsModule": {"interventions": [{"type": "BIOLOGICAL", "name": "Antibody X"}]}
			}
		}
	]
}`

func testConfig(baseURL string) model.RegistryConfig {
	return model.RegistryConfig{
		BaseURL:           baseURL,
		Timeout:           5 * time.Second,
		RequestsPerSecond: 100,
		Burst:             10,
		PageSize:          20,
		CacheTTL:          time.Hour,
	}
}

func TestClient_SearchTrials_TransformsStudies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/studies" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("query.cond"); got != "depression" {
			t.Errorf("Expected condition in query, got %q", got)
		}
		if got := r.URL.Query().Get("filter.overallStatus"); got != "COMPLETED|TERMINATED" {
			t.Errorf("Expected default status filter, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(studiesPayload))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)

	trials, err := client.SearchTrials(context.Background(), SearchParams{Condition: "depression"})
	if err != nil {
		t.Fatalf("SearchTrials failed: %v", err)
	}
	if len(trials) != 2 {
		t.Fatalf("Expected 2 trials, got %d", len(trials))
	}

	first := trials[0]
	if first.NCTID != "NCT11111111" {
		t.Errorf("Unexpected ID %s", first.NCTID)
	}
	if first.Outcome != model.OutcomeSuccess {
		t.Errorf("COMPLETED should map to success, got %s", first.Outcome)
	}
	if first.Phase != "Phase 3" {
		t.Errorf("Expected Phase 3, got %s", first.Phase)
	}
	if first.TherapeuticArea != "major depressive disorder" {
		t.Errorf("Expected normalized condition, got %q", first.TherapeuticArea)
	}
	if first.DrugClass != "DRUG" {
		t.Errorf("Expected intervention type as class, got %q", first.DrugClass)
	}
	if first.PlannedEnrollment != 320 {
		t.Errorf("Expected enrollment 320, got %d", first.PlannedEnrollment)
	}

	second := trials[1]
	if second.Outcome != model.OutcomeFailed {
		t.Errorf("TERMINATED should map to failed, got %s", second.Outcome)
	}
	if len(second.FailureReasons) != 1 || second.FailureReasons[0] != "Slow accrual and futility at interim analysis" {
		t.Errorf("Expected whyStopped carried as failure reason, got %v", second.FailureReasons)
	}
	if second.Phase != "Phase 2/3" {
		t.Errorf("Adjacent phases should combine, got %s", second.Phase)
	}
}

func TestClient_SearchTrials_PhaseFilterAndLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(studiesPayload))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)

	trials, err := client.SearchTrials(context.Background(), SearchParams{Condition: "any", Phase: "Phase 3"})
	if err != nil {
		t.Fatalf("SearchTrials failed: %v", err)
	}
	if len(trials) != 1 || trials[0].NCTID != "NCT11111111" {
		t.Errorf("Expected only the Phase 3 study, got %v", trials)
	}
}

func TestClient_SearchTrials_UsesCache(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(studiesPayload))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), cache.NewMemoryCache(time.Minute, time.Minute))

	params := SearchParams{Condition: "depression"}
	if _, err := client.SearchTrials(context.Background(), params); err != nil {
		t.Fatalf("First search failed: %v", err)
	}
	if _, err := client.SearchTrials(context.Background(), params); err != nil {
		t.Fatalf("Second search failed: %v", err)
	}

	if hits.Load() != 1 {
		t.Errorf("Expected 1 upstream request with cache, got %d", hits.Load())
	}
}

func TestClient_SearchTrials_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	if _, err := client.SearchTrials(context.Background(), SearchParams{Condition: "x"}); err == nil {
		t.Error("Expected error on 5xx response")
	}
}

func TestTransformStudy_Defaults(t *testing.T) {
	record := transformStudy(study{})

	if record.NCTID != "UNKNOWN" {
		t.Errorf("Expected UNKNOWN for missing ID, got %q", record.NCTID)
	}
	if record.Phase != "Unknown" {
		t.Errorf("Expected Unknown phase, got %q", record.Phase)
	}
	if record.DrugClass != "Unknown" {
		t.Errorf("Expected Unknown class, got %q", record.DrugClass)
	}
	if record.TherapeuticArea != "unknown" {
		t.Errorf("Expected unknown area, got %q", record.TherapeuticArea)
	}
	if record.Outcome != model.OutcomeUnknown {
		t.Errorf("Expected unknown outcome, got %s", record.Outcome)
	}
}

func TestNormalizePhases(t *testing.T) {
	tests := []struct {
		phases []string
		want   string
	}{
		{nil, "Unknown"},
		{[]string{"PHASE1"}, "Phase 1"},
		{[]string{"EARLY_PHASE1"}, "Phase 1"},
		{[]string{"PHASE2", "PHASE3"}, "Phase 2/3"},
		{[]string{"PHASE3", "PHASE2"}, "Phase 2/3"},
		{[]string{"PHASE1", "PHASE3"}, "Phase 3"},
		{[]string{"NA"}, "Unknown"},
	}

	for _, tt := range tests {
		if got := normalizePhases(tt.phases); got != tt.want {
			t.Errorf("normalizePhases(%v): expected %q, got %q", tt.phases, tt.want, got)
		}
	}
}
