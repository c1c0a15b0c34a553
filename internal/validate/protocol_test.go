package validate

import (
	"testing"

	"github.com/mpetrov/trialgate/internal/model"
)

func validProtocol() *model.Protocol {
	return &model.Protocol{
		Metadata:          model.ProtocolMetadata{TrialName: "T", Phase: "Phase 2"},
		DrugProfile:       model.DrugProfile{DrugClass: "SSRI"},
		PatientPopulation: model.PatientPopulation{AgeRange: "18-65", TherapeuticArea: "depression"},
		PrimaryEndpoints:  []model.Endpoint{{Name: "endpoint"}},
		StatisticalPlan:   model.StatisticalPlan{PlannedEnrollment: 100, AlphaLevel: 0.05},
	}
}

func TestProtocol_CleanHasNoIssues(t *testing.T) {
	issues := Protocol(validProtocol())
	if issues == nil {
		t.Fatal("Expected empty slice, got nil")
	}
	if len(issues) != 0 {
		t.Errorf("Expected no issues, got %v", issues)
	}
}

func TestProtocol_NegativeEnrollmentIsError(t *testing.T) {
	p := validProtocol()
	p.StatisticalPlan.PlannedEnrollment = -1

	issues := Protocol(p)
	errs := Errors(issues)
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error, got %v", issues)
	}
	if errs[0].Field != "statistical_plan.planned_enrollment" {
		t.Errorf("Unexpected field %q", errs[0].Field)
	}
}

func TestProtocol_OutOfRangeAlphaIsError(t *testing.T) {
	p := validProtocol()
	p.StatisticalPlan.AlphaLevel = 5

	if errs := Errors(Protocol(p)); len(errs) != 1 {
		t.Errorf("Expected alpha error, got %v", errs)
	}
}

func TestProtocol_MissingFieldsAreWarnings(t *testing.T) {
	p := &model.Protocol{}

	issues := Protocol(p)
	if len(Errors(issues)) != 0 {
		t.Errorf("Zero-valued protocol should only warn, got errors %v", Errors(issues))
	}
	if len(issues) < 4 {
		t.Errorf("Expected warnings for missing phase, class, area, endpoints, got %v", issues)
	}
}

func TestProtocol_UnparseableAgeRangeWarns(t *testing.T) {
	p := validProtocol()
	p.PatientPopulation.AgeRange = "adults only"

	issues := Protocol(p)
	found := false
	for _, i := range issues {
		if i.Field == "patient_population.age_range" && i.Severity == SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected age range warning, got %v", issues)
	}
}
