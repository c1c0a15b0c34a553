// Package validate checks loaded protocols for structural problems before
// assessment. Errors stop the pipeline; warnings are surfaced and the
// assessment proceeds, with the scoring rules treating the missing data as
// design gaps.
package validate

import (
	"fmt"
	"regexp"

	"github.com/mpetrov/trialgate/internal/model"
)

// Severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding on a protocol.
type Issue struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Field, i.Message)
}

var ageRangePattern = regexp.MustCompile(`(\d+)-(\d+)`)

// Protocol validates a loaded protocol and returns every issue found.
// The returned slice is empty for a clean protocol, never nil.
func Protocol(p *model.Protocol) []Issue {
	issues := []Issue{}

	errorf := func(field, format string, args ...interface{}) {
		issues = append(issues, Issue{Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
	}
	warnf := func(field, format string, args ...interface{}) {
		issues = append(issues, Issue{Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
	}

	if p.StatisticalPlan.PlannedEnrollment < 0 {
		errorf("statistical_plan.planned_enrollment", "must not be negative, got %d", p.StatisticalPlan.PlannedEnrollment)
	}
	if p.StatisticalPlan.ActualEnrollment < 0 {
		errorf("statistical_plan.actual_enrollment", "must not be negative, got %d", p.StatisticalPlan.ActualEnrollment)
	}
	if a := p.StatisticalPlan.AlphaLevel; a < 0 || a > 1 {
		errorf("statistical_plan.alpha_level", "must be in [0,1], got %g", a)
	}
	if d := p.StatisticalPlan.DropoutRateAssumption; d < 0 || d > 1 {
		errorf("statistical_plan.dropout_rate_assumption", "must be in [0,1], got %g", d)
	}

	if p.Metadata.Phase == "" {
		warnf("metadata.phase", "missing; phase similarity will not be scored")
	}
	if p.DrugProfile.DrugClass == "" || p.DrugProfile.DrugClass == "Unknown" {
		warnf("drug_profile.drug_class", "unknown; historical matching will be weak")
	}
	if p.PatientPopulation.TherapeuticArea == "" {
		warnf("patient_population.therapeutic_area", "missing; candidate narrowing is disabled")
	}
	if age := p.PatientPopulation.AgeRange; age != "" && !ageRangePattern.MatchString(age) {
		warnf("patient_population.age_range", "%q is not a min-max range; age overlap will not be scored", age)
	}
	if len(p.PrimaryEndpoints) == 0 {
		warnf("primary_endpoints", "no primary endpoints defined")
	}
	if p.StatisticalPlan.PlannedEnrollment == 0 {
		warnf("statistical_plan.planned_enrollment", "missing; sample size comparisons will treat it as zero")
	}

	return issues
}

// Errors filters issues down to the error severity.
func Errors(issues []Issue) []Issue {
	var errs []Issue
	for _, i := range issues {
		if i.Severity == SeverityError {
			errs = append(errs, i)
		}
	}
	return errs
}
