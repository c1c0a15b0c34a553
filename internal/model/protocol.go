package model

// Protocol is the candidate trial design under assessment. It is supplied
// per request and never mutated by the engine. Optional fields default to
// their zero values; leniency lives in the loader, not here.
type Protocol struct {
	Metadata             ProtocolMetadata  `json:"metadata"`
	DrugProfile          DrugProfile       `json:"drug_profile"`
	PatientPopulation    PatientPopulation `json:"patient_population"`
	StudyDesign          StudyDesign       `json:"study_design"`
	PrimaryEndpoints     []Endpoint        `json:"primary_endpoints,omitempty"`
	SecondaryEndpoints   []Endpoint        `json:"secondary_endpoints,omitempty"`
	StatisticalPlan      StatisticalPlan   `json:"statistical_plan"`
	SafetyMonitoringPlan string            `json:"safety_monitoring_plan,omitempty"`
}

// ProtocolMetadata identifies the candidate trial.
type ProtocolMetadata struct {
	NCTID     string `json:"nct_id,omitempty"`
	TrialName string `json:"trial_name"`
	Sponsor   string `json:"sponsor,omitempty"`
	Phase     string `json:"phase"`
	Year      int    `json:"year,omitempty"`
}

// DrugProfile describes the intervention.
type DrugProfile struct {
	Name                   string   `json:"name"`
	DrugClass              string   `json:"drug_class"`
	MechanismOfAction      string   `json:"mechanism_of_action,omitempty"`
	KnownContraindications []string `json:"known_contraindications,omitempty"`
	PharmacogenomicMarkers []string `json:"pharmacogenomic_markers,omitempty"`
}

// PatientPopulation describes the target population.
type PatientPopulation struct {
	AgeRange              string   `json:"age_range"`
	Gender                string   `json:"gender,omitempty"`
	DiseaseIndication     string   `json:"disease_indication,omitempty"`
	TherapeuticArea       string   `json:"therapeutic_area"`
	InclusionCriteria     []string `json:"inclusion_criteria,omitempty"`
	ExclusionCriteria     []string `json:"exclusion_criteria,omitempty"`
	DiseaseSeverity       string   `json:"disease_severity,omitempty"`
	BiomarkerRequirements []string `json:"biomarker_requirements,omitempty"`
}

// StudyDesign describes the design of the candidate trial.
type StudyDesign struct {
	DesignType        string `json:"design_type"`
	Blinding          string `json:"blinding,omitempty"` // open-label, single-blind, double-blind, triple-blind
	Randomization     bool   `json:"randomization"`
	PlaceboControlled bool   `json:"placebo_controlled"`
	PlaceboRunIn      bool   `json:"placebo_run_in"`
	EnrichmentDesign  bool   `json:"enrichment_design,omitempty"`
	AdaptiveDesign    bool   `json:"adaptive_design,omitempty"`
	DurationWeeks     int    `json:"duration_weeks,omitempty"`
}

// Endpoint is one trial endpoint.
type Endpoint struct {
	Name              string `json:"name"`
	Type              string `json:"type,omitempty"` // primary, secondary, exploratory
	MeasurementMethod string `json:"measurement_method,omitempty"`
	Timepoint         string `json:"timepoint,omitempty"`
}

// StatisticalPlan describes the statistical analysis plan.
type StatisticalPlan struct {
	PlannedEnrollment        int     `json:"planned_enrollment"`
	ActualEnrollment         int     `json:"actual_enrollment,omitempty"`
	PowerCalculationProvided bool    `json:"power_calculation_provided"`
	ExpectedEffectSize       float64 `json:"expected_effect_size,omitempty"`
	AlphaLevel               float64 `json:"alpha_level,omitempty"`
	DropoutRateAssumption    float64 `json:"dropout_rate_assumption,omitempty"`
	PrimaryAnalysisMethod    string  `json:"primary_analysis_method,omitempty"`
}
