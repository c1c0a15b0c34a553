// Package registry fetches real trial records from the ClinicalTrials.gov
// v2 API and maps them into corpus record form.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mpetrov/trialgate/internal/cache"
	"github.com/mpetrov/trialgate/internal/corpus"
	"github.com/mpetrov/trialgate/internal/model"
	"github.com/mpetrov/trialgate/internal/worker"
)

const maxResponseBytes = 8 << 20

// Client queries the ClinicalTrials.gov v2 studies endpoint. Requests are
// rate limited and responses cached, so repeated queries within the TTL
// never hit the network.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *worker.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
	pageSize   int
}

// NewClient creates a registry client. A nil cache disables caching.
func NewClient(cfg model.RegistryConfig, c cache.Cache) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		limiter:  worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		cache:    c,
		cacheTTL: cfg.CacheTTL,
		pageSize: pageSize,
	}
}

// SearchParams filter a registry search. Status defaults to completed and
// terminated trials, which are the ones with known outcomes.
type SearchParams struct {
	Condition    string // medical condition / therapeutic area
	Intervention string // intervention type or drug class
	Phase        string
	Status       string // comma-separated overall statuses
	Limit        int
}

// SearchTrials queries the registry and returns trials in corpus record
// form. Failures return the error to the caller; collaborator layers decide
// whether to degrade to an empty set.
func (c *Client) SearchTrials(ctx context.Context, params SearchParams) ([]model.TrialRecord, error) {
	limit := params.Limit
	if limit <= 0 || limit > c.pageSize {
		limit = c.pageSize
	}
	status := params.Status
	if status == "" {
		status = "COMPLETED,TERMINATED"
	}

	key := cache.Key("registry", params.Condition, params.Intervention, params.Phase, status, strconv.Itoa(limit))
	if c.cache != nil {
		if data, found := c.cache.Get(key); found {
			var cached []model.TrialRecord
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	endpoint := c.baseURL + "/studies"
	query := url.Values{}
	query.Set("format", "json")
	query.Set("pageSize", strconv.Itoa(limit))
	if params.Condition != "" {
		query.Set("query.cond", params.Condition)
	}
	if params.Intervention != "" {
		query.Set("query.intr", params.Intervention)
	}
	if status != "all" {
		query.Set("filter.overallStatus", strings.ReplaceAll(status, ",", "|"))
	}

	if err := c.limiter.Wait(ctx, endpoint); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("registry status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var payload studiesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse registry response: %w", err)
	}

	trials := make([]model.TrialRecord, 0, len(payload.Studies))
	for _, study := range payload.Studies {
		record := transformStudy(study)
		if params.Phase != "" && record.Phase != params.Phase {
			continue
		}
		trials = append(trials, record)
		if len(trials) >= limit {
			break
		}
	}

	if c.cache != nil {
		if data, err := json.Marshal(trials); err == nil {
			_ = c.cache.Set(key, data, c.cacheTTL)
		}
	}

	return trials, nil
}

// Wire types for the slice of the v2 API response we consume.

type studiesResponse struct {
	Studies []study `json:"studies"`
}

type study struct {
	ProtocolSection struct {
		IdentificationModule struct {
			NCTID         string `json:"nctId"`
			OfficialTitle string `json:"officialTitle"`
			Organization  struct {
				FullName string `json:"fullName"`
			} `json:"organization"`
		} `json:"identificationModule"`
		StatusModule struct {
			OverallStatus   string `json:"overallStatus"`
			WhyStopped      string `json:"whyStopped"`
			StartDateStruct struct {
				Date string `json:"date"`
			} `json:"startDateStruct"`
		} `json:"statusModule"`
		DesignModule struct {
			Phases     []string `json:"phases"`
			StudyType  string   `json:"studyType"`
			DesignInfo struct {
				MaskingInfo struct {
					Masking string `json:"masking"`
				} `json:"maskingInfo"`
			} `json:"designInfo"`
		} `json:"designModule"`
		RecruitmentModule struct {
			EnrollmentInfo struct {
				Count int `json:"count"`
			} `json:"enrollmentInfo"`
		} `json:"recruitmentModule"`
		ConditionsModule struct {
			Conditions []string `json:"conditions"`
		} `json:"conditionsModule"`
		InterventionsModule struct {
			Interventions []struct {
				Type        string `json:"type"`
				Name        string `json:"name"`
				Description string `json:"description"`
			} `json:"interventions"`
		} `json:"interventionsModule"`
	} `json:"protocolSection"`
}

// transformStudy maps one API study into corpus record form.
func transformStudy(s study) model.TrialRecord {
	p := s.ProtocolSection

	record := model.TrialRecord{
		NCTID:             p.IdentificationModule.NCTID,
		TrialName:         truncate(p.IdentificationModule.OfficialTitle, 200),
		Phase:             normalizePhases(p.DesignModule.Phases),
		StudyDesign:       orUnknown(p.DesignModule.StudyType),
		PlannedEnrollment: p.RecruitmentModule.EnrollmentInfo.Count,
		ActualEnrollment:  p.RecruitmentModule.EnrollmentInfo.Count,
		Tags:              []string{"clinicaltrials.gov"},
	}
	if record.NCTID == "" {
		record.NCTID = "UNKNOWN"
	}

	if len(p.ConditionsModule.Conditions) > 0 {
		record.TherapeuticArea = corpus.Normalize(p.ConditionsModule.Conditions[0])
	} else {
		record.TherapeuticArea = "unknown"
	}

	record.DrugClass = "Unknown"
	if len(p.InterventionsModule.Interventions) > 0 {
		if t := p.InterventionsModule.Interventions[0].Type; t != "" {
			record.DrugClass = t
		}
	}

	switch p.StatusModule.OverallStatus {
	case "COMPLETED":
		record.Outcome = model.OutcomeSuccess
	case "TERMINATED", "WITHDRAWN":
		record.Outcome = model.OutcomeFailed
		if why := p.StatusModule.WhyStopped; why != "" {
			record.FailureReasons = []string{why}
		}
	default:
		record.Outcome = model.OutcomeUnknown
	}

	return record
}

// normalizePhases maps registry phase constants onto the corpus phase
// enumeration, collapsing two-phase studies into the combined form.
func normalizePhases(phases []string) string {
	var indices []int
	for _, p := range phases {
		switch strings.ToUpper(strings.TrimSpace(p)) {
		case "EARLY_PHASE1", "PHASE1":
			indices = append(indices, 1)
		case "PHASE2":
			indices = append(indices, 2)
		case "PHASE3":
			indices = append(indices, 3)
		case "PHASE4":
			indices = append(indices, 4)
		}
	}

	switch len(indices) {
	case 0:
		return "Unknown"
	case 1:
		return fmt.Sprintf("Phase %d", indices[0])
	default:
		lo, hi := indices[0], indices[0]
		for _, n := range indices[1:] {
			if n < lo {
				lo = n
			}
			if n > hi {
				hi = n
			}
		}
		if hi == lo+1 {
			return fmt.Sprintf("Phase %d/%d", lo, hi)
		}
		return fmt.Sprintf("Phase %d", hi)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
