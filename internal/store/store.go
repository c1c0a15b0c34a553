// Package store persists completed assessments for later retrieval. It is
// a collaborator of the core engine: the engine itself never touches
// durable storage.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mpetrov/trialgate/internal/model"
)

const storeFile = "saved_assessments.json"

// Entry is the stored form of one assessment, with the headline numbers
// duplicated so listings never need the full report.
type Entry struct {
	ID           string            `json:"assessment_id"`
	TrialName    string            `json:"trial_name"`
	CreatedAt    time.Time         `json:"created_at"`
	OverallScore float64           `json:"overall_score"`
	RiskLevel    model.RiskLevel   `json:"risk_level"`
	Assessment   *model.Assessment `json:"assessment"`
}

// Summary is the listing view of a stored assessment.
type Summary struct {
	ID           string          `json:"assessment_id"`
	TrialName    string          `json:"trial_name"`
	CreatedAt    time.Time       `json:"created_at"`
	OverallScore float64         `json:"overall_score"`
	RiskLevel    model.RiskLevel `json:"risk_level"`
}

// Store is a JSON-file-backed assessment store.
type Store struct {
	path string

	mu      sync.Mutex
	entries map[string]Entry
}

type storeDocument struct {
	Assessments map[string]Entry `json:"assessments"`
	LastUpdated time.Time        `json:"last_updated"`
}

// Open creates or loads the store under dir. A corrupt store file is
// discarded and the store starts empty rather than failing.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	s := &Store{
		path:    filepath.Join(dir, storeFile),
		entries: make(map[string]Entry),
	}

	data, err := os.ReadFile(s.path)
	if err == nil {
		var doc storeDocument
		if err := json.Unmarshal(data, &doc); err == nil && doc.Assessments != nil {
			s.entries = doc.Assessments
		} else {
			fmt.Fprintf(os.Stderr, "Warning: discarding corrupt assessment store %s\n", s.path)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read store: %w", err)
	}

	return s, nil
}

// Save persists one assessment.
func (s *Store) Save(a *model.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[a.ID] = Entry{
		ID:           a.ID,
		TrialName:    a.TrialName,
		CreatedAt:    a.CreatedAt,
		OverallScore: a.Risk.OverallScore,
		RiskLevel:    a.Risk.RiskLevel,
		Assessment:   a,
	}
	return s.flushLocked()
}

// Get returns a stored assessment by ID.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	return entry, ok
}

// List returns stored assessment summaries, newest first, up to limit.
func (s *Store) List(limit int) []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]Summary, 0, len(s.entries))
	for _, e := range s.entries {
		summaries = append(summaries, Summary{
			ID:           e.ID,
			TrialName:    e.TrialName,
			CreatedAt:    e.CreatedAt,
			OverallScore: e.OverallScore,
			RiskLevel:    e.RiskLevel,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})

	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries
}

// Delete removes a stored assessment. Deleting a missing ID is not an
// error.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return nil
	}
	delete(s.entries, id)
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	doc := storeDocument{
		Assessments: s.entries,
		LastUpdated: time.Now().UTC(),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}
