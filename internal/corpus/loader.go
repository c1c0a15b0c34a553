package corpus

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"github.com/mpetrov/trialgate/internal/model"
)

// Corpus is the loaded historical trial document: a "trials" array plus
// optional pre-computed failure patterns keyed by therapeutic area (or
// "area_drugclass" for more specific entries).
type Corpus struct {
	Trials          []model.TrialRecord               `json:"trials"`
	FailurePatterns map[string]map[string]interface{} `json:"failure_patterns,omitempty"`
}

// Load reads and parses a corpus document. A missing file returns an empty
// corpus together with a wrapped fs.ErrNotExist, so callers can choose to
// warn and continue with an empty database. Structurally malformed JSON
// (including wrong types for numeric fields) is a validation error.
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Corpus{}, fmt.Errorf("corpus file %s: %w", path, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	var c Corpus
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", path, err)
	}

	// Defaulting happens here at the boundary, keeping the model strict:
	// a record without an outcome is an ongoing/unknown trial.
	for i := range c.Trials {
		if c.Trials[i].Outcome == "" {
			c.Trials[i].Outcome = model.OutcomeUnknown
		}
	}

	return &c, nil
}

// Pattern returns the pre-computed failure pattern for a therapeutic area,
// optionally narrowed by drug class. Missing keys return nil.
func (c *Corpus) Pattern(area, drugClass string) map[string]interface{} {
	key := Normalize(area)
	if drugClass != "" {
		key = Normalize(area) + "_" + Normalize(drugClass)
	}
	return c.FailurePatterns[key]
}
