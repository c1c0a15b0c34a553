package corpus

import (
	"strings"
	"sync/atomic"

	"github.com/mpetrov/trialgate/internal/model"
)

// Index provides O(1)-average lookups over the historical trial corpus.
// It is built once and treated as read-only shared state afterwards, so
// concurrent readers need no locking.
//
// Dimension buckets hold positions into the corpus slice rather than IDs,
// which keeps records with missing identifiers reachable and preserves
// corpus order for deterministic tie-breaking downstream.
type Index struct {
	trials []model.TrialRecord

	byID      map[string]int // last write wins on duplicate IDs
	byClass   map[string][]int
	byArea    map[string][]int
	byPhase   map[string][]int
	byOutcome map[string][]int
	byTag     map[string][]int
}

// BuildIndex builds an index from a flat list of trial records. The input
// slice is never mutated. An empty input yields an empty but valid index.
func BuildIndex(trials []model.TrialRecord) *Index {
	idx := &Index{
		trials:    trials,
		byID:      make(map[string]int),
		byClass:   make(map[string][]int),
		byArea:    make(map[string][]int),
		byPhase:   make(map[string][]int),
		byOutcome: make(map[string][]int),
		byTag:     make(map[string][]int),
	}

	for i, t := range trials {
		if t.NCTID != "" {
			idx.byID[t.NCTID] = i
		}
		if class := Normalize(t.DrugClass); class != "" {
			idx.byClass[class] = append(idx.byClass[class], i)
		}
		if area := Normalize(t.TherapeuticArea); area != "" {
			idx.byArea[area] = append(idx.byArea[area], i)
		}
		if t.Phase != "" {
			idx.byPhase[t.Phase] = append(idx.byPhase[t.Phase], i)
		}
		if outcome := Normalize(t.Outcome); outcome != "" {
			idx.byOutcome[outcome] = append(idx.byOutcome[outcome], i)
		}
		for _, tag := range t.Tags {
			if tag = Normalize(tag); tag != "" {
				idx.byTag[tag] = append(idx.byTag[tag], i)
			}
		}
	}

	return idx
}

// Normalize lower-cases and trims a free-text key field.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Len returns the number of records in the corpus.
func (idx *Index) Len() int { return len(idx.trials) }

// At returns the record at the given corpus position.
func (idx *Index) At(pos int) model.TrialRecord { return idx.trials[pos] }

// Records returns the underlying corpus slice. Callers must treat it as
// read-only.
func (idx *Index) Records() []model.TrialRecord { return idx.trials }

// ByID returns the record with the given identifier. When the corpus held
// duplicate identifiers, the later record in load order wins.
func (idx *Index) ByID(id string) (model.TrialRecord, bool) {
	pos, ok := idx.byID[id]
	if !ok {
		return model.TrialRecord{}, false
	}
	return idx.trials[pos], true
}

// ByDrugClass returns corpus positions whose normalized drug class exactly
// equals the (normalized) argument.
func (idx *Index) ByDrugClass(class string) []int {
	return idx.byClass[Normalize(class)]
}

// DrugClassKeys returns every distinct normalized drug class in the corpus.
func (idx *Index) DrugClassKeys() []string {
	keys := make([]string, 0, len(idx.byClass))
	for k := range idx.byClass {
		keys = append(keys, k)
	}
	return keys
}

// ByTherapeuticArea returns corpus positions for the normalized area.
func (idx *Index) ByTherapeuticArea(area string) []int {
	return idx.byArea[Normalize(area)]
}

// ByPhase returns corpus positions for the exact phase string.
func (idx *Index) ByPhase(phase string) []int {
	return idx.byPhase[phase]
}

// ByOutcome returns corpus positions for the normalized outcome.
func (idx *Index) ByOutcome(outcome string) []int {
	return idx.byOutcome[Normalize(outcome)]
}

// ByTag returns corpus positions carrying the normalized tag.
func (idx *Index) ByTag(tag string) []int {
	return idx.byTag[Normalize(tag)]
}

// Store holds the live index behind an atomic pointer. Reloading the corpus
// swaps in a completely rebuilt index so concurrent readers never observe a
// partially built one.
type Store struct {
	current atomic.Pointer[Index]
}

// NewStore creates a store seeded with an index over the given records.
func NewStore(trials []model.TrialRecord) *Store {
	s := &Store{}
	s.current.Store(BuildIndex(trials))
	return s
}

// Current returns the live index.
func (s *Store) Current() *Index {
	return s.current.Load()
}

// Reload rebuilds the index from new records and swaps it in atomically.
func (s *Store) Reload(trials []model.TrialRecord) {
	s.current.Store(BuildIndex(trials))
}
