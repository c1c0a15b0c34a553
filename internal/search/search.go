package search

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mpetrov/trialgate/internal/corpus"
	"github.com/mpetrov/trialgate/internal/model"
)

// DefaultTopK is the number of candidates returned when the query does not
// say otherwise.
const DefaultTopK = 5

// Similarity weights. Weights for fields the caller omitted are excluded
// from the denominator rather than scored as zero.
const (
	weightDrugClass = 0.40
	weightArea      = 0.30
	weightPhase     = 0.20
	weightAge       = 0.10
)

// Query holds the attributes of a similarity search. DrugClass is required;
// an empty value is treated as the unknown class rather than rejected, so
// the search still runs and simply returns poor matches.
type Query struct {
	DrugClass       string
	TherapeuticArea string
	Phase           string
	PopulationAge   string
	TopK            int
}

// Searcher runs multi-stage similarity search over the corpus store.
type Searcher struct {
	store *corpus.Store
}

// NewSearcher creates a searcher over the given corpus store.
func NewSearcher(store *corpus.Store) *Searcher {
	return &Searcher{store: store}
}

// Search returns the top-K most similar historical trials for the query,
// sorted by similarity descending with ties broken by corpus order. It
// always returns a slice; an empty corpus yields an empty result, never an
// error.
func (s *Searcher) Search(q Query) []model.ScoredCandidate {
	idx := s.store.Current()

	topK := q.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	drugClass := q.DrugClass
	if strings.TrimSpace(drugClass) == "" {
		drugClass = "Unknown"
	}

	// Stage 1: candidate generation.
	positions := candidatePositions(idx, drugClass, q.TherapeuticArea, topK)

	// Stage 2: partial-credit scoring.
	scored := make([]model.ScoredCandidate, 0, len(positions))
	for _, pos := range positions {
		t := idx.At(pos)
		scored = append(scored, model.ScoredCandidate{
			TrialRecord:     t,
			SimilarityScore: similarity(t, drugClass, q.TherapeuticArea, q.Phase, q.PopulationAge),
		})
	}

	// Stage 3: stable sort keeps corpus order on ties, so results are
	// deterministic across runs.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].SimilarityScore > scored[j].SimilarityScore
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

// candidatePositions unions the exact drug-class bucket with every bucket
// whose class is a substring match either direction, then narrows by
// therapeutic area. When the narrowed set would drop below topK the
// pre-intersection set is used instead, so an over-restrictive area filter
// never starves the caller of available candidates.
func candidatePositions(idx *corpus.Index, drugClass, area string, topK int) []int {
	classNorm := corpus.Normalize(drugClass)

	set := make(map[int]struct{})
	for _, pos := range idx.ByDrugClass(classNorm) {
		set[pos] = struct{}{}
	}
	for _, key := range idx.DrugClassKeys() {
		if strings.Contains(key, classNorm) || strings.Contains(classNorm, key) {
			for _, pos := range idx.ByDrugClass(key) {
				set[pos] = struct{}{}
			}
		}
	}

	if area != "" {
		narrowed := make(map[int]struct{})
		for _, pos := range idx.ByTherapeuticArea(area) {
			if _, ok := set[pos]; ok {
				narrowed[pos] = struct{}{}
			}
		}
		if len(narrowed) >= topK {
			set = narrowed
		}
	}

	positions := make([]int, 0, len(set))
	for pos := range set {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	return positions
}

// similarity computes the weighted partial-credit similarity in [0,1],
// normalized by the weights applicable to this query.
func similarity(t model.TrialRecord, drugClass, area, phase, age string) float64 {
	var score, maxScore float64

	maxScore += weightDrugClass
	trialClass := corpus.Normalize(t.DrugClass)
	queryClass := corpus.Normalize(drugClass)
	switch {
	case trialClass == queryClass:
		score += weightDrugClass
	case strings.Contains(trialClass, queryClass) || strings.Contains(queryClass, trialClass):
		score += weightDrugClass / 2
	}

	if area != "" {
		maxScore += weightArea
		trialArea := corpus.Normalize(t.TherapeuticArea)
		queryArea := corpus.Normalize(area)
		switch {
		case trialArea == queryArea:
			score += weightArea
		case strings.Contains(trialArea, queryArea) || strings.Contains(queryArea, trialArea):
			score += weightArea / 2
		}
	}

	if phase != "" {
		maxScore += weightPhase
		switch {
		case t.Phase == phase:
			score += weightPhase
		case model.PhasesAdjacent(t.Phase, phase):
			score += weightPhase / 2
		}
	}

	if age != "" {
		maxScore += weightAge
		if t.PopulationAge != "" && ageRangesOverlap(t.PopulationAge, age) {
			score += weightAge
		}
	}

	if maxScore == 0 {
		return 0
	}
	return score / maxScore
}

var ageRangePattern = regexp.MustCompile(`(\d+)-(\d+)`)

// ageRangesOverlap parses both strings as "min-max" ranges and reports
// whether they numerically overlap. Unparseable ranges never overlap.
func ageRangesOverlap(a, b string) bool {
	aMin, aMax, aOK := parseAgeRange(a)
	bMin, bMax, bOK := parseAgeRange(b)
	if !aOK || !bOK {
		return false
	}
	return !(aMax < bMin || bMax < aMin)
}

func parseAgeRange(s string) (min, max int, ok bool) {
	m := ageRangePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	min, _ = strconv.Atoi(m[1])
	max, _ = strconv.Atoi(m[2])
	return min, max, true
}

// FilterQuery holds the flat filters for a corpus scan. Zero values mean
// "no filter"; Outcome "all" (or empty) passes every outcome.
type FilterQuery struct {
	DrugClass       string
	TherapeuticArea string
	Phase           string
	Outcome         string
	Limit           int
}

// Filter scans the corpus in order and returns records passing every
// supplied filter, up to the limit. Drug class matches by substring either
// direction, therapeutic area by substring, phase and outcome exactly.
func (s *Searcher) Filter(q FilterQuery) []model.TrialRecord {
	idx := s.store.Current()

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultTopK
	}

	results := make([]model.TrialRecord, 0, limit)
	for _, t := range idx.Records() {
		if q.DrugClass != "" {
			trialClass := corpus.Normalize(t.DrugClass)
			queryClass := corpus.Normalize(q.DrugClass)
			if !strings.Contains(trialClass, queryClass) && !strings.Contains(queryClass, trialClass) {
				continue
			}
		}
		if q.TherapeuticArea != "" {
			if !strings.Contains(corpus.Normalize(t.TherapeuticArea), corpus.Normalize(q.TherapeuticArea)) {
				continue
			}
		}
		if q.Phase != "" && t.Phase != q.Phase {
			continue
		}
		if q.Outcome != "" && q.Outcome != "all" {
			if corpus.Normalize(t.Outcome) != corpus.Normalize(q.Outcome) {
				continue
			}
		}

		results = append(results, t)
		if len(results) >= limit {
			break
		}
	}
	return results
}
