package pipeline

import (
	"uglgen/internal"
	"uglgen/internal/catalog"
	"uglgen/internal/util"
)

// Matcher scans the whole catalog for every fragment. At a few thousand
// entries this linear scan is the dominant cost of a request.
type Matcher struct {
	threshold float64
	index     *catalog.Index
}

func NewMatcher(index *catalog.Index, threshold float64) *Matcher {
	return &Matcher{threshold: threshold, index: index}
}

// Match returns the best-scoring entry; equal scores keep the earlier entry.
func (m *Matcher) Match(fragment string) internal.MatchResult {
	query := util.NewSequenceMatcher(util.Fold(fragment))

	best, bestScore, runnerUp := -1, -1.0, 0.0
	for i, desc := range m.index.FoldedByOffset {
		score := query.Ratio(desc)
		if score > bestScore {
			if best >= 0 {
				runnerUp = bestScore
			}
			best, bestScore = i, score
		} else if score > runnerUp {
			runnerUp = score
		}
	}
	if best < 0 {
		return internal.MatchResult{}
	}

	entry := m.index.Entries[best]
	return internal.MatchResult{
		Entry:    &entry,
		Score:    bestScore,
		RunnerUp: runnerUp,
		Matched:  bestScore >= m.threshold,
	}
}
