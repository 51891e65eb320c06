package util

// SequenceMatcher scores candidates against one fixed query with the
// Ratcliff/Obershelp ratio 2*M/T, where M is the number of runes in matching
// blocks and T the combined length. The query side is indexed once so a
// whole catalog can be scanned without rebuilding it.
type SequenceMatcher struct {
	b   []rune
	b2j map[rune][]int
}

// Elements occurring in more than 1% of a query this long are treated as
// popular and skipped when seeding blocks.
const autoJunkMinLen = 200

func NewSequenceMatcher(query string) *SequenceMatcher {
	b := []rune(query)
	b2j := make(map[rune][]int)
	for i, r := range b {
		b2j[r] = append(b2j[r], i)
	}
	if n := len(b); n >= autoJunkMinLen {
		ntest := n/100 + 1
		for r, idxs := range b2j {
			if len(idxs) > ntest {
				delete(b2j, r)
			}
		}
	}
	return &SequenceMatcher{b: b, b2j: b2j}
}

// Ratio returns the similarity in [0,1] between candidate and the query.
func (m *SequenceMatcher) Ratio(candidate string) float64 {
	a := []rune(candidate)
	total := len(a) + len(m.b)
	if total == 0 {
		return 1
	}
	return 2 * float64(m.matchingRunes(a)) / float64(total)
}

func (m *SequenceMatcher) matchingRunes(a []rune) int {
	type span struct{ alo, ahi, blo, bhi int }

	matched := 0
	queue := []span{{0, len(a), 0, len(m.b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := m.longestMatch(a, s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		matched += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return matched
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] inside the
// given bounds; ties go to the earliest i, then the earliest j.
func (m *SequenceMatcher) longestMatch(a []rune, alo, ahi, blo, bhi int) (int, int, int) {
	besti, bestj, bestsize := alo, blo, 0

	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		newj2len := map[int]int{}
		for _, j := range m.b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}

	// popular elements were left out of b2j; grow the block across them
	for besti > alo && bestj > blo && a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < ahi && bestj+bestsize < bhi && a[besti+bestsize] == m.b[bestj+bestsize] {
		bestsize++
	}
	return besti, bestj, bestsize
}

// SequenceRatio is a one-off convenience around SequenceMatcher.
func SequenceRatio(candidate, query string) float64 {
	return NewSequenceMatcher(query).Ratio(candidate)
}
