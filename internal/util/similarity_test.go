package util

import (
	"math"
	"strings"
	"testing"
)

func TestSequenceRatio(t *testing.T) {
	cases := []struct {
		candidate string
		query     string
		want      float64
	}{
		{candidate: "abcd", query: "bcde", want: 0.75},
		{candidate: "", query: "", want: 1},
		{candidate: "kupferrohr", query: "kupfer", want: 0.75},
		{candidate: "abc", query: "xyz", want: 0},
		{candidate: "viega sanpress bogen 90° 22 2316", query: "press bogen 22 90", want: 0.6122448979591837},
		{candidate: "viega sanpress kupferrohr 22x1 hartkupfer", query: "kupferrohr 22 8 meter", want: 0.5483870967741935},
	}

	for _, tc := range cases {
		got := SequenceRatio(tc.candidate, tc.query)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("ratio(%q, %q) = %v want %v", tc.candidate, tc.query, got, tc.want)
		}
	}
}

func TestSequenceMatcherReuse(t *testing.T) {
	m := NewSequenceMatcher("press bogen 22 90")
	first := m.Ratio("viega sanpress bogen 90° 22 2316")
	_ = m.Ratio("something else entirely")
	if second := m.Ratio("viega sanpress bogen 90° 22 2316"); second != first {
		t.Fatalf("matcher not reusable: %v vs %v", first, second)
	}
}

func TestSequenceRatioLongQuery(t *testing.T) {
	query := strings.Repeat("ab ", 80)
	got := SequenceRatio(query, query)
	if got != 1 {
		t.Fatalf("identical long strings should score 1, got %v", got)
	}
}
