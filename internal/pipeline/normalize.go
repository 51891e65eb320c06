package pipeline

import "strings"

// SplitFragments cuts raw order text at commas. There is no escaping, so a
// literal comma always starts a new fragment. Blank fragments are dropped.
func SplitFragments(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
