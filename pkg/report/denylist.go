package report

import "strings"

// DefaultDeniedWords are rejected anywhere in an ad-hoc query.
var DefaultDeniedWords = []string{"delete", "insert", "update", "drop"}

// Denylist is a best-effort textual filter for ad-hoc queries. It matches
// substrings, so it over-blocks ("updated_at") and under-blocks (any
// destructive statement not listed). It is not a security control.
type Denylist struct {
	words []string
}

// NewDenylist creates a denylist with the default words plus extras.
func NewDenylist(extraWords []string) *Denylist {
	words := make([]string, 0, len(DefaultDeniedWords)+len(extraWords))
	words = append(words, DefaultDeniedWords...)
	for _, w := range extraWords {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}

	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return &Denylist{words: words}
}

// Blocked returns the first denied word found in query, case-insensitively.
func (d *Denylist) Blocked(query string) (string, bool) {
	lower := strings.ToLower(query)
	for _, w := range d.words {
		if strings.Contains(lower, w) {
			return w, true
		}
	}
	return "", false
}
