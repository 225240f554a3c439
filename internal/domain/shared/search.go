package shared

import (
	"strings"

	"golang.org/x/text/cases"
)

// ContainsFold reports whether term occurs in s, ignoring case.
// Uses Unicode case folding so non-ASCII names (Cyrillic, Greek, ...) match.
// An empty term matches everything.
func ContainsFold(s, term string) bool {
	if term == "" {
		return true
	}
	folder := cases.Fold()
	return strings.Contains(folder.String(s), folder.String(term))
}
