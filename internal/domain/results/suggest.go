package results

import (
	"strings"

	"github.com/lims/lims/internal/domain/catalog"
)

// filterSuggestions returns autocomplete candidates for a text parameter. A
// parameter with its own suggestion list searches only that list; otherwise
// the shared pool is searched. Matching is a case-insensitive substring test
// and an empty query returns every candidate.
func filterSuggestions(own []catalog.Suggestion, pool []*catalog.GlobalSuggestion, query string) []string {
	q := strings.ToLower(query)
	var out []string
	if len(own) > 0 {
		for _, s := range own {
			if q == "" || strings.Contains(strings.ToLower(s.Description), q) {
				out = append(out, s.Description)
			}
		}
		return out
	}
	for _, s := range pool {
		if q == "" || strings.Contains(strings.ToLower(s.Description), q) {
			out = append(out, s.Description)
		}
	}
	return out
}
