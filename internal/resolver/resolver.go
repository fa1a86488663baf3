// Package resolver maps free-text names extracted from a transcript to
// stored leads. Speech-to-text introduces name variation ("Jan Kowalski" vs
// "Pan Jan Kowalski" vs a bare "Jan"), so matching is exact-first with a
// substring fallback. It is a heuristic: ambiguous substring matches take
// the first lead in store order.
package resolver

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"crm-voice-server/internal/model"
)

// Normalize lowercases a name, strips diacritics (NFD decomposition, drop
// combining marks) and trims surrounding whitespace. The stroked ł has no
// NFD decomposition, so it is folded to a plain l explicitly; names like
// "Michał" must match their ASCII spellings.
func Normalize(name string) string {
	decomposed := norm.NFD.String(strings.ToLower(name))
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
		case r == 'ł':
			b.WriteRune('l')
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Resolve finds the lead best matching query. Pass 1 is an exact match on
// normalized names; pass 2 accepts substring containment in either
// direction. A miss returns (0, false) - an expected outcome, not an error:
// callers fall back to a human-reviewable diagnostic instead.
func Resolve(query string, leads []model.Lead) (int64, bool) {
	q := Normalize(query)
	if q == "" {
		return 0, false
	}

	for _, lead := range leads {
		if Normalize(lead.Name) == q {
			return lead.ID, true
		}
	}
	for _, lead := range leads {
		n := Normalize(lead.Name)
		if n == "" {
			continue
		}
		if strings.Contains(n, q) || strings.Contains(q, n) {
			return lead.ID, true
		}
	}
	return 0, false
}
