package schemas

import "strings"

// NormalizePhone strips everything from a phone-like string except digits and
// a leading plus. An empty result becomes nil. The function is idempotent.
func NormalizePhone(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	hasPlus := strings.HasPrefix(trimmed, "+")

	var b strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return nil
	}
	if hasPlus {
		digits = "+" + digits
	}
	return &digits
}
