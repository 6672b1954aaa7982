// Package phone converts user-entered phone text into a dispatch-ready
// canonical form.
package phone

import "strings"

// countryCallingCode replaces the national trunk "0" prefix. The shop's
// customers are on Afghan networks.
const countryCallingCode = "+93"

// Normalize strips formatting from raw and returns a canonical number:
//
//   - input starting with "+" keeps the plus ahead of its digits
//   - a leading national trunk "0" becomes the country calling code
//   - more than ten digits without a plus are assumed international
//   - anything else is returned as bare digits
//
// Empty or whitespace-only input yields ""; callers must treat that as
// invalid.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	hasPlus := strings.HasPrefix(trimmed, "+")

	var b strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case hasPlus:
		// Interior plus signs were dropped above, not treated as separators.
		return "+" + digits
	case strings.HasPrefix(digits, "0"):
		return countryCallingCode + digits[1:]
	case len(digits) > 10:
		return "+" + digits
	default:
		return digits
	}
}
