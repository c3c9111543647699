package sanitizer

import "strings"

// NormalizeName collapses runs of whitespace into one space and trims.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
