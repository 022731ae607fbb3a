package util

import "strings"

func StringSliceContains(slice []string, needle string) bool {
	for _, s := range slice {
		if s == needle {
			return true
		}
	}

	return false
}

// NormalizeSymbols upper-cases, trims and de-duplicates the symbols, keeping the first occurrence order.
func NormalizeSymbols(symbols []string) []string {
	var out []string
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || StringSliceContains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// MaskKey hides everything but the first characters of a secret.
func MaskKey(key string) string {
	if len(key) <= 5 {
		return strings.Repeat("*", len(key))
	}
	return key[0:5] + strings.Repeat("*", len(key)-5)
}
