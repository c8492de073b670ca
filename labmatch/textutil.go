package labmatch

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText performs Unicode normalization and collapses whitespace.
func NormalizeText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeURL cleans a pasted department URL. Full-width characters from
// IME input are folded and a missing scheme defaults to https.
func NormalizeURL(raw string) string {
	s := NormalizeText(raw)
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, " ", "")
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s = "https://" + s
	}
	return s
}

func uniqueNormalized(labels []string) []string {
	seen := make(map[string]struct{})
	res := make([]string, 0, len(labels))
	for _, lab := range labels {
		clean := NormalizeText(lab)
		if clean == "" {
			continue
		}
		key := strings.ToLower(clean)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		res = append(res, clean)
	}
	return res
}

func truncateRunes(s string, max int, marker string) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + marker
}
