package app

import "strings"

func truncateText(text string, max int) string {
	if len([]rune(text)) <= max {
		return text
	}
	runes := []rune(text)
	cut := strings.TrimRight(string(runes[:max]), " ")
	return cut + "…"
}
