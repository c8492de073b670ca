package labmatch

import (
	"fmt"
	"html"
	"math"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

const (
	unknownName   = "Unknown Professor"
	defaultTitle  = "Professor"
	websiteLabel  = "Visit Website"
	keywordJoiner = "  •  "
)

var summaryPolicy = bluemonday.StrictPolicy()

// MatchPercent converts a match score to a whole percentage. Scores arrive
// either on a 0-1 or a 0-100 scale; anything at or below 1 is treated as a
// fraction. Values above 100 are not clamped.
func MatchPercent(score float64) int {
	if score <= 1 {
		return int(math.Round(score * 100))
	}
	return int(math.Round(score))
}

// MatchPercent returns the normalized match percentage, 0 when unscored.
func (p Professor) MatchPercent() int {
	if p.MatchScore == nil {
		return 0
	}
	return MatchPercent(*p.MatchScore)
}

// MatchLabel formats the match percentage for display, e.g. "87%".
func (p Professor) MatchLabel() string {
	return fmt.Sprintf("%d%%", p.MatchPercent())
}

// DisplayName falls back to a placeholder for unnamed cards.
func (p Professor) DisplayName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return unknownName
}

// DisplayTitle falls back to "Professor".
func (p Professor) DisplayTitle() string {
	if t := strings.TrimSpace(p.Title); t != "" {
		return t
	}
	return defaultTitle
}

// Initial is the avatar letter.
func (p Professor) Initial() string {
	for _, r := range strings.TrimSpace(p.Name) {
		return string(unicode.ToUpper(r))
	}
	return "?"
}

// CleanSummary strips any markup the crawler copied from faculty pages.
func (p Professor) CleanSummary() string {
	if p.Summary == "" {
		return ""
	}
	text := html.UnescapeString(summaryPolicy.Sanitize(p.Summary))
	return strings.Join(strings.Fields(text), " ")
}

// TopKeywords returns at most n normalized, de-duplicated keywords.
func (p Professor) TopKeywords(n int) []string {
	kws := uniqueNormalized(p.Keywords)
	if n >= 0 && len(kws) > n {
		kws = kws[:n]
	}
	return kws
}

// KeywordLine joins the first five keywords for the card face.
func (p Professor) KeywordLine() string {
	return strings.Join(p.TopKeywords(5), keywordJoiner)
}

// DisplayLinks returns the links to render. Links without a URL are dropped;
// when there are no links the primary URL stands in.
func (p Professor) DisplayLinks() []Link {
	src := p.Links
	if len(src) == 0 && strings.TrimSpace(p.PrimaryURL) != "" {
		src = []Link{{Label: websiteLabel, URL: p.PrimaryURL}}
	}
	out := make([]Link, 0, len(src))
	for _, l := range src {
		u := strings.TrimSpace(l.URL)
		if u == "" {
			continue
		}
		label := strings.TrimSpace(l.Label)
		if label == "" {
			label = "Website"
		}
		out = append(out, Link{Label: label, URL: u})
	}
	return out
}
