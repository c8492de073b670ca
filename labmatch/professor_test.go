package labmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func score(v float64) *float64 { return &v }

func TestMatchPercent(t *testing.T) {
	assert.Equal(t, 87, MatchPercent(0.87))
	assert.Equal(t, 87, MatchPercent(87))
	assert.Equal(t, 150, MatchPercent(150))
	assert.Equal(t, 100, MatchPercent(1))
	assert.Equal(t, 0, MatchPercent(0))

	assert.Equal(t, "87%", Professor{MatchScore: score(0.87)}.MatchLabel())
	assert.Equal(t, 0, Professor{}.MatchPercent())
}

func TestProfessorFallbacks(t *testing.T) {
	p := Professor{}
	assert.Equal(t, "Unknown Professor", p.DisplayName())
	assert.Equal(t, "Professor", p.DisplayTitle())
	assert.Equal(t, "?", p.Initial())
	assert.Empty(t, p.DisplayLinks())

	p = Professor{Name: "  émile Borel", Title: "Lecturer", PrimaryURL: "https://x.edu/borel"}
	assert.Equal(t, "émile Borel", p.DisplayName())
	assert.Equal(t, "É", p.Initial())
	assert.Equal(t, []Link{{Label: "Visit Website", URL: "https://x.edu/borel"}}, p.DisplayLinks())
}

func TestDisplayLinksSkipsEmpty(t *testing.T) {
	p := Professor{
		PrimaryURL: "https://x.edu",
		Links: []Link{
			{Label: "Lab", URL: "https://lab.x.edu"},
			{Label: "Broken", URL: " "},
			{URL: "https://scholar.example.com"},
		},
	}
	assert.Equal(t, []Link{
		{Label: "Lab", URL: "https://lab.x.edu"},
		{Label: "Website", URL: "https://scholar.example.com"},
	}, p.DisplayLinks())
}

func TestCleanSummaryStripsMarkup(t *testing.T) {
	p := Professor{Summary: "<p>Works on <b>robot</b>\n learning &amp; control.</p><script>x()</script>"}
	assert.Equal(t, "Works on robot learning & control.", p.CleanSummary())
}

func TestKeywordLine(t *testing.T) {
	p := Professor{Keywords: []string{"ML", "ml", "Vision", " ", "Robotics", "NLP", "HCI", "Systems"}}
	assert.Equal(t, "ML  •  Vision  •  Robotics  •  NLP  •  HCI", p.KeywordLine())
	assert.Equal(t, []string{"ML", "Vision"}, p.TopKeywords(2))
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://cs.example.edu", NormalizeURL("  cs.example.edu "))
	assert.Equal(t, "http://a.edu/x", NormalizeURL("http://a.edu/x"))
	assert.Equal(t, "https://a.edu", NormalizeURL("ｈｔｔｐｓ://a.edu"))
	assert.Empty(t, NormalizeURL("   "))
}
