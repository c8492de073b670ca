package labmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) ScanEvent {
	t.Helper()
	ev, err := DecodeEvent([]byte(raw))
	require.NoError(t, err)
	return ev
}

func TestSummarizeEmptyLog(t *testing.T) {
	sum := Summarize(nil)
	assert.Zero(t, sum.ProfessorsFound)
	assert.Zero(t, sum.PagesScanned)
	assert.Equal(t, "Initializing AI Agent...", sum.Status)
	assert.Equal(t, KindStatus, sum.Current.Kind())
}

func TestSummarizeCountsAndCurrent(t *testing.T) {
	events := []ScanEvent{
		decode(t, `{"type":"scanning","url":"https://www.cs.example.edu/people/faculty/all-members"}`),
		decode(t, `{"type":"scanning","url":"https://cs.example.edu/a"}`),
		decode(t, `{"type":"scanning","url":"https://cs.example.edu/b"}`),
		decode(t, `{"type":"found_card","message":"Found Ada","name":"Ada","department":"CS"}`),
	}
	prev := 0
	for i := range events {
		sum := Summarize(events[:i+1])
		assert.GreaterOrEqual(t, sum.PagesScanned+sum.ProfessorsFound, prev, "counters never decrease")
		prev = sum.PagesScanned + sum.ProfessorsFound
	}

	first := Summarize(events[:1])
	assert.Equal(t, "Scanning: cs.example.edu/people/faculty/...", first.Status)
	assert.Equal(t, "www.cs.example.edu/people/faculty/all-members", first.ScanningURL)

	sum := Summarize(events)
	assert.Equal(t, 1, sum.ProfessorsFound)
	assert.Equal(t, 3, sum.PagesScanned)
	assert.Equal(t, "Found Ada", sum.Status)
	assert.Empty(t, sum.ScanningURL)
}

func TestStatusLine(t *testing.T) {
	assert.Equal(t, "Scan Complete!", StatusLine(decode(t, `{"type":"complete","message":"whatever"}`)))
	assert.Equal(t, "Error encountered", StatusLine(decode(t, `{"type":"error"}`)))
	assert.Equal(t, "boom", StatusLine(decode(t, `{"type":"error","message":"boom"}`)))
	assert.Equal(t, "Processing...", StatusLine(decode(t, `{"type":"info"}`)))
	assert.Equal(t, "Scanning: a.edu", StatusLine(decode(t, `{"type":"scanning","url":"http://a.edu"}`)))
}

func TestFeedClassification(t *testing.T) {
	events := []ScanEvent{
		decode(t, `{"type":"status","message":"Starting"}`),
		decode(t, `{"type":"scanning","url":"https://a.edu"}`),
		decode(t, `{"type":"found_card","name":"Ada","title":"Professor","department":"CS"}`),
		decode(t, `{"type":"error","message":"HTTP 403 on /secret"}`),
		decode(t, `{"type":"error","message":"timeout"}`),
		decode(t, `{"type":"info","message":"Note","details":"more"}`),
		decode(t, `{"type":"discovery","count":12}`),
		decode(t, `{"type":"investigating","name":"Bob","message":"reading","progress":"3/10"}`),
		decode(t, `{"type":"weird","message":"???"}`),
		decode(t, `{"type":"end"}`),
	}
	rows := Feed(events)
	require.Len(t, rows, 7)

	assert.Equal(t, FeedRow{Style: RowStatus, Title: "Starting"}, rows[0])
	assert.Equal(t, FeedRow{Style: RowFoundCard, Title: "Ada", Detail: "Professor · CS"}, rows[1])
	assert.Equal(t, FeedRow{Style: RowBlocked, Title: "Access Restricted (Skipped)"}, rows[2])
	assert.Equal(t, FeedRow{Style: RowError, Title: "Issue: timeout"}, rows[3])
	assert.Equal(t, FeedRow{Style: RowInfo, Title: "Note", Detail: "more"}, rows[4])
	assert.Equal(t, "Discovered 12 candidates", rows[5].Title)
	assert.Equal(t, FeedRow{Style: RowInvestigating, Title: "Bob", Detail: "reading", Badge: "3/10"}, rows[6])
}

func TestDecodeEvent(t *testing.T) {
	ev := decode(t, `{"type":"scanning","message":"m","url":"u","depth":2,"pages_crawled":5,"found":1}`)
	sc, ok := ev.(ScanningEvent)
	require.True(t, ok)
	assert.Equal(t, ScanningEvent{eventBase: eventBase{Message: "m"}, URL: "u", Depth: 2, PagesCrawled: 5, Found: 1}, sc)

	unknown := decode(t, `{"type":"weird"}`)
	assert.Equal(t, EventKind("weird"), unknown.Kind())
	assert.False(t, IsTerminal(unknown))
	assert.True(t, IsTerminal(decode(t, `{"type":"end"}`)))

	_, err := DecodeEvent([]byte(`nope`))
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}
