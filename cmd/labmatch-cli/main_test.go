package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/labmatch/internal/apitest"
	"yashubustudio/labmatch/labmatch"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig(url string) labmatch.Config {
	cfg := labmatch.Config{APIURL: url, UserID: "2f1c6a3e-8d55-4c44-9a0b-6d7b1a1e0c11"}
	cfg.ApplyDefaults()
	return cfg
}

func TestScanCollectsCards(t *testing.T) {
	b := &apitest.Backend{
		Stream: []string{
			apitest.Event(map[string]any{"type": "scanning", "url": "https://cs.example.edu/faculty"}),
			apitest.Event(map[string]any{"type": "found_card", "name": "Ada Lovelace", "department": "CS"}),
			apitest.Event(map[string]any{"type": "complete", "message": "Done"}),
		},
		Cards: []labmatch.Professor{{ID: "p1", Name: "Ada Lovelace", MatchScore: apitest.Score(0.87)}},
	}
	srv := apitest.New(t, b)
	cfg := testConfig(srv.URL)
	var out lockedBuffer
	logger := log.New(&out, "", 0)

	st, err := scan(context.Background(), labmatch.NewClient(srv.URL), cfg, "cs.example.edu/faculty", "robotics", logger)
	require.NoError(t, err)

	assert.Equal(t, labmatch.StageCards, st.Stage)
	require.Len(t, st.Cards, 1)
	assert.Equal(t, "p1", st.Cards[0].ID)
	assert.Equal(t, 1, st.Summary().PagesScanned)
	assert.Contains(t, out.String(), "Ada Lovelace - CS")
	assert.Contains(t, out.String(), "Done")
}

func TestScanNoResults(t *testing.T) {
	b := &apitest.Backend{
		Stream:  []string{apitest.Event(map[string]any{"type": "complete", "message": "Done"})},
		Session: labmatch.Session{Status: labmatch.StatusBlocked, BlockedReason: "robots.txt disallows crawling"},
	}
	srv := apitest.New(t, b)

	st, err := scan(context.Background(), labmatch.NewClient(srv.URL), testConfig(srv.URL), "cs.example.edu", "", log.New(&lockedBuffer{}, "", 0))
	require.NoError(t, err)

	assert.Equal(t, labmatch.StageNoResults, st.Stage)
	assert.Empty(t, st.Cards)
	assert.Equal(t, "robots.txt disallows crawling", st.Notice)
}

func TestScanCreateFailure(t *testing.T) {
	srv := apitest.New(t, &apitest.Backend{CreateStatus: http.StatusInternalServerError})

	_, err := scan(context.Background(), labmatch.NewClient(srv.URL), testConfig(srv.URL), "cs.example.edu", "", log.New(&lockedBuffer{}, "", 0))
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, labmatch.StatusCode(err))
}

func TestCheckHealthFlag(t *testing.T) {
	healthy := apitest.New(t, &apitest.Backend{})
	assert.NoError(t, checkHealth(context.Background(), labmatch.NewClient(healthy.URL), testConfig(healthy.URL).RequestTimeout()))

	down := apitest.New(t, &apitest.Backend{HealthStatus: http.StatusServiceUnavailable})
	err := checkHealth(context.Background(), labmatch.NewClient(down.URL), testConfig(down.URL).RequestTimeout())
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(labmatch.HealthSupabaseDown))
}

func TestWriteProfessorCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	cards := []labmatch.Professor{
		{ID: "p1", Name: "Ada Lovelace", Title: "Professor", PrimaryURL: "https://example.edu/ada", Keywords: []string{"Robotics", "robotics", "Vision"}, MatchScore: apitest.Score(0.87)},
		{ID: "p2"},
	}

	require.NoError(t, writeProfessorCSV(path, cards))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "match", rows[0][5])
	assert.Equal(t, "Ada Lovelace", rows[1][1])
	assert.Equal(t, "87", rows[1][5])
	assert.Equal(t, "Unknown Professor", rows[2][1])
	assert.Equal(t, "", rows[2][5])
}

func TestResolveOutputPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	path, err := resolveOutputPath("", dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "professors_"))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	explicit := filepath.Join(t.TempDir(), "a", "b.csv")
	path, err = resolveOutputPath(explicit, "ignored")
	require.NoError(t, err)
	assert.Equal(t, explicit, path)
}

func TestFormatRow(t *testing.T) {
	assert.Equal(t, "Ada Lovelace - reading CV [3/10]", formatRow(labmatch.FeedRow{Title: "Ada Lovelace", Detail: "reading CV", Badge: "3/10"}))
	assert.Equal(t, "Done", formatRow(labmatch.FeedRow{Title: "Done"}))
}

func TestRunInitConfigWritesConfig(t *testing.T) {
	t.Setenv("LABMATCH_API_URL", "")
	t.Setenv("EXPO_PUBLIC_API_URL", "")
	t.Setenv("LABMATCH_USER_ID", "")
	path := filepath.Join(t.TempDir(), "config.json")

	require.NoError(t, run(cliOptions{configPath: path, apiURL: "http://backend.test:9000", initConfig: true}))

	cfg, err := labmatch.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://backend.test:9000", cfg.APIURL)
	assert.NotEmpty(t, cfg.UserID)
}
