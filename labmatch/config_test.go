package labmatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	t.Setenv("LABMATCH_API_URL", "")
	t.Setenv("EXPO_PUBLIC_API_URL", "")
	t.Setenv("LABMATCH_USER_ID", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	assert.Equal(t, DefaultObjective, cfg.ObjectiveFallback)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 2*time.Second, cfg.HealthInterval())
	assert.Equal(t, time.Second, cfg.StreamGrace())
	assert.False(t, cfg.RecordSwipes)
}

func TestLoadConfigYAMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labmatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: https://api.example.com/\nrecord_swipes: true\nstream_grace_millis: 250\n"), 0o644))

	t.Setenv("LABMATCH_API_URL", "")
	t.Setenv("EXPO_PUBLIC_API_URL", "")
	t.Setenv("LABMATCH_USER_ID", "")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIURL)
	assert.True(t, cfg.RecordSwipes)
	assert.Equal(t, 250*time.Millisecond, cfg.StreamGrace())

	t.Setenv("EXPO_PUBLIC_API_URL", "http://10.0.0.2:8000")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.2:8000", cfg.APIURL)

	t.Setenv("LABMATCH_API_URL", "http://primary:9000")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://primary:9000", cfg.APIURL)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("EXPO_PUBLIC_API_URL", "")
	t.Setenv("LABMATCH_USER_ID", "")
	t.Setenv("LABMATCH_API_URL", "ftp://nope")
	_, err := LoadConfig(filepath.Join(t.TempDir(), "config.json"))
	assert.Error(t, err)

	t.Setenv("LABMATCH_API_URL", "")
	t.Setenv("LABMATCH_USER_ID", "not-a-uuid")
	_, err = LoadConfig(filepath.Join(t.TempDir(), "config.json"))
	assert.Error(t, err)
}

func TestSaveConfigRoundTripJSON(t *testing.T) {
	t.Setenv("LABMATCH_API_URL", "")
	t.Setenv("EXPO_PUBLIC_API_URL", "")
	t.Setenv("LABMATCH_USER_ID", "")
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Config{APIURL: "https://api.example.com"}
	assert.True(t, cfg.EnsureUserID())
	assert.False(t, cfg.EnsureUserID())
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.UserID, loaded.UserID)
	assert.Equal(t, float32(480), loaded.Window.Width)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
