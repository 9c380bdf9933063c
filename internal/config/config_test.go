package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, env := range []string{"PORT", "GIN_MODE", "CORS_ORIGIN", "AI_SERVICE_URL",
		"AI_ANALYZE_TIMEOUT_SECONDS", "AI_BATCH_TIMEOUT_SECONDS", "AI_PROBE_TIMEOUT_SECONDS", "HISTORY_CAPACITY"} {
		t.Setenv(env, "")
	}

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, DefaultAIServiceURL, cfg.AIService.URL)
	assert.Equal(t, DefaultHistoryCapacity, cfg.History.Capacity)
	assert.Equal(t, 30*time.Second, cfg.AnalyzeTimeout())
	assert.Equal(t, 60*time.Second, cfg.BatchTimeout())
	assert.Equal(t, 5*time.Second, cfg.ProbeTimeout())
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "7000"
aiService:
  url: http://file-host:9000
  probeTimeoutSeconds: 2
history:
  capacity: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("PORT", "")
	t.Setenv("AI_SERVICE_URL", "http://env-host:8000")
	t.Setenv("AI_PROBE_TIMEOUT_SECONDS", "")
	t.Setenv("HISTORY_CAPACITY", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "http://env-host:8000", cfg.AIService.URL)
	assert.Equal(t, 2*time.Second, cfg.ProbeTimeout())
	assert.Equal(t, 10, cfg.History.Capacity)
}

func TestLoadClampsHistoryCapacity(t *testing.T) {
	tests := []struct {
		env      string
		expected int
	}{
		{env: "500", expected: DefaultHistoryCapacity},
		{env: "101", expected: DefaultHistoryCapacity},
		{env: "100", expected: 100},
		{env: "1", expected: 1},
		{env: "-4", expected: DefaultHistoryCapacity},
	}

	for _, test := range tests {
		t.Setenv("HISTORY_CAPACITY", test.env)

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, test.expected, cfg.History.Capacity, "HISTORY_CAPACITY=%s", test.env)
	}
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Server.Port)
}

func TestLoadInvalidEnv(t *testing.T) {
	t.Setenv("AI_BATCH_TIMEOUT_SECONDS", "soon")

	_, err := Load("")
	assert.Error(t, err)
}
