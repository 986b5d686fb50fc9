package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJSON(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"http_addr":           ":9000",
		"secret_key":          "json-secret",
		"token_lifetime":      "2h",
		"query_timeout":       5000000000,
		"users":               map[string]string{"alice": "wonder"},
		"embedding_dimension": 3,
		"index_backend":       "memory",
		"collection":          "kb",
		"seed_source":         "docs.json",
		"recreate_collection": true,
	})

	t.Run("overlays present fields", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJSON(cfg, []string{"-c", path}))

		assert.Equal(t, ":9000", cfg.HTTPAddr)
		assert.Equal(t, "json-secret", cfg.SecretKey)
		assert.Equal(t, 2*time.Hour, cfg.TokenLifetime)
		assert.Equal(t, 5*time.Second, cfg.QueryTimeout)
		assert.Equal(t, map[string]string{"alice": "wonder"}, cfg.Users)
		assert.Equal(t, 3, cfg.EmbeddingDimension)
		assert.Equal(t, IndexMemory, cfg.IndexBackend)
		assert.Equal(t, "kb", cfg.Collection)
		assert.Equal(t, "docs.json", cfg.SeedSource)
		assert.True(t, cfg.RecreateCollection)

		// untouched fields keep defaults
		assert.Equal(t, ":50051", cfg.GRPCAddr)
		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	})

	t.Run("no config flag leaves config alone", func(t *testing.T) {
		cfg := &Config{HTTPAddr: "defaults:1234"}
		require.NoError(t, parseJSON(cfg, []string{"-a", ":1"}))
		assert.Equal(t, "defaults:1234", cfg.HTTPAddr)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not json`), 0o600))
		assert.Error(t, parseJSON(&Config{}, []string{"-config", bad}))
	})

	t.Run("missing file", func(t *testing.T) {
		assert.Error(t, parseJSON(&Config{}, []string{"-c", filepath.Join(t.TempDir(), "nope.json")}))
	})

	t.Run("flags win over json", func(t *testing.T) {
		cfg, err := load([]string{"-c", path, "-a", ":7000"}, noEnv)
		require.NoError(t, err)
		assert.Equal(t, ":7000", cfg.HTTPAddr)
		assert.Equal(t, "json-secret", cfg.SecretKey)
	})

	t.Run("sub-unit durations survive the flag layer", func(t *testing.T) {
		short := writeTempJSON(t, map[string]any{
			"token_lifetime": "90s",
			"query_timeout":  "1500ms",
		})
		cfg, err := load([]string{"-c", short}, noEnv)
		require.NoError(t, err)
		assert.Equal(t, 90*time.Second, cfg.TokenLifetime)
		assert.Equal(t, 1500*time.Millisecond, cfg.QueryTimeout)

		below := writeTempJSON(t, map[string]any{"token_lifetime": "30s"})
		cfg, err = load([]string{"-c", below}, noEnv)
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, cfg.TokenLifetime)
	})

	t.Run("explicit duration flags beat json", func(t *testing.T) {
		short := writeTempJSON(t, map[string]any{"token_lifetime": "90s", "query_timeout": "1500ms"})
		cfg, err := load([]string{"-c", short, "-t", "5", "-q", "2"}, noEnv)
		require.NoError(t, err)
		assert.Equal(t, 5*time.Minute, cfg.TokenLifetime)
		assert.Equal(t, 2*time.Second, cfg.QueryTimeout)
	})
}
