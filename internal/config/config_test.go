package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelkehle/kyc-screener/internal/llm"
	"github.com/joelkehle/kyc-screener/internal/store"
)

func clearKeys(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "API_KEY", "ANTHROPIC_API_KEY", "KYC_API_KEY", "KYC_PROVIDER", "KYC_STORE_BACKEND", "KYC_STORE_PATH"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearKeys(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, llm.ProviderGemini, cfg.Provider)
	assert.Equal(t, 3, cfg.Generation.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Generation.RetryBaseDelay)
	assert.Equal(t, 0, cfg.Generation.Concurrency)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, store.BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "kyc-screener.db", filepath.Base(cfg.Store.Path))
	assert.Equal(t, 45*time.Second, cfg.Export.PDFTimeout)
	assert.Equal(t, "kyc-screener", cfg.Telemetry.ServiceName)
	assert.Empty(t, cfg.APIKey)
}

func TestLoadFileAndEnv(t *testing.T) {
	clearKeys(t)
	path := filepath.Join(t.TempDir(), "kyc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider: gemini
model: gemini-2.5-flash
generation:
  max_attempts: 4
  retry_base_delay: 250ms
store:
  backend: file
  path: /tmp/kyc.json
`), 0o644))
	t.Setenv("KYC_GENERATION_CONCURRENCY", "4")
	t.Setenv("KYC_SERVER_ADDR", "127.0.0.1:9090")
	t.Setenv("GEMINI_API_KEY", "gem-key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.Equal(t, 4, cfg.Generation.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Generation.RetryBaseDelay)
	assert.Equal(t, 4, cfg.Generation.Concurrency)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, store.BackendFile, cfg.Store.Backend)
	assert.Equal(t, "gem-key", cfg.APIKey)
	assert.Equal(t, llm.Options{Provider: "gemini", Model: "gemini-2.5-flash", APIKey: "gem-key"}, cfg.LLMOptions())
}

func TestProviderKeyFallback(t *testing.T) {
	clearKeys(t)
	t.Setenv("KYC_PROVIDER", "Anthropic")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "ant-key", cfg.APIKey)

	t.Setenv("KYC_API_KEY", "explicit")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.APIKey)
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearKeys(t)
	cases := map[string]string{
		"KYC_PROVIDER":                    "openai",
		"KYC_GENERATION_MAX_ATTEMPTS":     "0",
		"KYC_STORE_BACKEND":               "redis",
		"KYC_GENERATION_CONCURRENCY":      "-1",
		"KYC_GENERATION_RETRY_BASE_DELAY": "0s",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, v)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestDefaultStorePathFollowsBackend(t *testing.T) {
	clearKeys(t)
	t.Setenv("KYC_STORE_BACKEND", store.BackendFile)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "kyc-screener.json", filepath.Base(cfg.Store.Path))

	t.Setenv("KYC_STORE_PATH", "/tmp/prefs.json")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/prefs.json", cfg.Store.Path)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
