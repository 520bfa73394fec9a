// Package config loads runtime settings from defaults, an optional YAML
// file, a .env file and KYC_* environment variables, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/joelkehle/kyc-screener/internal/llm"
	"github.com/joelkehle/kyc-screener/internal/store"
)

const EnvPrefix = "KYC"

type Config struct {
	Provider   string           `mapstructure:"provider"`
	Model      string           `mapstructure:"model"`
	APIKey     string           `mapstructure:"api_key"`
	Generation GenerationConfig `mapstructure:"generation"`
	Server     ServerConfig     `mapstructure:"server"`
	Store      StoreConfig      `mapstructure:"store"`
	Export     ExportConfig     `mapstructure:"export"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

type GenerationConfig struct {
	MaxAttempts    int           `mapstructure:"max_attempts"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	// Concurrency of 0 runs every section at once.
	Concurrency int `mapstructure:"concurrency"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type ExportConfig struct {
	ChromePath string        `mapstructure:"chrome_path"`
	PDFTimeout time.Duration `mapstructure:"pdf_timeout"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", llm.ProviderGemini)
	v.SetDefault("model", "")
	v.SetDefault("api_key", "")
	v.SetDefault("generation.max_attempts", 3)
	v.SetDefault("generation.retry_base_delay", time.Second)
	v.SetDefault("generation.concurrency", 0)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("store.backend", store.BackendSQLite)
	// An empty path resolves per backend after loading.
	v.SetDefault("store.path", "")
	v.SetDefault("export.chrome_path", "")
	v.SetDefault("export.pdf_timeout", 45*time.Second)
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.service_name", "kyc-screener")
}

// Load reads configuration. configPath may be empty; a missing .env file is
// not an error.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyProviderKeys()
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultStorePath(cfg.Store.Backend)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyProviderKeys falls back to the provider's conventional variables
// when no KYC_API_KEY is set.
func (c *Config) applyProviderKeys() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.APIKey != "" {
		return
	}
	var names []string
	switch c.Provider {
	case llm.ProviderAnthropic:
		names = []string{"ANTHROPIC_API_KEY"}
	default:
		names = []string{"GEMINI_API_KEY", "API_KEY"}
	}
	for _, n := range names {
		if v := strings.TrimSpace(os.Getenv(n)); v != "" {
			c.APIKey = v
			return
		}
	}
}

func (c *Config) Validate() error {
	switch c.Provider {
	case llm.ProviderGemini, llm.ProviderAnthropic:
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}
	if c.Generation.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be at least 1, got %d", c.Generation.MaxAttempts)
	}
	if c.Generation.RetryBaseDelay <= 0 {
		return fmt.Errorf("generation.retry_base_delay must be positive, got %s", c.Generation.RetryBaseDelay)
	}
	if c.Generation.Concurrency < 0 {
		return fmt.Errorf("generation.concurrency must not be negative")
	}
	switch c.Store.Backend {
	case store.BackendSQLite, store.BackendFile:
	default:
		return fmt.Errorf("unsupported store.backend %q", c.Store.Backend)
	}
	return nil
}

// LLMOptions is the caller configuration derived from c.
func (c *Config) LLMOptions() llm.Options {
	return llm.Options{Provider: c.Provider, Model: c.Model, APIKey: c.APIKey}
}

// defaultStorePath names the store after its backend: kyc-screener.db for
// SQLite, kyc-screener.json for the state file.
func defaultStorePath(backend string) string {
	name := "kyc-screener.db"
	if backend == store.BackendFile {
		name = "kyc-screener.json"
	}
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return name
	}
	return filepath.Join(dir, "kyc-screener", name)
}
