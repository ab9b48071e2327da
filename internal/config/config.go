package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/everstacklabs/fitplan/internal/cost"
)

// Config holds all configuration for fitplan.
type Config struct {
	Provider   string           `mapstructure:"provider"`
	LogLevel   string           `mapstructure:"log_level"`
	OpenAI     ProviderConfig   `mapstructure:"openai"`
	Gemini     ProviderConfig   `mapstructure:"gemini"`
	Anthropic  ProviderConfig   `mapstructure:"anthropic"`
	Generation GenerationConfig `mapstructure:"generation"`
	Vision     VisionConfig     `mapstructure:"vision"`
	Pricing    cost.Pricing     `mapstructure:"pricing"`
	Server     ServerConfig     `mapstructure:"server"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

// ProviderConfig holds settings for one model provider.
type ProviderConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	TextModel   string  `mapstructure:"text_model"`
	VisionModel string  `mapstructure:"vision_model"`
	Timeout     string  `mapstructure:"timeout"`
	RateLimit   float64 `mapstructure:"rate_limit"`
}

// GenerationConfig tunes the plan generation call.
type GenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	StrictParse bool    `mapstructure:"strict_parse"`
}

// VisionConfig tunes photo analysis.
type VisionConfig struct {
	MaxPhotos    int    `mapstructure:"max_photos"`
	Delay        string `mapstructure:"delay"`
	CacheEnabled bool   `mapstructure:"cache_enabled"`
	CacheDir     string `mapstructure:"cache_dir"`
	CacheTTL     string `mapstructure:"cache_ttl"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string   `mapstructure:"addr"`
	RequestTimeout  string   `mapstructure:"request_timeout"`
	ShutdownTimeout string   `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64    `mapstructure:"max_body_bytes"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig holds per-client admission settings.
type RateLimitConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Requests int    `mapstructure:"requests"`
	Window   string `mapstructure:"window"`
}

// Load reads configuration from .env, file, environment, and defaults.
func Load(cfgFile string) (*Config, error) {
	// .env values never override variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()

	// Defaults
	v.SetDefault("provider", "openai")
	v.SetDefault("log_level", "info")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.text_model", "gpt-4o-mini")
	v.SetDefault("openai.vision_model", "gpt-4o")
	v.SetDefault("openai.timeout", "60s")
	v.SetDefault("gemini.text_model", "gemini-2.5-flash")
	v.SetDefault("gemini.vision_model", "gemini-2.5-flash")
	v.SetDefault("gemini.timeout", "60s")
	v.SetDefault("anthropic.base_url", "https://api.anthropic.com/v1")
	v.SetDefault("anthropic.text_model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.vision_model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.timeout", "60s")
	v.SetDefault("generation.temperature", 0.5)
	v.SetDefault("generation.max_tokens", 2500)
	v.SetDefault("generation.strict_parse", false)
	v.SetDefault("vision.max_photos", 3)
	v.SetDefault("vision.delay", "500ms")
	v.SetDefault("vision.cache_enabled", false)
	v.SetDefault("vision.cache_dir", defaultCacheDir())
	v.SetDefault("vision.cache_ttl", "24h")
	v.SetDefault("pricing.input_per_million", cost.DefaultInputPerMillion)
	v.SetDefault("pricing.output_per_million", cost.DefaultOutputPerMillion)
	v.SetDefault("pricing.vision_per_million", cost.DefaultVisionPerMillion)
	v.SetDefault("pricing.low_detail_image_tokens", cost.DefaultLowDetailImageTokens)
	v.SetDefault("server.addr", ":3001")
	v.SetDefault("server.request_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_body_bytes", 50<<20)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 10)
	v.SetDefault("rate_limit.window", "15m")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/fitplan")
	}

	// Environment variables
	v.SetEnvPrefix("FITPLAN")
	v.AutomaticEnv()

	// Bind specific env vars
	_ = v.BindEnv("provider", "FITPLAN_PROVIDER")
	_ = v.BindEnv("log_level", "FITPLAN_LOG_LEVEL")
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.base_url", "FITPLAN_OPENAI_BASE_URL")
	_ = v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("gemini.base_url", "FITPLAN_GEMINI_BASE_URL")
	_ = v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("anthropic.base_url", "FITPLAN_ANTHROPIC_BASE_URL")
	_ = v.BindEnv("generation.strict_parse", "FITPLAN_STRICT_PARSE")
	_ = v.BindEnv("vision.cache_enabled", "FITPLAN_VISION_CACHE")
	_ = v.BindEnv("server.addr", "FITPLAN_ADDR")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ActiveProvider returns the settings for the selected provider.
func (c *Config) ActiveProvider() ProviderConfig {
	switch c.Provider {
	case "gemini":
		return c.Gemini
	case "anthropic":
		return c.Anthropic
	default:
		return c.OpenAI
	}
}

// AIConfigured reports whether the selected provider has credentials. When
// false the generator serves demo plans.
func (c *Config) AIConfigured() bool {
	return c.ActiveProvider().APIKey != ""
}

// ProviderTimeout parses the active provider's timeout.
func (c *Config) ProviderTimeout() time.Duration {
	return durationOr(c.ActiveProvider().Timeout, 60*time.Second)
}

// VisionDelay parses the inter-photo delay. "0" or "off" disables it.
func (c *Config) VisionDelay() time.Duration {
	if c.Vision.Delay == "0" || c.Vision.Delay == "off" {
		return -1
	}
	return durationOr(c.Vision.Delay, 500*time.Millisecond)
}

// CacheTTL parses the vision cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return durationOr(c.Vision.CacheTTL, 24*time.Hour)
}

// RequestTimeout parses the per-request server timeout.
func (c *Config) RequestTimeout() time.Duration {
	return durationOr(c.Server.RequestTimeout, 120*time.Second)
}

// ShutdownTimeout parses the graceful shutdown budget.
func (c *Config) ShutdownTimeout() time.Duration {
	return durationOr(c.Server.ShutdownTimeout, 10*time.Second)
}

// RateLimitWindow parses the admission window.
func (c *Config) RateLimitWindow() time.Duration {
	return durationOr(c.RateLimit.Window, 15*time.Minute)
}

func (c *Config) validate() error {
	switch c.Provider {
	case "openai", "gemini", "anthropic":
	default:
		return fmt.Errorf("unknown provider %q (want openai, gemini or anthropic)", c.Provider)
	}
	for key, d := range map[string]string{
		"vision.cache_ttl":        c.Vision.CacheTTL,
		"server.request_timeout":  c.Server.RequestTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"rate_limit.window":       c.RateLimit.Window,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	return nil
}

func durationOr(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "fitplan-cache")
	}
	return filepath.Join(home, ".cache", "fitplan")
}
