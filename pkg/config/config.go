package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	tderrors "github.com/odvcencio/tripdesk/pkg/errors"
	"github.com/odvcencio/tripdesk/pkg/paths"
)

// Default configuration values exported for documentation and validation
const (
	DefaultBaseURL         = "http://localhost:5001"
	DefaultTimeout         = 60 * time.Second
	DefaultCurrency        = "USD"
	DefaultBusyLabel       = "Planning..."
	DefaultTripFallback    = "Failed to plan trip"
	DefaultChatFallback    = "Sorry, I couldn't process your message. Please try again."
	DefaultWelcomeMessage  = "Hello! I'm your travel assistant. Ask me about flights, hotels, weather, places to visit, or local food."
	DefaultSessionPrefix   = "chat"
	DefaultLogLevel        = "info"
	DefaultRateLimitBurst  = 1
	configDirName          = ".tripdesk"
	configFileName         = "config.yaml"
	envFileName            = ".env"
	supportedCurrencyChars = 3
)

// Config represents the complete tripdesk configuration
type Config struct {
	API       APIConfig       `yaml:"api"`
	Trip      TripConfig      `yaml:"trip"`
	Chat      ChatConfig      `yaml:"chat"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// APIConfig describes how to reach the travel-assistant backend.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"` // 0 leaves the transport without a deadline
	// RateLimit caps outgoing requests per second. 0 means unlimited.
	RateLimit   float64 `yaml:"rate_limit"`
	Burst       int     `yaml:"burst"`
	NetworkLogs bool    `yaml:"network_logs"`
}

// TripConfig holds trip-planning form defaults.
type TripConfig struct {
	DefaultCurrency string `yaml:"default_currency"`
	BusyLabel       string `yaml:"busy_label"`
	FailureFallback string `yaml:"failure_fallback"`
}

// ChatConfig holds chat session behaviour.
type ChatConfig struct {
	WelcomeMessage   string `yaml:"welcome_message"`
	FailureFallback  string `yaml:"failure_fallback"`
	SessionPrefix    string `yaml:"session_prefix"`
	OrderedRendering bool   `yaml:"ordered_rendering"`
}

// LoggingConfig controls the JSONL session logs.
type LoggingConfig struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

// TelemetryConfig toggles span export.
type TelemetryConfig struct {
	Tracing bool `yaml:"tracing"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
			Burst:   DefaultRateLimitBurst,
		},
		Trip: TripConfig{
			DefaultCurrency: DefaultCurrency,
			BusyLabel:       DefaultBusyLabel,
			FailureFallback: DefaultTripFallback,
		},
		Chat: ChatConfig{
			WelcomeMessage:  DefaultWelcomeMessage,
			FailureFallback: DefaultChatFallback,
			SessionPrefix:   DefaultSessionPrefix,
		},
		Logging: LoggingConfig{
			Dir:   paths.LogsBaseDir(),
			Level: DefaultLogLevel,
		},
	}
}

// Load loads configuration from default locations with proper precedence:
// defaults, ~/.tripdesk/config.yaml, ./.tripdesk/config.yaml, then environment.
func Load() (*Config, error) {
	loadDotEnv(envFileName)
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	if home != "" {
		userConfigPath := filepath.Join(home, configDirName, configFileName)
		if err := loadAndMerge(cfg, userConfigPath); err != nil && !os.IsNotExist(err) {
			return nil, tderrors.Wrap(err, tderrors.ErrCodeConfigLoad, "loading user config").
				WithContext("path", userConfigPath)
		}
	}

	projectConfigPath := filepath.Join(".", configDirName, configFileName)
	if err := loadAndMerge(cfg, projectConfigPath); err != nil && !os.IsNotExist(err) {
		return nil, tderrors.Wrap(err, tderrors.ErrCodeConfigLoad, "loading project config").
			WithContext("path", projectConfigPath)
	}

	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file path
func LoadFromPath(path string) (*Config, error) {
	loadDotEnv(envFileName)
	cfg := DefaultConfig()
	if err := loadAndMerge(cfg, path); err != nil {
		return nil, tderrors.Wrap(err, tderrors.ErrCodeConfigLoad, "loading config").
			WithContext("path", path)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv exports KEY=VALUE pairs from path without overriding variables
// that are already set. A missing file is not an error.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// applyEnvOverrides applies TRIPDESK_* environment variable overrides
func applyEnvOverrides(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("TRIPDESK_BASE_URL")); v != "" {
		cfg.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("TRIPDESK_CURRENCY")); v != "" {
		cfg.Trip.DefaultCurrency = v
	}
	if v := strings.TrimSpace(os.Getenv("TRIPDESK_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return tderrors.Wrap(err, tderrors.ErrCodeConfigParse, "TRIPDESK_TIMEOUT is not a duration")
		}
		cfg.API.Timeout = d
	}
	if v := strings.TrimSpace(os.Getenv("TRIPDESK_RATE_LIMIT")); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return tderrors.Wrap(err, tderrors.ErrCodeConfigParse, "TRIPDESK_RATE_LIMIT is not a number")
		}
		cfg.API.RateLimit = rps
	}
	if v := strings.TrimSpace(os.Getenv(paths.EnvLogDir)); v != "" {
		cfg.Logging.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv("TRIPDESK_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
	if val, ok := envBool("TRIPDESK_ORDERED_CHAT"); ok {
		cfg.Chat.OrderedRendering = val
	}
	if val, ok := envBool("TRIPDESK_NETWORK_LOGS"); ok {
		cfg.API.NetworkLogs = val
	}
	if val, ok := envBool("TRIPDESK_TRACING"); ok {
		cfg.Telemetry.Tracing = val
	}
	return nil
}

func envBool(key string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false, false
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

func (c *Config) normalize() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	c.Trip.DefaultCurrency = strings.ToUpper(strings.TrimSpace(c.Trip.DefaultCurrency))
	c.Logging.Dir = paths.ExpandHome(c.Logging.Dir)
	if c.API.Burst <= 0 {
		c.API.Burst = DefaultRateLimitBurst
	}
	if strings.TrimSpace(c.Trip.BusyLabel) == "" {
		c.Trip.BusyLabel = DefaultBusyLabel
	}
	if strings.TrimSpace(c.Trip.FailureFallback) == "" {
		c.Trip.FailureFallback = DefaultTripFallback
	}
	if strings.TrimSpace(c.Chat.FailureFallback) == "" {
		c.Chat.FailureFallback = DefaultChatFallback
	}
	if strings.TrimSpace(c.Chat.SessionPrefix) == "" {
		c.Chat.SessionPrefix = DefaultSessionPrefix
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return tderrors.New(tderrors.ErrCodeConfigInvalid, fmt.Sprintf(format, args...))
	}

	if c.API.BaseURL == "" {
		return invalid("api.base_url is required")
	}
	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return invalid("api.base_url must be an absolute http(s) URL: %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return invalid("api.timeout must not be negative: %s", c.API.Timeout)
	}
	if c.API.RateLimit < 0 {
		return invalid("api.rate_limit must not be negative: %v", c.API.RateLimit)
	}
	if len(c.Trip.DefaultCurrency) != supportedCurrencyChars {
		return invalid("trip.default_currency must be a 3-letter code: %q", c.Trip.DefaultCurrency)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return invalid("logging.level must be debug, info, warn, or error: %q", c.Logging.Level)
	}
	return nil
}
