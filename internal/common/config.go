package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Server      ServerConfig   `toml:"server"`
	Storage     StorageConfig  `toml:"storage"`
	Logging     LoggingConfig  `toml:"logging"`
	LLM         LLMConfig      `toml:"llm"`
	Sessions    SessionsConfig `toml:"sessions"`
	I18n        I18nConfig     `toml:"i18n"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger   BadgerConfig   `toml:"badger"`
	Previews PreviewsConfig `toml:"previews"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// PreviewsConfig configures the local preview file store
type PreviewsConfig struct {
	Dir string `toml:"dir"` // Directory where uploaded preview files are written
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs
}

// LLMConfig selects and configures the LLM provider
type LLMConfig struct {
	Provider          string       `toml:"provider"`            // "gemini" (default) or "claude"
	Timeout           string       `toml:"timeout"`             // e.g. "60s" - per-request timeout
	RequestsPerMinute int          `toml:"requests_per_minute"` // Rate limit for provider calls (default: 30)
	Gemini            GeminiConfig `toml:"gemini"`
	Claude            ClaudeConfig `toml:"claude"`
}

type GeminiConfig struct {
	APIKey       string  `toml:"api_key"`
	ChatModel    string  `toml:"chat_model"`    // default: gemini-2.0-flash
	SummaryModel string  `toml:"summary_model"` // default: gemini-2.0-flash
	Temperature  float32 `toml:"temperature"`
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"` // default: claude-sonnet-4-20250514
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

// SessionsConfig controls notebook session lifecycle
type SessionsConfig struct {
	TTL             string `toml:"ttl"`              // Idle time before a session is evicted (default: "1h")
	JanitorSchedule string `toml:"janitor_schedule"` // Cron schedule for the eviction sweep (default: "*/5 * * * *")
	DefaultLanguage string `toml:"default_language"` // Display language for new sessions (default: "en")
}

// I18nConfig configures display-language dictionaries
type I18nConfig struct {
	Dir             string `toml:"dir"`              // Directory containing dictionary files (YAML)
	DefaultLanguage string `toml:"default_language"` // Final fallback language (default: "en")
}

// DefaultConfig returns the configuration defaults applied before any file
// or environment override.
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8190,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/fablab",
			},
			Previews: PreviewsConfig{
				Dir: "./data/previews",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		LLM: LLMConfig{
			Provider:          "gemini",
			Timeout:           "60s",
			RequestsPerMinute: 30,
		},
		Sessions: SessionsConfig{
			TTL:             "1h",
			JanitorSchedule: "*/5 * * * *",
			DefaultLanguage: "en",
		},
		I18n: I18nConfig{
			Dir:             "./languages",
			DefaultLanguage: "en",
		},
	}
}

// LoadFromFiles loads configuration by merging defaults, the given TOML
// files in order (later files override earlier ones), and finally
// environment variable overrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := DefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies FABLAB_-prefixed environment variables on top of
// file-based configuration. Environment wins over files; CLI flags win over
// environment (see ApplyFlagOverrides).
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("FABLAB_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("FABLAB_SERVER_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("FABLAB_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("FABLAB_STORAGE_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("FABLAB_LLM_PROVIDER"); v != "" {
		config.LLM.Provider = v
	}
	if v := os.Getenv("FABLAB_GEMINI_API_KEY"); v != "" {
		config.LLM.Gemini.APIKey = v
	}
	if v := os.Getenv("FABLAB_CLAUDE_API_KEY"); v != "" {
		config.LLM.Claude.APIKey = v
	}
}

// ApplyFlagOverrides applies command-line flag values (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ParseTTL returns the session idle TTL as a duration, falling back to one
// hour when unset or invalid.
func (s *SessionsConfig) ParseTTL() time.Duration {
	d, err := time.ParseDuration(s.TTL)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// ParseTimeout returns the per-request LLM timeout, falling back to 60s.
func (l *LLMConfig) ParseTimeout() time.Duration {
	d, err := time.ParseDuration(l.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}
