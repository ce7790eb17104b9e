// Package config holds runtime configuration, its defaults and the settings file.
package config

import (
	"strings"

	"github.com/minhyannv/pc-agent-go/pkg/apps"
	"github.com/minhyannv/pc-agent-go/pkg/fsops"
)

// Environment variable names.
const (
	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	EnvOpenAIModel   = "OPENAI_MODEL"
	EnvGeminiAPIKey  = "GEMINI_API_KEY"
)

// Defaults.
const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.5-flash"
	// GeminiBaseURL is Gemini's OpenAI-compatible endpoint.
	GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

	DefaultYouTubeAppID   = "agimnkijcaahngcdmfeangaknmldooml"
	DefaultBrowserProfile = "Default"
)

// Config holds all runtime configuration for the agent.
type Config struct {
	MaxTurns     int
	Verbose      bool
	Render       bool
	MaxReadBytes int64
	SettingsFile string

	APIKey  string
	BaseURL string
	Model   string

	// Apps overlays the platform's built-in application table.
	Apps    map[string]apps.Target
	Browser BrowserConfig
}

// BrowserConfig overrides the browsers used by the search tools.
type BrowserConfig struct {
	// Chrome is the fallback browser command for Google searches. Empty means
	// the application table's "chrome" entry.
	Chrome  apps.Target   `yaml:"chrome" toml:"chrome"`
	YouTube YouTubeConfig `yaml:"youtube" toml:"youtube"`
}

// YouTubeConfig describes the browser that hosts the installed YouTube app.
// With no Executable, YouTube searches open in the default browser.
type YouTubeConfig struct {
	Executable string `yaml:"executable" toml:"executable"`
	AppID      string `yaml:"app_id" toml:"app_id"`
	Profile    string `yaml:"profile" toml:"profile"`
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		MaxTurns:     10,
		MaxReadBytes: fsops.DefaultMaxReadBytes,
		Browser: BrowserConfig{
			YouTube: YouTubeConfig{
				AppID:   DefaultYouTubeAppID,
				Profile: DefaultBrowserProfile,
			},
		},
	}
}

// ApplyEnv fills credentials from the environment. OpenAI settings win; a
// lone GEMINI_API_KEY selects Gemini's OpenAI-compatible endpoint.
func ApplyEnv(cfg Config, getenv func(string) string) Config {
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	if key := get(EnvOpenAIAPIKey); key != "" {
		cfg.APIKey = key
		if base := get(EnvOpenAIBaseURL); base != "" {
			cfg.BaseURL = base
		}
	} else if key := get(EnvGeminiAPIKey); key != "" {
		cfg.APIKey = key
		cfg.BaseURL = GeminiBaseURL
		if cfg.Model == "" {
			cfg.Model = DefaultGeminiModel
		}
	}
	if model := get(EnvOpenAIModel); model != "" {
		cfg.Model = model
	}
	return cfg
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.SettingsFile = strings.TrimSpace(cfg.SettingsFile)
	cfg.Browser.YouTube.Executable = strings.TrimSpace(cfg.Browser.YouTube.Executable)
	cfg.Browser.YouTube.AppID = strings.TrimSpace(cfg.Browser.YouTube.AppID)
	cfg.Browser.YouTube.Profile = strings.TrimSpace(cfg.Browser.YouTube.Profile)

	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 1
	}
	if cfg.MaxReadBytes <= 0 {
		cfg.MaxReadBytes = fsops.DefaultMaxReadBytes
	}
	if cfg.Browser.YouTube.AppID == "" {
		cfg.Browser.YouTube.AppID = DefaultYouTubeAppID
	}
	if cfg.Browser.YouTube.Profile == "" {
		cfg.Browser.YouTube.Profile = DefaultBrowserProfile
	}
	return cfg
}
