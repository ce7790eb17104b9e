package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/minhyannv/pc-agent-go/pkg/apps"
	"gopkg.in/yaml.v3"
)

// SettingsFileName is looked up in the working directory and the user
// config directory when no settings file is given explicitly.
const SettingsFileName = "pc-agent"

// Settings is the on-disk settings file (YAML or TOML).
//
//	model: gpt-4o-mini
//	max_turns: 10
//	apps:
//	  chrome: 'C:\Program Files\Google\Chrome\Application\chrome.exe'
//	  tf2: [steam, "steam://rungameid/440"]
//	browser:
//	  youtube:
//	    executable: 'C:\Program Files\BraveSoftware\Brave-Browser\Application\chrome_proxy.exe'
type Settings struct {
	Model    string                 `yaml:"model" toml:"model"`
	MaxTurns int                    `yaml:"max_turns" toml:"max_turns"`
	Apps     map[string]apps.Target `yaml:"apps" toml:"apps"`
	Browser  BrowserConfig          `yaml:"browser" toml:"browser"`
}

// LoadSettings reads a settings file; the format follows the extension
// (.toml for TOML, anything else YAML).
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	var s Settings
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
			return Settings{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return Settings{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return s, nil
}

// FindSettings returns the first existing default settings file, or "".
func FindSettings() string {
	dirs := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, SettingsFileName))
	}
	for _, dir := range dirs {
		for _, name := range []string{SettingsFileName + ".yaml", SettingsFileName + ".yml", SettingsFileName + ".toml", "config.yaml", "config.toml"} {
			// config.* names only count inside the dedicated config directory.
			if dir == "." && strings.HasPrefix(name, "config.") {
				continue
			}
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// ApplyTo overlays non-zero settings onto cfg.
func (s Settings) ApplyTo(cfg Config) Config {
	if m := strings.TrimSpace(s.Model); m != "" {
		cfg.Model = m
	}
	if s.MaxTurns > 0 {
		cfg.MaxTurns = s.MaxTurns
	}
	if len(s.Apps) > 0 {
		merged := make(map[string]apps.Target, len(cfg.Apps)+len(s.Apps))
		for k, v := range cfg.Apps {
			merged[k] = v
		}
		for k, v := range s.Apps {
			merged[k] = v
		}
		cfg.Apps = merged
	}
	if len(s.Browser.Chrome) > 0 {
		cfg.Browser.Chrome = s.Browser.Chrome
	}
	yt := s.Browser.YouTube
	if yt.Executable != "" {
		cfg.Browser.YouTube.Executable = yt.Executable
	}
	if yt.AppID != "" {
		cfg.Browser.YouTube.AppID = yt.AppID
	}
	if yt.Profile != "" {
		cfg.Browser.YouTube.Profile = yt.Profile
	}
	return cfg
}
