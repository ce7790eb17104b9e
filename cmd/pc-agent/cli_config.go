package main

import (
	"fmt"
	"strings"

	configpkg "github.com/minhyannv/pc-agent-go/pkg/config"
)

// cliFlags are the values bound to the root command's flags.
type cliFlags struct {
	verbose    bool
	maxTurns   int
	model      string
	configPath string
	render     bool
	noSpinner  bool
}

// loadConfig builds the runtime config. Precedence, lowest first: defaults,
// settings file, environment, flags.
func loadConfig(flags cliFlags, getenv func(string) string, findSettings func() string) (configpkg.Config, error) {
	cfg := configpkg.DefaultConfig()

	path := strings.TrimSpace(flags.configPath)
	if path == "" && findSettings != nil {
		path = findSettings()
	}
	if path != "" {
		settings, err := configpkg.LoadSettings(path)
		if err != nil {
			return configpkg.Config{}, fmt.Errorf("load settings: %w", err)
		}
		cfg = settings.ApplyTo(cfg)
		cfg.SettingsFile = path
	}

	cfg = configpkg.ApplyEnv(cfg, getenv)

	if m := strings.TrimSpace(flags.model); m != "" {
		cfg.Model = m
	}
	if flags.maxTurns < 0 {
		return configpkg.Config{}, fmt.Errorf("--max-turns must not be negative, got %d", flags.maxTurns)
	}
	if flags.maxTurns > 0 {
		cfg.MaxTurns = flags.maxTurns
	}
	cfg.Verbose = flags.verbose
	cfg.Render = flags.render
	return configpkg.Normalize(cfg), nil
}
