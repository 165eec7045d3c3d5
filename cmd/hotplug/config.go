// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds CLI settings. Precedence: flags over config file over
// defaults.
type Config struct {
	// PluginsDir is scanned for plugin directories when no explicit
	// directories are given on the command line.
	PluginsDir string `koanf:"plugins-dir"`
	// Only filters plugins by a glob pattern on their name.
	Only string `koanf:"only"`
	// Input is the text handed to plugin handlers by the run command.
	Input string `koanf:"input"`
}

// loadConfig merges the optional --config YAML file and the command's flags.
func loadConfig(flags *pflag.FlagSet) (*Config, error) {
	cfg := Config{
		PluginsDir: "plugins",
	}

	k := koanf.New(".")
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configFile, err)
		}
	}
	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// pluginDirs resolves the plugin directories to operate on: explicit args
// win, otherwise every subdirectory of PluginsDir holding a plugin.yaml.
func pluginDirs(cfg *Config, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	entries, err := os.ReadDir(cfg.PluginsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read plugins dir %s: %w", cfg.PluginsDir, err)
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(cfg.PluginsDir, e.Name())
		if _, err := os.Stat(filepath.Join(dir, "plugin.yaml")); err == nil {
			dirs = append(dirs, dir)
		}
	}
	return dirs, nil
}
