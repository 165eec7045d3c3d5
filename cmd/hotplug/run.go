// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/holomush/hotplug"
	"github.com/holomush/hotplug/hook"
	"github.com/holomush/hotplug/luaplugin"
	"github.com/holomush/hotplug/pkg/errutil"
)

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [dir...]",
		Short: "Load and enable plugins, then invoke their handlers",
		Long: `Register every plugin directory on a fresh manager, enable them all
(dependencies cascade automatically), then pass the input text through
each published handler and print the results. --only restricts the
invoked handlers by a glob on the plugin name.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			dirs, err := pluginDirs(cfg, args)
			if err != nil {
				return err
			}
			return run(cmd, cfg, dirs)
		},
	}

	cmd.Flags().String("plugins-dir", "plugins", "directory scanned for plugin subdirectories")
	cmd.Flags().String("only", "", "glob filter on plugin names")
	cmd.Flags().String("input", "", "input text passed to plugin handlers")
	return cmd
}

func run(cmd *cobra.Command, cfg *Config, dirs []string) error {
	var filter glob.Glob
	if cfg.Only != "" {
		g, err := glob.Compile(cfg.Only)
		if err != nil {
			return fmt.Errorf("invalid --only pattern %q: %w", cfg.Only, err)
		}
		filter = g
	}

	ctx := cmd.Context()
	m := hotplug.New[string, struct{}]()

	var names []string
	for _, dir := range dirs {
		manifest, p, err := luaplugin.FromDir[struct{}](dir)
		if err != nil {
			return err
		}
		if _, err := m.Register(manifest, func() hotplug.Plugin[string, struct{}] { return p }); err != nil {
			return err
		}
		names = append(names, manifest.ID())
	}

	for _, name := range names {
		if err := m.Enable(ctx, name, struct{}{}); err != nil {
			return err
		}
	}

	handlers := hook.SlotValues(m.Hooks(), luaplugin.HandlerSlot)
	sort.Slice(handlers, func(i, j int) bool { return handlers[i].Plugin < handlers[j].Plugin })

	failed := false
	for _, h := range handlers {
		if filter != nil && !filter.Match(h.Plugin) {
			continue
		}
		out, err := h.Value(ctx, cfg.Input)
		if err != nil {
			errutil.LogError(slog.Default(), "handler failed", err)
			cmd.Printf("%s: error: %v\n", h.Plugin, err)
			failed = true
			continue
		}
		cmd.Printf("%s: %s\n", h.Plugin, out)
	}

	if failed {
		return fmt.Errorf("one or more handlers failed")
	}
	return nil
}
