// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/holomush/hotplug/internal/logging"
)

// Global flags available to all subcommands.
var (
	configFile string
	logFormat  string
)

// NewRootCmd creates the root command for the hotplug CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hotplug",
		Short: "hotplug - plugin lifecycle toolkit",
		Long: `hotplug inspects and exercises directories of declarative plugins:
plugin.yaml descriptors with sandboxed Lua entry scripts. It validates
descriptors, checks the dependency graph, and runs plugin handlers.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: json or text")

	cmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		logging.SetDefault("hotplug", cmd.Root().Version, logFormat)
	}

	cmd.AddCommand(NewLintCmd())
	cmd.AddCommand(NewRunCmd())

	return cmd
}
