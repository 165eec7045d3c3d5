// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/holomush/hotplug"
	"github.com/holomush/hotplug/internal/depgraph"
)

// NewLintCmd creates the lint subcommand.
func NewLintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [dir...]",
		Short: "Validate plugin descriptors and their dependency graph",
		Long: `Validate every plugin.yaml descriptor in the given directories (or the
configured plugins directory), then check the combined dependency graph
for duplicates, missing dependencies, and cycles. On success the
dependency-first load order is printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			dirs, err := pluginDirs(cfg, args)
			if err != nil {
				return err
			}
			return lint(cmd, dirs)
		},
	}

	cmd.Flags().String("plugins-dir", "plugins", "directory scanned for plugin subdirectories")
	return cmd
}

func lint(cmd *cobra.Command, dirs []string) error {
	failed := false
	seen := make(map[string]string)
	var descriptors []*hotplug.Descriptor

	for _, dir := range dirs {
		data, err := os.ReadFile(filepath.Clean(filepath.Join(dir, "plugin.yaml")))
		if err != nil {
			cmd.Printf("%s: %v\n", dir, err)
			failed = true
			continue
		}
		if err := hotplug.ValidateSchema(data); err != nil {
			cmd.Printf("%s: %s\n", dir, hotplug.FormatSchemaError(err))
			failed = true
			continue
		}
		d, err := hotplug.ParseDescriptor(data)
		if err != nil {
			cmd.Printf("%s: %v\n", dir, err)
			failed = true
			continue
		}
		if prev, dup := seen[d.Name]; dup {
			cmd.Printf("%s: plugin %q already declared in %s\n", dir, d.Name, prev)
			failed = true
			continue
		}
		seen[d.Name] = dir
		descriptors = append(descriptors, d)
		cmd.Printf("%s: ok (%s %s)\n", dir, d.Name, d.Version)
	}

	graph := depgraph.New[string]()
	for _, d := range descriptors {
		graph.AddNode(d.Name)
		for i, dep := range d.Dependencies {
			graph.AddNode(dep.Name)
			graph.AddEdge(d.Name, dep.Name, i)
			if _, ok := seen[dep.Name]; !ok {
				cmd.Printf("warning: %s depends on %s, which is not among the linted plugins\n", d.Name, dep.Name)
			}
		}
	}

	order, acyclic := graph.Sorted(func(a, b string) bool { return a < b })
	if !acyclic {
		cmd.Println("error: dependency cycle detected")
		failed = true
	} else if len(order) > 0 {
		cmd.Println("load order: " + strings.Join(order, ", "))
	}

	if failed {
		return fmt.Errorf("lint found problems")
	}
	return nil
}
