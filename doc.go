// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package hotplug is an in-process plugin framework: it manages plugin
// registration, dependency-ordered lifecycle transitions, and typed
// hook exchange between dynamically composed units of functionality.
//
// A host describes each plugin with a Manifest (id, declared dependencies,
// compatibility check), registers it with an optional constructor, and
// drives it through load, enable, disable, and unload. The Manager keeps
// the dependency graph acyclic, loads and enables dependencies before their
// dependents in declared order, and cascades unload and disable through
// dependents in the reverse direction, so a plugin never observes a missing
// or disabled dependency.
//
// # Quick start
//
//	type greetPlugin struct {
//	    hotplug.Base[string, *App]
//	}
//
//	func (p *greetPlugin) Load(ctx context.Context, hooks *hook.Registry[string], app *App) {
//	    _ = hook.Register(hooks, GreeterSlot, Greeter(p), "greet", "")
//	}
//
//	m := hotplug.New[string, *App]()
//	_, _ = m.Register(hotplug.NewManifest("greet", "greets people"), func() hotplug.Plugin[string, *App] {
//	    return &greetPlugin{}
//	})
//	if err := m.Load(ctx, "greet", app); err != nil { ... }
//
// During its load callback a plugin publishes capabilities into the shared
// hook registry (see the hook package); other plugins and the host read
// them back through the same registry. All hooks a plugin owns are purged
// when it unloads.
//
// # Concurrency
//
// The Manager is fully synchronous and does no internal locking. Hosts that
// call it from several goroutines put it behind one lock; stored plugin and
// hook values should be safe to hold across goroutines once published.
//
// # Declarative manifests
//
// Descriptor adds an optional plugin.yaml layer on top of the Manifest
// interface, with semver versions and dependency constraints, validated
// against a generated JSON Schema. The engine itself never requires it.
package hotplug
