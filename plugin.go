// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package hotplug

import (
	"context"

	"github.com/holomush/hotplug/hook"
)

// Plugin is the instance contract. H is the host context type threaded
// through every callback; hosts that need the callbacks to mutate shared
// state pass a pointer type for H.
//
// Callbacks run synchronously on the caller's goroutine. The ctx carries
// tracing and log attributes only; the engine never cancels a callback.
// Embed Base to pick up no-op defaults for the callbacks a plugin does not
// care about.
type Plugin[ID comparable, H any] interface {
	// Load runs once when the plugin loads. The plugin publishes its
	// capabilities into hooks here; its dependencies are already loaded.
	Load(ctx context.Context, hooks *hook.Registry[ID], host H)

	// Unload runs before the instance is discarded. Hooks owned by the
	// plugin are purged by the engine afterwards.
	Unload(ctx context.Context, host H)

	// Enable runs when the plugin becomes enabled; dependencies are already
	// enabled.
	Enable(ctx context.Context, host H)

	// Disable runs when the plugin becomes disabled; dependents are already
	// disabled.
	Disable(ctx context.Context, host H)
}

// Base is a no-op Plugin implementation for embedding.
type Base[ID comparable, H any] struct{}

// Load implements Plugin.
func (Base[ID, H]) Load(context.Context, *hook.Registry[ID], H) {}

// Unload implements Plugin.
func (Base[ID, H]) Unload(context.Context, H) {}

// Enable implements Plugin.
func (Base[ID, H]) Enable(context.Context, H) {}

// Disable implements Plugin.
func (Base[ID, H]) Disable(context.Context, H) {}

// Constructor builds a plugin instance. Registered alongside a manifest and
// invoked on first load.
type Constructor[ID comparable, H any] func() Plugin[ID, H]

// Initializer self-registers one or more plugins on a manager under
// construction. Used for static/bulk discovery; the order initializers run
// in does not affect the resulting dependency graph.
type Initializer[ID comparable, H any] func(*Manager[ID, H])

// LoadedAs returns the loaded instance of id downcast to P, or false if id
// is unknown, not loaded, or not a P.
func LoadedAs[P Plugin[ID, H], ID comparable, H any](m *Manager[ID, H], id ID) (P, bool) {
	var zero P
	rec, ok := m.plugins[id]
	if !ok || rec.instance == nil {
		return zero, false
	}
	p, ok := rec.instance.(P)
	if !ok {
		return zero, false
	}
	return p, true
}

// EnabledAs is LoadedAs restricted to enabled plugins.
func EnabledAs[P Plugin[ID, H], ID comparable, H any](m *Manager[ID, H], id ID) (P, bool) {
	var zero P
	rec, ok := m.plugins[id]
	if !ok || !rec.enabled {
		return zero, false
	}
	p, ok := rec.instance.(P)
	if !ok {
		return zero, false
	}
	return p, true
}
