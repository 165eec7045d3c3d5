// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package hotplug

import "slices"

// Manifest is the static metadata describing a plugin before instantiation.
// ID must be stable for the plugin's registered lifetime.
type Manifest[ID comparable] interface {
	// ID returns the plugin's unique identifier.
	ID() ID

	// Dependencies returns the plugin ids this plugin requires, in declared
	// order. Cascading lifecycle operations process dependencies in exactly
	// this order.
	Dependencies() []ID

	// DependencyMatches vetoes an incompatible dependency at load time. It
	// receives the candidate dependency's manifest and returns nil to accept.
	// The error becomes the mismatch reason.
	DependencyMatches(dependency Manifest[ID]) error
}

// SimpleManifest is the minimal Manifest implementation: an id, a
// human-readable description, and an ordered dependency list. It accepts
// every dependency.
type SimpleManifest[ID comparable] struct {
	id           ID
	description  string
	dependencies []ID
}

// NewManifest creates a manifest with no dependencies.
func NewManifest[ID comparable](id ID, description string) *SimpleManifest[ID] {
	return &SimpleManifest[ID]{id: id, description: description}
}

// NewManifestWithDependencies creates a manifest with a declared dependency
// list. The order of deps determines cascade processing order.
func NewManifestWithDependencies[ID comparable](id ID, description string, deps ...ID) *SimpleManifest[ID] {
	return &SimpleManifest[ID]{id: id, description: description, dependencies: slices.Clone(deps)}
}

// ID returns the plugin id.
func (m *SimpleManifest[ID]) ID() ID { return m.id }

// Description returns the human-readable description.
func (m *SimpleManifest[ID]) Description() string { return m.description }

// Dependencies returns the declared dependency list.
func (m *SimpleManifest[ID]) Dependencies() []ID { return m.dependencies }

// DependencyMatches accepts every dependency.
func (m *SimpleManifest[ID]) DependencyMatches(Manifest[ID]) error { return nil }
