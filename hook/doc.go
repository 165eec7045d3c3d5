// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package hook provides the typed extension-point registry plugins use to
// publish and consume capabilities.
//
// A slot is a named extension point bound to exactly one capability type:
//
//	type Renderer interface {
//	    Render(w io.Writer) error
//	}
//
//	var RendererSlot = hook.NewSlot[Renderer]("renderer")
//
// During its load callback a plugin registers concrete capabilities against
// the slot, and other plugins read them back through the same registry:
//
//	_ = hook.Register(reg, RendererSlot, &htmlRenderer{}, "ui", "")
//
//	if r, ok := hook.First(reg, RendererSlot, "ui"); ok {
//	    _ = r.Render(os.Stdout)
//	}
//
// Because Go methods cannot introduce type parameters, the typed operations
// are package-level functions taking the registry as their first argument.
// Lookups that find nothing report absence, not an error; a type mismatch is
// unreachable through slots created with NewSlot.
package hook
