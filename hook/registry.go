// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package hook

import (
	"reflect"

	"github.com/samber/oops"
)

// Error codes for hook registration failures.
const (
	CodeDuplicate    = "HOOK_DUPLICATE"
	CodeSlotConflict = "HOOK_SLOT_CONFLICT"
)

// Slot is a compile-time marker binding a slot identity to exactly one
// capability type. A Slot is only a lookup key; the zero value is unusable,
// create slots with NewSlot.
type Slot[T any] struct {
	id string
}

// NewSlot creates a slot with the given identity. Two slots sharing an
// identity must share a capability type; the registry rejects registrations
// that would bind one identity to two types.
func NewSlot[T any](id string) Slot[T] {
	return Slot[T]{id: id}
}

// ID returns the slot identity.
func (s Slot[T]) ID() string { return s.id }

type entry[ID comparable] struct {
	name  string
	value any
}

// Registry is a heterogeneous store of capability values keyed by
// (slot, owning plugin, optional name). It knows nothing about plugin
// lifecycle; the lifecycle engine calls RemoveOwner when a plugin unloads.
//
// Registry is not safe for concurrent mutation; the owning engine (or the
// host's lock around it) serializes access. Stored values may be held across
// goroutines, so capability types should be safe to share once published.
type Registry[ID comparable] struct {
	slots map[string]map[ID][]entry[ID]
	types map[string]reflect.Type
}

// NewRegistry creates an empty hook registry.
func NewRegistry[ID comparable]() *Registry[ID] {
	return &Registry[ID]{
		slots: make(map[string]map[ID][]entry[ID]),
		types: make(map[string]reflect.Type),
	}
}

// Register stores value under (slot, owner, name). It fails with
// HOOK_DUPLICATE if that exact triple is already present, leaving the stored
// value untouched, and with HOOK_SLOT_CONFLICT if the slot identity is
// already bound to a different capability type. The empty name is the
// unnamed discriminator and is distinct from every non-empty name.
func Register[T any, ID comparable](r *Registry[ID], slot Slot[T], value T, owner ID, name string) error {
	want := typeOf[T]()
	if bound, ok := r.types[slot.id]; ok && bound != want {
		return oops.Code(CodeSlotConflict).
			With("slot", slot.id).
			With("bound", bound.String()).
			With("requested", want.String()).
			Errorf("slot %q is bound to capability type %s", slot.id, bound)
	}

	owners := r.slots[slot.id]
	if owners == nil {
		owners = make(map[ID][]entry[ID])
		r.slots[slot.id] = owners
	}
	hooks := owners[owner]
	for _, h := range hooks {
		if h.name == name {
			return oops.Code(CodeDuplicate).
				With("slot", slot.id).
				With("plugin", owner).
				With("name", name).
				Errorf("hook already registered for slot %q", slot.id)
		}
	}
	owners[owner] = append(hooks, entry[ID]{name: name, value: value})
	r.types[slot.id] = want
	return nil
}

// First returns the first hook owner registered for slot, in insertion
// order, or false if owner has no hooks there. Absence is not an error.
func First[T any, ID comparable](r *Registry[ID], slot Slot[T], owner ID) (T, bool) {
	var zero T
	hooks := r.slots[slot.id][owner]
	if len(hooks) == 0 {
		return zero, false
	}
	v, ok := hooks[0].value.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Exact returns owner's hook with the given name for slot, or false.
func Exact[T any, ID comparable](r *Registry[ID], slot Slot[T], owner ID, name string) (T, bool) {
	var zero T
	for _, h := range r.slots[slot.id][owner] {
		if h.name == name {
			v, ok := h.value.(T)
			if !ok {
				return zero, false
			}
			return v, true
		}
	}
	return zero, false
}

// Exists reports whether owner has any hook for slot.
func Exists[T any, ID comparable](r *Registry[ID], slot Slot[T], owner ID) bool {
	return len(r.slots[slot.id][owner]) > 0
}

// ExistsExact reports whether the exact (slot, owner, name) triple is present.
func ExistsExact[T any, ID comparable](r *Registry[ID], slot Slot[T], owner ID, name string) bool {
	for _, h := range r.slots[slot.id][owner] {
		if h.name == name {
			return true
		}
	}
	return false
}

// Remove deletes the (slot, owner, name) hook and returns the stored value.
// Sibling ordering for the owner is not preserved.
func Remove[T any, ID comparable](r *Registry[ID], slot Slot[T], owner ID, name string) (T, bool) {
	var zero T
	owners := r.slots[slot.id]
	hooks := owners[owner]
	for i, h := range hooks {
		if h.name != name {
			continue
		}
		v, ok := h.value.(T)
		if !ok {
			return zero, false
		}
		last := len(hooks) - 1
		hooks[i] = hooks[last]
		owners[owner] = hooks[:last]
		return v, true
	}
	return zero, false
}

// OwnerValues returns owner's hooks for slot in insertion order.
func OwnerValues[T any, ID comparable](r *Registry[ID], slot Slot[T], owner ID) []T {
	hooks := r.slots[slot.id][owner]
	out := make([]T, 0, len(hooks))
	for _, h := range hooks {
		if v, ok := h.value.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// SlotValue pairs a capability value with the plugin that contributed it.
type SlotValue[T any, ID comparable] struct {
	Plugin ID
	Value  T
}

// SlotValues returns every (plugin, value) pair for slot. Values for one
// plugin come in insertion order; the order across plugins is unspecified.
func SlotValues[T any, ID comparable](r *Registry[ID], slot Slot[T]) []SlotValue[T, ID] {
	var out []SlotValue[T, ID]
	for owner, hooks := range r.slots[slot.id] {
		for _, h := range hooks {
			if v, ok := h.value.(T); ok {
				out = append(out, SlotValue[T, ID]{Plugin: owner, Value: v})
			}
		}
	}
	return out
}

// RemoveOwner deletes every hook owned by plugin across all slots. The
// lifecycle engine calls this when a plugin unloads or is removed.
func (r *Registry[ID]) RemoveOwner(plugin ID) {
	for _, owners := range r.slots {
		delete(owners, plugin)
	}
}

// Len returns the total number of stored hooks.
func (r *Registry[ID]) Len() int {
	n := 0
	for _, owners := range r.slots {
		for _, hooks := range owners {
			n += len(hooks)
		}
	}
	return n
}

// Compact drops empty buckets left behind by removals. Purely housekeeping,
// no semantic effect.
func (r *Registry[ID]) Compact() {
	for slot, owners := range r.slots {
		for owner, hooks := range owners {
			if len(hooks) == 0 {
				delete(owners, owner)
			}
		}
		if len(owners) == 0 {
			delete(r.slots, slot)
			delete(r.types, slot)
		}
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
