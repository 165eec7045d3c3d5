// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package hotplug

import (
	"github.com/samber/oops"
)

// Error codes for registration and lifecycle failures.
const (
	CodeDuplicate          = "PLUGIN_DUPLICATE"
	CodeCyclicDependency   = "PLUGIN_CYCLIC_DEPENDENCY"
	CodeNotFound           = "PLUGIN_NOT_FOUND"
	CodeMissingConstructor = "PLUGIN_MISSING_CONSTRUCTOR"
	CodeDependencyNotFound = "PLUGIN_DEPENDENCY_NOT_FOUND"
	CodeDependencyMismatch = "PLUGIN_DEPENDENCY_MISMATCH"
	CodeNilManifest        = "PLUGIN_NIL_MANIFEST"
)

// ErrDuplicate creates an error for a second registration of an id.
func ErrDuplicate[ID comparable](id ID) error {
	return oops.Code(CodeDuplicate).
		With("plugin", id).
		Errorf("duplicate plugin %v already registered", id)
}

// ErrCyclicDependency creates an error for a registration that would close a
// dependency cycle. The graph mutation has been fully rolled back.
func ErrCyclicDependency[ID comparable](id ID) error {
	return oops.Code(CodeCyclicDependency).
		With("plugin", id).
		Errorf("plugin %v introduces a dependency cycle which cannot be resolved", id)
}

// ErrNotFound creates an error for an unknown plugin id.
func ErrNotFound[ID comparable](id ID) error {
	return oops.Code(CodeNotFound).
		With("plugin", id).
		Errorf("plugin %v not found", id)
}

// ErrMissingConstructor creates an error for loading a plugin registered
// without a constructor.
func ErrMissingConstructor[ID comparable](id ID) error {
	return oops.Code(CodeMissingConstructor).
		With("plugin", id).
		Errorf("plugin %v was not registered with a constructor", id)
}

// ErrDependencyNotFound creates an error for a declared dependency that is
// not registered.
func ErrDependencyNotFound[ID comparable](plugin, dependency ID) error {
	return oops.Code(CodeDependencyNotFound).
		With("plugin", plugin).
		With("dependency", dependency).
		Errorf("dependency %v required by %v not found", dependency, plugin)
}

// ErrDependencyMismatch creates an error for a dependency vetoed by the
// requesting manifest's DependencyMatches.
func ErrDependencyMismatch[ID comparable](plugin, dependency ID, reason error) error {
	return oops.Code(CodeDependencyMismatch).
		With("plugin", plugin).
		With("dependency", dependency).
		Wrapf(reason, "dependency %v required by %v does not match plugin requirements", dependency, plugin)
}

// ErrNilManifest creates an error for registering a nil manifest.
func ErrNilManifest() error {
	return oops.Code(CodeNilManifest).
		Errorf("manifest is nil")
}

// ErrorCode extracts the hotplug error code from err, or "" if err carries
// none. Useful for programmatic matching without string comparison.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		if code, ok := oopsErr.Code().(string); ok {
			return code
		}
	}
	return ""
}
