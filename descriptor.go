// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package hotplug

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Descriptor is a declarative plugin.yaml manifest: a name, a semver
// version, and versioned dependency declarations. It is an optional layer
// for string-identified plugins; the engine only ever sees the Manifest it
// produces.
type Descriptor struct {
	Name         string                 `yaml:"name" json:"name" jsonschema:"pattern=^[a-z]([a-z0-9-]*[a-z0-9])?$,maxLength=64"`
	Version      string                 `yaml:"version" json:"version" jsonschema:"minLength=1"`
	Description  string                 `yaml:"description,omitempty" json:"description,omitempty"`
	Dependencies []DescriptorDependency `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

// DescriptorDependency declares a required plugin, optionally constrained
// to a semver range such as ">=1.2.0 <2".
type DescriptorDependency struct {
	Name       string `yaml:"name" json:"name" jsonschema:"pattern=^[a-z]([a-z0-9-]*[a-z0-9])?$,maxLength=64"`
	Constraint string `yaml:"constraint,omitempty" json:"constraint,omitempty"`
}

// maxNameLength is the maximum allowed length for plugin names.
const maxNameLength = 64

// namePattern validates plugin names: must start with a lowercase letter,
// followed by lowercase letters, digits, or hyphens, and cannot end with a
// hyphen. Single character names are allowed.
var namePattern = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)

// ParseDescriptor parses and validates a plugin.yaml document.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("descriptor data is empty")
	}

	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}

	return &d, nil
}

// Validate checks descriptor constraints.
func (d *Descriptor) Validate() error {
	if d.Name == "" || !namePattern.MatchString(d.Name) {
		return fmt.Errorf("name %q must start with a-z, contain only a-z, 0-9, hyphens, and not end with a hyphen", d.Name)
	}
	if len(d.Name) > maxNameLength {
		return fmt.Errorf("name must be %d characters or less, got %d", maxNameLength, len(d.Name))
	}

	if d.Version == "" {
		return fmt.Errorf("version is required")
	}
	if _, err := semver.StrictNewVersion(d.Version); err != nil {
		return fmt.Errorf("version %q is not strict semver: %w", d.Version, err)
	}

	seen := make(map[string]struct{}, len(d.Dependencies))
	for _, dep := range d.Dependencies {
		if dep.Name == "" || !namePattern.MatchString(dep.Name) {
			return fmt.Errorf("dependency name %q is not a valid plugin name", dep.Name)
		}
		if _, dup := seen[dep.Name]; dup {
			return fmt.Errorf("dependency %q declared twice", dep.Name)
		}
		seen[dep.Name] = struct{}{}
		if dep.Constraint == "" {
			continue
		}
		if _, err := semver.NewConstraint(dep.Constraint); err != nil {
			return fmt.Errorf("dependency %q has invalid constraint %q: %w", dep.Name, dep.Constraint, err)
		}
	}

	return nil
}

// Manifest converts the descriptor into an engine manifest. The returned
// manifest vetoes dependencies whose versions violate the declared
// constraints; dependencies registered through plain manifests (no version)
// are rejected only when a constraint explicitly names them.
func (d *Descriptor) Manifest() (*VersionedManifest, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	version := semver.MustParse(d.Version)

	deps := make([]string, 0, len(d.Dependencies))
	constraints := make(map[string]*semver.Constraints, len(d.Dependencies))
	for _, dep := range d.Dependencies {
		deps = append(deps, dep.Name)
		if dep.Constraint == "" {
			continue
		}
		c, err := semver.NewConstraint(dep.Constraint)
		if err != nil {
			return nil, fmt.Errorf("dependency %q has invalid constraint %q: %w", dep.Name, dep.Constraint, err)
		}
		constraints[dep.Name] = c
	}

	return &VersionedManifest{
		name:        d.Name,
		description: d.Description,
		version:     version,
		deps:        deps,
		constraints: constraints,
	}, nil
}

// Versioned is implemented by manifests that expose a semver version,
// letting VersionedManifest check constraints against them.
type Versioned interface {
	Version() *semver.Version
}

// VersionedManifest is a Manifest[string] carrying a semver version and
// per-dependency version constraints. Its DependencyMatches is the
// pluggable comparison callback the engine consults at load time.
type VersionedManifest struct {
	name        string
	description string
	version     *semver.Version
	deps        []string
	constraints map[string]*semver.Constraints
}

// ID returns the plugin name.
func (m *VersionedManifest) ID() string { return m.name }

// Description returns the human-readable description.
func (m *VersionedManifest) Description() string { return m.description }

// Version returns the plugin's semver version.
func (m *VersionedManifest) Version() *semver.Version { return m.version }

// Dependencies returns the declared dependency names in declared order.
func (m *VersionedManifest) Dependencies() []string { return m.deps }

// DependencyMatches accepts dependency unless a constraint is declared for
// it and the dependency's version is absent or violates the constraint.
func (m *VersionedManifest) DependencyMatches(dependency Manifest[string]) error {
	c := m.constraints[dependency.ID()]
	if c == nil {
		return nil
	}
	versioned, ok := dependency.(Versioned)
	if !ok || versioned.Version() == nil {
		return fmt.Errorf("constraint %q declared but dependency %q has no version", c.String(), dependency.ID())
	}
	if ok, errs := c.Validate(versioned.Version()); !ok {
		return fmt.Errorf("version %s violates constraint %q: %w",
			versioned.Version(), c.String(), errors.Join(errs...))
	}
	return nil
}
