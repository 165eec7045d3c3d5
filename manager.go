// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package hotplug

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/hotplug/hook"
	"github.com/holomush/hotplug/internal/depgraph"
)

var tracer = otel.Tracer("hotplug")

// record is the engine's per-plugin state. instance is nil while unloaded.
type record[ID comparable, H any] struct {
	manifest Manifest[ID]
	enabled  bool
	ctor     Constructor[ID, H]
	instance Plugin[ID, H]
}

// Manager owns plugin records, the dependency graph, and the hook registry,
// and drives register/load/unload/enable/disable with cascade semantics.
//
// Every operation is synchronous and runs to completion on the caller's
// goroutine. The Manager performs no internal locking; a host calling it
// from multiple goroutines must serialize access behind one lock. Cascading
// operations re-enter the engine recursively, which is safe because records
// are fetched by id at each step.
type Manager[ID comparable, H any] struct {
	plugins map[ID]*record[ID, H]
	hooks   *hook.Registry[ID]
	graph   *depgraph.Graph[ID]
	logger  *slog.Logger
}

// Option configures a Manager during construction.
type Option func(*managerOptions)

type managerOptions struct {
	logger   *slog.Logger
	capacity int
}

// WithLogger sets the logger for lifecycle transition logs. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *managerOptions) {
		o.logger = logger
	}
}

// WithCapacity pre-sizes the plugin table for an expected plugin count.
func WithCapacity(n int) Option {
	return func(o *managerOptions) {
		o.capacity = n
	}
}

// New creates an empty manager.
func New[ID comparable, H any](opts ...Option) *Manager[ID, H] {
	o := managerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager[ID, H]{
		plugins: make(map[ID]*record[ID, H], o.capacity),
		hooks:   hook.NewRegistry[ID](),
		graph:   depgraph.New[ID](),
		logger:  o.logger,
	}
}

// FromInitializers creates a manager and invokes each initializer on it in
// order. Initializers self-register plugins; their relative order carries no
// meaning for the final graph.
func FromInitializers[ID comparable, H any](inits []Initializer[ID, H], opts ...Option) *Manager[ID, H] {
	opts = append(opts, WithCapacity(len(inits)))
	m := New[ID, H](opts...)
	for _, init := range inits {
		init(m)
	}
	return m
}

// Hooks returns the shared hook registry. Plugins receive the same registry
// in their load callbacks; hosts use this accessor to query capabilities
// between lifecycle operations.
func (m *Manager[ID, H]) Hooks() *hook.Registry[ID] {
	return m.hooks
}

// Register adds a plugin record for manifest with an optional constructor
// (nil is allowed; such a plugin can only be loaded via LoadWith). It fails
// with PLUGIN_DUPLICATE if the id is taken, and with
// PLUGIN_CYCLIC_DEPENDENCY if the declared dependencies would close a cycle,
// in which case the graph and the plugin table are restored to their
// pre-call state exactly.
func (m *Manager[ID, H]) Register(manifest Manifest[ID], ctor Constructor[ID, H]) (ID, error) {
	var zero ID
	if manifest == nil {
		return zero, ErrNilManifest()
	}
	id := manifest.ID()
	if _, exists := m.plugins[id]; exists {
		registrationsTotal.WithLabelValues("duplicate").Inc()
		return id, ErrDuplicate(id)
	}
	m.plugins[id] = &record[ID, H]{manifest: manifest, ctor: ctor}

	// Grow the graph, remembering exactly what this call creates so a cycle
	// can be rolled back without touching pre-existing nodes.
	var created []ID
	if m.graph.AddNode(id) {
		created = append(created, id)
	}
	deps := manifest.Dependencies()
	for i, dep := range deps {
		if m.graph.AddNode(dep) {
			created = append(created, dep)
		}
		m.graph.AddEdge(id, dep, i)
	}

	if m.graph.HasCycle() {
		for _, dep := range deps {
			m.graph.RemoveEdge(id, dep)
		}
		for _, node := range created {
			if m.graph.InDegree(node) == 0 {
				m.graph.RemoveNode(node)
			}
		}
		delete(m.plugins, id)
		m.logger.Warn("plugin registration rejected, dependency cycle", "plugin", id)
		registrationsTotal.WithLabelValues("cycle").Inc()
		return id, ErrCyclicDependency(id)
	}

	registrationsTotal.WithLabelValues("ok").Inc()
	m.logger.Debug("plugin registered", "plugin", id, "dependencies", len(deps))
	return id, nil
}

// Load constructs and loads id if it is not already loaded, loading every
// declared dependency first, in declared order, recursively. Each dependency
// must be registered (PLUGIN_DEPENDENCY_NOT_FOUND) and, if not yet loaded,
// accepted by this manifest's DependencyMatches (PLUGIN_DEPENDENCY_MISMATCH).
//
// A failure partway through the cascade aborts immediately; dependencies
// already loaded stay loaded. Callers needing all-or-nothing semantics must
// snapshot externally.
func (m *Manager[ID, H]) Load(ctx context.Context, id ID, host H) error {
	ctx, span := m.startSpan(ctx, "hotplug.load", id)
	defer span.End()
	return spanErr(span, m.load(ctx, id, host))
}

func (m *Manager[ID, H]) load(ctx context.Context, id ID, host H) error {
	rec, ok := m.plugins[id]
	if !ok {
		return ErrNotFound(id)
	}
	if rec.instance != nil {
		return nil
	}
	if err := m.loadDependencies(ctx, id, host); err != nil {
		return err
	}
	if rec.ctor == nil {
		return ErrMissingConstructor(id)
	}
	instance := rec.ctor()
	rec.instance = instance
	instance.Load(ctx, m.hooks, host)
	loadsTotal.Inc()
	m.logger.DebugContext(ctx, "plugin loaded", "plugin", id)
	return nil
}

func (m *Manager[ID, H]) loadDependencies(ctx context.Context, id ID, host H) error {
	for _, edge := range m.graph.Dependencies(id) {
		dep := edge.To
		depRec, ok := m.plugins[dep]
		if !ok {
			return ErrDependencyNotFound(id, dep)
		}
		if depRec.instance != nil {
			continue
		}
		if err := m.plugins[id].manifest.DependencyMatches(depRec.manifest); err != nil {
			return ErrDependencyMismatch(id, dep, err)
		}
		if err := m.load(ctx, dep, host); err != nil {
			return err
		}
	}
	return nil
}

// LoadWith loads a registered plugin from a pre-constructed instance,
// bypassing the registered constructor. The dependency cascade is identical
// to Load. No-op if id is already loaded.
func (m *Manager[ID, H]) LoadWith(ctx context.Context, id ID, instance Plugin[ID, H], host H) error {
	ctx, span := m.startSpan(ctx, "hotplug.load_with", id)
	defer span.End()

	rec, ok := m.plugins[id]
	if !ok {
		return spanErr(span, ErrNotFound(id))
	}
	if rec.instance != nil {
		return nil
	}
	if err := m.loadDependencies(ctx, id, host); err != nil {
		return spanErr(span, err)
	}
	rec.instance = instance
	instance.Load(ctx, m.hooks, host)
	loadsTotal.Inc()
	m.logger.DebugContext(ctx, "plugin loaded", "plugin", id)
	return nil
}

// UnloadReport lists the plugins a cascading unload touched, dependents
// ahead of their dependencies.
type UnloadReport[ID comparable] struct {
	// Unloaded are the plugins unloaded, in unload order.
	Unloaded []ID
	// Disabled are the plugins disabled on the way, in disable order.
	Disabled []ID
}

// Unload unloads id and, before it, every plugin that transitively depends
// on it, so no dependent ever observes a vanished-but-loaded dependency.
// Enabled plugins are disabled first. Each unloaded plugin's hooks are
// purged after its unload callback runs. No-op on unknown or unloaded ids.
func (m *Manager[ID, H]) Unload(ctx context.Context, id ID, host H) UnloadReport[ID] {
	ctx, span := m.startSpan(ctx, "hotplug.unload", id)
	defer span.End()

	var report UnloadReport[ID]
	m.unload(ctx, id, host, &report)
	return report
}

func (m *Manager[ID, H]) unload(ctx context.Context, id ID, host H, report *UnloadReport[ID]) {
	rec, ok := m.plugins[id]
	if !ok || rec.instance == nil {
		return
	}
	if rec.enabled {
		m.disable(ctx, id, host, &report.Disabled)
	}
	dependents := m.graph.Dependents(id)
	for i := len(dependents) - 1; i >= 0; i-- {
		m.unload(ctx, dependents[i].From, host, report)
	}
	rec.instance.Unload(ctx, host)
	rec.instance = nil
	m.hooks.RemoveOwner(id)
	report.Unloaded = append(report.Unloaded, id)
	unloadsTotal.Inc()
	m.logger.DebugContext(ctx, "plugin unloaded", "plugin", id)
}

// Enable enables id, auto-loading it if necessary and recursively enabling
// its dependencies first, in declared order. No-op if already enabled. A
// failure partway through leaves already-enabled dependencies enabled.
func (m *Manager[ID, H]) Enable(ctx context.Context, id ID, host H) error {
	ctx, span := m.startSpan(ctx, "hotplug.enable", id)
	defer span.End()
	return spanErr(span, m.enable(ctx, id, host))
}

func (m *Manager[ID, H]) enable(ctx context.Context, id ID, host H) error {
	rec, ok := m.plugins[id]
	if !ok {
		return ErrNotFound(id)
	}
	if rec.enabled {
		return nil
	}
	if err := m.load(ctx, id, host); err != nil {
		return err
	}
	for _, edge := range m.graph.Dependencies(id) {
		if err := m.enable(ctx, edge.To, host); err != nil {
			return err
		}
	}
	rec.instance.Enable(ctx, host)
	rec.enabled = true
	enablesTotal.Inc()
	m.logger.DebugContext(ctx, "plugin enabled", "plugin", id)
	return nil
}

// Disable disables id after disabling every plugin that transitively
// depends on it, dependents in reverse declared order. Returns the set
// disabled, dependents ahead of id. No-op on unknown or disabled ids.
func (m *Manager[ID, H]) Disable(ctx context.Context, id ID, host H) []ID {
	ctx, span := m.startSpan(ctx, "hotplug.disable", id)
	defer span.End()

	var disabled []ID
	m.disable(ctx, id, host, &disabled)
	return disabled
}

func (m *Manager[ID, H]) disable(ctx context.Context, id ID, host H, disabled *[]ID) {
	rec, ok := m.plugins[id]
	if !ok || !rec.enabled {
		return
	}
	dependents := m.graph.Dependents(id)
	for i := len(dependents) - 1; i >= 0; i-- {
		m.disable(ctx, dependents[i].From, host, disabled)
	}
	rec.instance.Disable(ctx, host)
	rec.enabled = false
	*disabled = append(*disabled, id)
	disablesTotal.Inc()
	m.logger.DebugContext(ctx, "plugin disabled", "plugin", id)
}

// Remove runs the full unload cascade for id, destroys its record, and
// prunes its graph node unless other plugins still declare it as a
// dependency; a still-referenced id stays in the graph so later errors can
// name it, though its own outgoing edges are dropped. Reports whether id was
// registered.
func (m *Manager[ID, H]) Remove(ctx context.Context, id ID, host H) (UnloadReport[ID], bool) {
	ctx, span := m.startSpan(ctx, "hotplug.remove", id)
	defer span.End()

	if _, ok := m.plugins[id]; !ok {
		return UnloadReport[ID]{}, false
	}
	var report UnloadReport[ID]
	m.unload(ctx, id, host, &report)
	delete(m.plugins, id)

	if m.graph.InDegree(id) == 0 {
		m.graph.RemoveNode(id)
	} else {
		m.graph.RemoveOutEdges(id)
	}
	m.logger.DebugContext(ctx, "plugin removed", "plugin", id)
	return report, true
}

// Exists reports whether id is registered.
func (m *Manager[ID, H]) Exists(id ID) bool {
	_, ok := m.plugins[id]
	return ok
}

// IsLoaded reports whether id is loaded.
func (m *Manager[ID, H]) IsLoaded(id ID) bool {
	rec, ok := m.plugins[id]
	return ok && rec.instance != nil
}

// IsEnabled reports whether id is enabled.
func (m *Manager[ID, H]) IsEnabled(id ID) bool {
	rec, ok := m.plugins[id]
	return ok && rec.enabled
}

// State returns id's lifecycle state, or false if id is not registered.
func (m *Manager[ID, H]) State(id ID) (State, bool) {
	rec, ok := m.plugins[id]
	switch {
	case !ok:
		return StateRegistered, false
	case rec.enabled:
		return StateEnabled, true
	case rec.instance != nil:
		return StateLoaded, true
	default:
		return StateRegistered, true
	}
}

// ManifestOf returns id's manifest, or false if id is not registered.
func (m *Manager[ID, H]) ManifestOf(id ID) (Manifest[ID], bool) {
	rec, ok := m.plugins[id]
	if !ok {
		return nil, false
	}
	return rec.manifest, true
}

// Count returns the number of registered plugins.
func (m *Manager[ID, H]) Count() int {
	return len(m.plugins)
}

// LoadedCount returns the number of loaded plugins.
func (m *Manager[ID, H]) LoadedCount() int {
	n := 0
	for _, rec := range m.plugins {
		if rec.instance != nil {
			n++
		}
	}
	return n
}

// EnabledCount returns the number of enabled plugins.
func (m *Manager[ID, H]) EnabledCount() int {
	n := 0
	for _, rec := range m.plugins {
		if rec.enabled {
			n++
		}
	}
	return n
}

// IDs returns all registered plugin ids in unspecified order.
func (m *Manager[ID, H]) IDs() []ID {
	ids := make([]ID, 0, len(m.plugins))
	for id := range m.plugins {
		ids = append(ids, id)
	}
	return ids
}

// LoadedIDs returns the ids of loaded plugins in unspecified order.
func (m *Manager[ID, H]) LoadedIDs() []ID {
	var ids []ID
	for id, rec := range m.plugins {
		if rec.instance != nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// EnabledIDs returns the ids of enabled plugins in unspecified order.
func (m *Manager[ID, H]) EnabledIDs() []ID {
	var ids []ID
	for id, rec := range m.plugins {
		if rec.enabled {
			ids = append(ids, id)
		}
	}
	return ids
}

func (m *Manager[ID, H]) startSpan(ctx context.Context, op string, id ID) (context.Context, trace.Span) {
	return tracer.Start(ctx, op,
		trace.WithAttributes(attribute.String("plugin.id", fmt.Sprint(id))),
	)
}

// spanErr records err on span and passes it through.
func spanErr(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
