// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package luaplugin

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/hotplug"
	"github.com/holomush/hotplug/hook"
)

// Lua functions a script may define. Lifecycle functions are optional; a
// script defining handle is published as a Handler capability on load.
const (
	fnLoad    = "on_load"
	fnUnload  = "on_unload"
	fnEnable  = "on_enable"
	fnDisable = "on_disable"
	fnHandle  = "handle"
)

// Conventional file names for FromDir.
const (
	DescriptorFile = "plugin.yaml"
	EntryFile      = "main.lua"
)

// Handler is the capability a Lua script exposes by defining handle(input).
// Each invocation runs in a fresh sandboxed state.
type Handler func(ctx context.Context, input string) (string, error)

// HandlerSlot is the hook slot Lua plugins publish their Handler into.
var HandlerSlot = hook.NewSlot[Handler]("luaplugin.handler")

// Plugin runs a sandboxed Lua script through the plugin lifecycle. Each
// lifecycle callback and each Handler invocation executes the script in a
// fresh state, so scripts cannot carry mutable state between calls.
//
// H is the host context type of the owning manager; Lua scripts never see
// it.
type Plugin[H any] struct {
	name    string
	code    string
	factory *StateFactory
}

// Interface check against the engine's string-identified plugin contract.
var _ hotplug.Plugin[string, any] = (*Plugin[any])(nil)

// New creates a plugin from Lua source, validating the syntax by executing
// the chunk in a throwaway sandboxed state.
func New[H any](name string, source []byte) (*Plugin[H], error) {
	p := &Plugin[H]{
		name:    name,
		code:    string(source),
		factory: NewStateFactory(),
	}

	L, err := p.factory.NewState(context.Background())
	if err != nil {
		return nil, oops.In("luaplugin").With("plugin", name).Hint("failed to create validation state").Wrap(err)
	}
	defer L.Close()

	if err := L.DoString(p.code); err != nil {
		return nil, oops.In("luaplugin").With("plugin", name).Hint("syntax error").Wrap(err)
	}

	return p, nil
}

// LoadFile creates a plugin from a Lua source file. The plugin name is the
// file's base name without extension.
func LoadFile[H any](path string) (*Plugin[H], error) {
	code, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, oops.In("luaplugin").With("path", path).Hint("failed to read entry file").Wrap(err)
	}
	base := filepath.Base(path)
	name := base[:len(base)-len(filepath.Ext(base))]
	return New[H](name, code)
}

// FromDir reads a plugin directory holding plugin.yaml and main.lua and
// returns the descriptor's manifest together with the script plugin. The
// pair registers directly on a string-identified manager.
func FromDir[H any](dir string) (*hotplug.VersionedManifest, *Plugin[H], error) {
	data, err := os.ReadFile(filepath.Clean(filepath.Join(dir, DescriptorFile)))
	if err != nil {
		return nil, nil, oops.In("luaplugin").With("dir", dir).Hint("failed to read descriptor").Wrap(err)
	}
	d, err := hotplug.ParseDescriptor(data)
	if err != nil {
		return nil, nil, oops.In("luaplugin").With("dir", dir).Wrap(err)
	}
	manifest, err := d.Manifest()
	if err != nil {
		return nil, nil, oops.In("luaplugin").With("dir", dir).Wrap(err)
	}

	code, err := os.ReadFile(filepath.Clean(filepath.Join(dir, EntryFile)))
	if err != nil {
		return nil, nil, oops.In("luaplugin").With("dir", dir).With("plugin", d.Name).Hint("failed to read entry file").Wrap(err)
	}
	p, err := New[H](d.Name, code)
	if err != nil {
		return nil, nil, err
	}
	return manifest, p, nil
}

// Name returns the plugin name used as its hook owner id.
func (p *Plugin[H]) Name() string { return p.name }

// Load runs the script's on_load function if defined and, when the script
// defines handle(input), publishes a Handler into hooks.
func (p *Plugin[H]) Load(ctx context.Context, hooks *hook.Registry[string], _ H) {
	L, err := p.newState(ctx)
	if err != nil {
		slog.Error("lua plugin load failed", "plugin", p.name, "error", err)
		return
	}
	defer L.Close()

	if L.GetGlobal(fnHandle).Type() == lua.LTFunction {
		if err := hook.Register(hooks, HandlerSlot, p.handler(), p.name, ""); err != nil {
			slog.Warn("lua plugin handler not published", "plugin", p.name, "error", err)
		}
	}
	if err := callIfDefined(L, fnLoad); err != nil {
		slog.Warn("lua plugin on_load failed", "plugin", p.name, "error", err)
	}
}

// Unload runs the script's on_unload function if defined.
func (p *Plugin[H]) Unload(ctx context.Context, _ H) { p.run(ctx, fnUnload) }

// Enable runs the script's on_enable function if defined.
func (p *Plugin[H]) Enable(ctx context.Context, _ H) { p.run(ctx, fnEnable) }

// Disable runs the script's on_disable function if defined.
func (p *Plugin[H]) Disable(ctx context.Context, _ H) { p.run(ctx, fnDisable) }

// handler returns the Handler that invokes the script's handle(input).
func (p *Plugin[H]) handler() Handler {
	return func(ctx context.Context, input string) (string, error) {
		L, err := p.newState(ctx)
		if err != nil {
			return "", err
		}
		defer L.Close()

		fn := L.GetGlobal(fnHandle)
		if fn.Type() != lua.LTFunction {
			return "", oops.In("luaplugin").With("plugin", p.name).New("script no longer defines handle")
		}
		if err := L.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, lua.LString(input)); err != nil {
			return "", oops.In("luaplugin").With("plugin", p.name).With("operation", fnHandle).Wrap(err)
		}

		ret := L.Get(-1)
		L.Pop(1)
		if ret.Type() == lua.LTNil {
			return "", nil
		}
		return ret.String(), nil
	}
}

// run executes one lifecycle function in a fresh state, logging failures.
// Lifecycle callbacks have no error channel back to the engine.
func (p *Plugin[H]) run(ctx context.Context, fn string) {
	L, err := p.newState(ctx)
	if err != nil {
		slog.Error("lua plugin state creation failed", "plugin", p.name, "operation", fn, "error", err)
		return
	}
	defer L.Close()

	if err := callIfDefined(L, fn); err != nil {
		slog.Warn("lua plugin lifecycle function failed", "plugin", p.name, "operation", fn, "error", err)
	}
}

// newState creates a sandboxed state with the script already executed.
func (p *Plugin[H]) newState(ctx context.Context) (*lua.LState, error) {
	L, err := p.factory.NewState(ctx)
	if err != nil {
		return nil, oops.In("luaplugin").With("plugin", p.name).Hint("failed to create state").Wrap(err)
	}
	L.SetContext(ctx)
	if err := L.DoString(p.code); err != nil {
		L.Close()
		return nil, oops.In("luaplugin").With("plugin", p.name).Hint("failed to load code").Wrap(err)
	}
	return L, nil
}

func callIfDefined(L *lua.LState, fn string) error {
	g := L.GetGlobal(fn)
	if g.Type() != lua.LTFunction {
		return nil
	}
	return L.CallByParam(lua.P{
		Fn:      g,
		NRet:    0,
		Protect: true,
	})
}
