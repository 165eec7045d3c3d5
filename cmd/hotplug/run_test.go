// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upperScript = `
function handle(input)
	return string.upper(input)
end
`

const reverseScript = `
function handle(input)
	return string.reverse(input)
end
`

func TestRun_InvokesHandlers(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "upper", "name: upper\nversion: 1.0.0\n", upperScript)
	writePlugin(t, root, "reverse", "name: reverse\nversion: 1.0.0\n", reverseScript)

	out, err := execute(t, "run", "--plugins-dir", root, "--input", "abc")
	require.NoError(t, err)
	assert.Contains(t, out, "upper: ABC")
	assert.Contains(t, out, "reverse: cba")
}

func TestRun_OnlyFilter(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "upper", "name: upper\nversion: 1.0.0\n", upperScript)
	writePlugin(t, root, "reverse", "name: reverse\nversion: 1.0.0\n", reverseScript)

	out, err := execute(t, "run", "--plugins-dir", root, "--input", "abc", "--only", "up*")
	require.NoError(t, err)
	assert.Contains(t, out, "upper: ABC")
	assert.NotContains(t, out, "reverse:")
}

func TestRun_DependenciesEnableFirst(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "core", "name: core\nversion: 1.4.0\n", "ready = true\n")
	writePlugin(t, root, "chat", `
name: chat
version: 1.0.0
dependencies:
  - name: core
    constraint: ">=1.0.0 <2"
`, upperScript)

	out, err := execute(t, "run", "--plugins-dir", root, "--input", "hi")
	require.NoError(t, err)
	assert.Contains(t, out, "chat: HI")
}

func TestRun_ConstraintViolationFails(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "core", "name: core\nversion: 2.0.0\n", "ready = true\n")
	writePlugin(t, root, "chat", `
name: chat
version: 1.0.0
dependencies:
  - name: core
    constraint: "<2.0.0"
`, upperScript)

	_, err := execute(t, "run", "--plugins-dir", root, "--input", "hi")
	require.Error(t, err)
}

func TestRun_HandlerErrorPropagates(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "angry", "name: angry\nversion: 1.0.0\n", `
function handle(input)
	error("always fails")
end
`)

	out, err := execute(t, "run", "--plugins-dir", root, "--input", "hi")
	require.Error(t, err)
	assert.Contains(t, out, "angry: error:")
}

func TestRun_ConfigFileProvidesDefaults(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "upper", "name: upper\nversion: 1.0.0\n", upperScript)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"plugins-dir: "+root+"\ninput: hello\n"), 0o600))

	out, err := execute(t, "run", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "upper: HELLO")
}
