// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package depgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/hotplug/internal/depgraph"
)

func build(t *testing.T, deps map[string][]string) *depgraph.Graph[string] {
	t.Helper()
	g := depgraph.New[string]()
	for id, dd := range deps {
		g.AddNode(id)
		for i, d := range dd {
			g.AddNode(d)
			g.AddEdge(id, d, i)
		}
	}
	return g
}

func TestGraph_AddNode(t *testing.T) {
	g := depgraph.New[string]()
	assert.True(t, g.AddNode("a"))
	assert.False(t, g.AddNode("a"), "second insert reports existing node")
	assert.True(t, g.HasNode("a"))
	assert.False(t, g.HasNode("b"))
	assert.Equal(t, 1, g.NodeCount())
}

func TestGraph_DependenciesSortedByDeclaredIndex(t *testing.T) {
	g := depgraph.New[string]()
	for _, id := range []string{"app", "net", "core", "ui"} {
		g.AddNode(id)
	}
	// Insert out of declared order on purpose.
	g.AddEdge("app", "ui", 2)
	g.AddEdge("app", "core", 0)
	g.AddEdge("app", "net", 1)

	deps := g.Dependencies("app")
	require.Len(t, deps, 3)
	assert.Equal(t, "core", deps[0].To)
	assert.Equal(t, "net", deps[1].To)
	assert.Equal(t, "ui", deps[2].To)
}

func TestGraph_DuplicateEdgeReplacesIndex(t *testing.T) {
	g := depgraph.New[string]()
	g.AddNode("a")
	g.AddNode("b")
	g.AddEdge("a", "b", 0)
	g.AddEdge("a", "b", 3)

	require.Equal(t, 1, g.EdgeCount())
	deps := g.Dependencies("a")
	require.Len(t, deps, 1)
	assert.Equal(t, 3, deps[0].Index)
	assert.Equal(t, 1, g.InDegree("b"))
}

func TestGraph_Dependents(t *testing.T) {
	g := build(t, map[string][]string{
		"ui":  {"core"},
		"net": {"misc", "core"},
	})

	deps := g.Dependents("core")
	require.Len(t, deps, 2)
	// ui declares core at index 0, net at index 1.
	assert.Equal(t, "ui", deps[0].From)
	assert.Equal(t, "net", deps[1].From)
	assert.Equal(t, 2, g.InDegree("core"))
}

func TestGraph_HasCycle(t *testing.T) {
	tests := []struct {
		name string
		deps map[string][]string
		want bool
	}{
		{name: "empty", deps: nil, want: false},
		{name: "chain", deps: map[string][]string{"a": {"b"}, "b": {"c"}}, want: false},
		{name: "diamond", deps: map[string][]string{"a": {"b", "c"}, "b": {"d"}, "c": {"d"}}, want: false},
		{name: "self loop", deps: map[string][]string{"a": {"a"}}, want: true},
		{name: "two cycle", deps: map[string][]string{"a": {"b"}, "b": {"a"}}, want: true},
		{name: "long cycle", deps: map[string][]string{"a": {"b"}, "b": {"c"}, "c": {"d"}, "d": {"a"}}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, build(t, tt.deps).HasCycle())
		})
	}
}

func TestGraph_RemoveEdgeAndNode(t *testing.T) {
	g := build(t, map[string][]string{"a": {"b"}, "b": {"c"}})

	g.RemoveEdge("a", "b")
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 0, g.InDegree("b"))
	assert.True(t, g.HasNode("b"), "removing an edge keeps its endpoints")

	g.RemoveNode("b")
	assert.False(t, g.HasNode("b"))
	assert.Equal(t, 0, g.EdgeCount())
	assert.Equal(t, 0, g.InDegree("c"))
}

func TestGraph_RemoveOutEdges(t *testing.T) {
	g := build(t, map[string][]string{"a": {"b", "c"}, "d": {"a"}})

	g.RemoveOutEdges("a")
	assert.True(t, g.HasNode("a"))
	assert.Empty(t, g.Dependencies("a"))
	assert.Equal(t, 1, g.InDegree("a"), "incoming edges survive")
}

func TestGraph_Sorted(t *testing.T) {
	g := build(t, map[string][]string{
		"app": {"ui", "net"},
		"ui":  {"core"},
		"net": {"core"},
	})

	order, ok := g.Sorted(func(a, b string) bool { return a < b })
	require.True(t, ok)
	require.Len(t, order, 4)
	assert.Equal(t, "core", order[0])

	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	assert.Less(t, pos["core"], pos["ui"])
	assert.Less(t, pos["core"], pos["net"])
	assert.Less(t, pos["ui"], pos["app"])
	assert.Less(t, pos["net"], pos["app"])
}

func TestGraph_SortedCyclic(t *testing.T) {
	g := build(t, map[string][]string{"a": {"b"}, "b": {"a"}})
	_, ok := g.Sorted(nil)
	assert.False(t, ok)
}

func TestGraph_SortedDeterministic(t *testing.T) {
	g := build(t, map[string][]string{"z": nil, "m": nil, "a": nil})
	order, ok := g.Sorted(func(a, b string) bool { return a < b })
	require.True(t, ok)
	assert.Equal(t, []string{"a", "m", "z"}, order)
}
