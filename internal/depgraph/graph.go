// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package depgraph implements the directed dependency graph backing plugin
// lifecycle ordering. Edges carry the index of the dependency in the
// dependent's declared list, so cascades can honor declaration order instead
// of map iteration order.
package depgraph

import (
	"slices"
	"sort"
)

// Edge is a directed "requires" relation: From depends on To. Index is the
// position of To in From's declared dependency list.
type Edge[ID comparable] struct {
	From  ID
	To    ID
	Index int
}

// Graph is a directed graph over plugin ids. It is not safe for concurrent
// use; callers serialize access.
type Graph[ID comparable] struct {
	nodes map[ID]struct{}
	out   map[ID][]Edge[ID]
	in    map[ID][]Edge[ID]
}

// New creates an empty graph.
func New[ID comparable]() *Graph[ID] {
	return &Graph[ID]{
		nodes: make(map[ID]struct{}),
		out:   make(map[ID][]Edge[ID]),
		in:    make(map[ID][]Edge[ID]),
	}
}

// AddNode inserts id and reports whether it was newly created.
func (g *Graph[ID]) AddNode(id ID) bool {
	if _, ok := g.nodes[id]; ok {
		return false
	}
	g.nodes[id] = struct{}{}
	return true
}

// HasNode reports whether id is present.
func (g *Graph[ID]) HasNode(id ID) bool {
	_, ok := g.nodes[id]
	return ok
}

// AddEdge records that from depends on to at the given declared index. Both
// endpoints must already be nodes. Re-adding an existing (from, to) pair
// replaces its index, so a dependency declared twice keeps only the last
// declaration's position.
func (g *Graph[ID]) AddEdge(from, to ID, index int) {
	for i, e := range g.out[from] {
		if e.To == to {
			g.out[from][i].Index = index
			for j, r := range g.in[to] {
				if r.From == from {
					g.in[to][j].Index = index
					break
				}
			}
			return
		}
	}
	e := Edge[ID]{From: from, To: to, Index: index}
	g.out[from] = append(g.out[from], e)
	g.in[to] = append(g.in[to], e)
}

// RemoveEdge deletes the (from, to) edge if present.
func (g *Graph[ID]) RemoveEdge(from, to ID) {
	g.out[from] = slices.DeleteFunc(g.out[from], func(e Edge[ID]) bool { return e.To == to })
	if len(g.out[from]) == 0 {
		delete(g.out, from)
	}
	g.in[to] = slices.DeleteFunc(g.in[to], func(e Edge[ID]) bool { return e.From == from })
	if len(g.in[to]) == 0 {
		delete(g.in, to)
	}
}

// RemoveNode deletes id and every edge incident to it.
func (g *Graph[ID]) RemoveNode(id ID) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	for _, e := range slices.Clone(g.out[id]) {
		g.RemoveEdge(id, e.To)
	}
	for _, e := range slices.Clone(g.in[id]) {
		g.RemoveEdge(e.From, id)
	}
	delete(g.nodes, id)
}

// RemoveOutEdges deletes every outgoing edge of id, keeping the node.
func (g *Graph[ID]) RemoveOutEdges(id ID) {
	for _, e := range slices.Clone(g.out[id]) {
		g.RemoveEdge(id, e.To)
	}
}

// InDegree returns the number of edges pointing at id, i.e. the number of
// plugins that declare id as a dependency.
func (g *Graph[ID]) InDegree(id ID) int {
	return len(g.in[id])
}

// Dependencies returns id's outgoing edges sorted ascending by declared
// index. The result is a copy.
func (g *Graph[ID]) Dependencies(id ID) []Edge[ID] {
	edges := slices.Clone(g.out[id])
	slices.SortStableFunc(edges, func(a, b Edge[ID]) int { return a.Index - b.Index })
	return edges
}

// Dependents returns the edges from plugins depending on id, sorted
// ascending by each dependent's declared index. The result is a copy.
func (g *Graph[ID]) Dependents(id ID) []Edge[ID] {
	edges := slices.Clone(g.in[id])
	slices.SortStableFunc(edges, func(a, b Edge[ID]) int { return a.Index - b.Index })
	return edges
}

// NodeCount returns the number of nodes.
func (g *Graph[ID]) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph[ID]) EdgeCount() int {
	n := 0
	for _, edges := range g.out {
		n += len(edges)
	}
	return n
}

// HasCycle reports whether the graph contains a directed cycle.
func (g *Graph[ID]) HasCycle() bool {
	visited := make(map[ID]bool, len(g.nodes))
	onStack := make(map[ID]bool)

	var visit func(ID) bool
	visit = func(id ID) bool {
		visited[id] = true
		onStack[id] = true
		for _, e := range g.out[id] {
			if onStack[e.To] {
				return true
			}
			if !visited[e.To] && visit(e.To) {
				return true
			}
		}
		onStack[id] = false
		return false
	}

	for id := range g.nodes {
		if !visited[id] && visit(id) {
			return true
		}
	}
	return false
}

// Sorted returns a dependency-first topological order of all nodes, or false
// if the graph is cyclic. Ties are broken by the provided less function so
// the order is deterministic regardless of insertion history.
func (g *Graph[ID]) Sorted(less func(a, b ID) bool) ([]ID, bool) {
	indeg := make(map[ID]int, len(g.nodes))
	for id := range g.nodes {
		// A node's dependencies must come first, so seed with out-degree and
		// release dependents as their dependencies are emitted.
		indeg[id] = len(g.out[id])
	}

	var ready []ID
	for id, d := range indeg {
		if d == 0 {
			ready = append(ready, id)
		}
	}
	sortIDs(ready, less)

	order := make([]ID, 0, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, e := range g.in[id] {
			indeg[e.From]--
			if indeg[e.From] == 0 {
				ready = append(ready, e.From)
				sortIDs(ready, less)
			}
		}
	}
	if len(order) != len(g.nodes) {
		return nil, false
	}
	return order, true
}

func sortIDs[ID comparable](ids []ID, less func(a, b ID) bool) {
	if less == nil {
		return
	}
	sort.Slice(ids, func(i, j int) bool { return less(ids[i], ids[j]) })
}
