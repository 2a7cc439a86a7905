// SPDX-License-Identifier: MPL-2.0

// Package dag orders the nodes of a dependency graph. The cargo workspace
// model uses it to list member packages dependencies-first.
package dag

import (
	"fmt"
	"strings"
)

type (
	// CycleError reports nodes that could not be ordered because they sit on
	// or behind a cycle.
	CycleError struct {
		Nodes []string
	}

	// Graph is a directed graph over comparable ids. An edge from A to B
	// means A comes before B.
	Graph[K comparable] struct {
		edges map[K][]K
		// order keeps insertion order so sorting is deterministic.
		order []K
		seen  map[K]struct{}
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Nodes, " -> "))
}

// New returns an empty graph.
func New[K comparable]() *Graph[K] {
	return &Graph[K]{edges: make(map[K][]K), seen: make(map[K]struct{})}
}

// AddNode adds id unless it is already present.
func (g *Graph[K]) AddNode(id K) {
	if _, ok := g.seen[id]; ok {
		return
	}
	g.seen[id] = struct{}{}
	g.order = append(g.order, id)
}

// AddEdge records that from comes before to, adding both nodes.
func (g *Graph[K]) AddEdge(from, to K) {
	g.AddNode(from)
	g.AddNode(to)
	g.edges[from] = append(g.edges[from], to)
}

// Len returns the number of nodes.
func (g *Graph[K]) Len() int {
	return len(g.order)
}

// TopologicalSort orders the nodes with Kahn's algorithm. Nodes that become
// ready together keep their insertion order. A cycle yields *CycleError.
func (g *Graph[K]) TopologicalSort() ([]K, error) {
	if len(g.order) == 0 {
		return nil, nil
	}

	indegree := make(map[K]int, len(g.order))
	for _, targets := range g.edges {
		for _, to := range targets {
			indegree[to]++
		}
	}

	var ready []K
	for _, id := range g.order {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	sorted := make([]K, 0, len(g.order))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		sorted = append(sorted, id)
		for _, to := range g.edges[id] {
			indegree[to]--
			if indegree[to] == 0 {
				ready = append(ready, to)
			}
		}
	}

	if len(sorted) < len(g.order) {
		var stuck []string
		for _, id := range g.order {
			if indegree[id] > 0 {
				stuck = append(stuck, fmt.Sprint(id))
			}
		}
		return nil, &CycleError{Nodes: stuck}
	}
	return sorted, nil
}
