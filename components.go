package roadgraph

import (
	"fmt"
	"math"
	"time"
)

// Component is a maximal set of intersections connected by segments (one-way flags ignored)
type Component struct {
	ID    int
	Nodes []NodeID
}

// componentIndex keeps per-node component tags for constant time lookups
type componentIndex struct {
	tags    []int
	members [][]int
}

// prepareComponents floods the undirected graph breadth-first. Each flood starts from the first
// unassigned intersection in record order, so the first member of every component is its root.
func (graph *Graph) prepareComponents(verbose bool) {
	if verbose {
		fmt.Printf("Preparing components...")
	}
	st := time.Now()
	n := len(graph.nodes)
	index := &componentIndex{
		tags: make([]int, n),
	}
	depth := make([]int, n)
	for i := range depth {
		depth[i] = math.MaxInt
		index.tags[i] = -1
	}
	queue := make([]int, 0, 64)
	for start := 0; start < n; start++ {
		if depth[start] != math.MaxInt {
			continue
		}
		componentID := len(index.members)
		members := []int{start}
		depth[start] = 0
		index.tags[start] = componentID
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, neighbour := range graph.nodes[current].neighbours {
				if depth[neighbour] != math.MaxInt {
					continue
				}
				depth[neighbour] = depth[current] + 1
				index.tags[neighbour] = componentID
				members = append(members, neighbour)
				queue = append(queue, neighbour)
			}
		}
		index.members = append(index.members, members)
	}
	graph.components = index
	if verbose {
		fmt.Printf("Done in %v\n\tComponents: %d\n", time.Since(st), len(index.members))
	}
}

// Components returns connected components in order of discovery
func (graph *Graph) Components() []Component {
	components := make([]Component, len(graph.components.members))
	for i, members := range graph.components.members {
		nodes := make([]NodeID, len(members))
		for j, idx := range members {
			nodes[j] = graph.nodes[idx].ID
		}
		components[i] = Component{ID: i, Nodes: nodes}
	}
	return components
}

// ComponentsNum returns number of connected components
func (graph *Graph) ComponentsNum() int {
	return len(graph.components.members)
}

// ComponentOf returns identifier of component which given intersection belongs to
func (graph *Graph) ComponentOf(id NodeID) (int, bool) {
	idx, ok := graph.nodeIndex[id]
	if !ok {
		return -1, false
	}
	return graph.components.tags[idx], true
}

// SameComponent checks if there is an undirected path between two intersections.
// Unknown intersections are never in the same component.
func (graph *Graph) SameComponent(a, b NodeID) bool {
	aIdx, ok := graph.nodeIndex[a]
	if !ok {
		return false
	}
	bIdx, ok := graph.nodeIndex[b]
	if !ok {
		return false
	}
	return graph.components.tags[aIdx] == graph.components.tags[bIdx]
}

func (graph *Graph) sameComponentIdx(a, b int) bool {
	return graph.components.tags[a] == graph.components.tags[b]
}
