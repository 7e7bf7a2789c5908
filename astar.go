package roadgraph

import (
	"context"
)

func (engine *Engine) resetSearch() {
	for i := range engine.closed {
		engine.closed[i] = false
		engine.parent[i] = -1
		engine.parentSeg[i] = -1
		engine.cost[i] = 0
	}
	engine.queue.reset()
}

// search runs A* from origin to destination. Returns whether destination has been closed
// and number of closed intersections.
//
// Each frontier entry remembers the segment it has been reached by: that segment is both the
// parent pointer for reconstruction and the incoming segment for turn restriction checks.
func (engine *Engine) search(ctx context.Context, model CostModel, origin, destination int) (bool, int, error) {
	if err := ctx.Err(); err != nil {
		return false, 0, err
	}
	graph := engine.graph
	engine.resetSearch()

	target := &graph.nodes[destination]
	engine.queue.push(frontierEntry{
		node:    origin,
		parent:  -1,
		segment: -1,
		g:       0,
		f:       model.Heuristic(graph, &graph.nodes[origin], target),
	})

	expanded := 0
	iterations := 0
	for engine.queue.Len() > 0 {
		iterations++
		if iterations%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return false, expanded, err
			}
		}
		current := engine.queue.pop()
		if engine.closed[current.node] {
			continue
		}
		engine.closed[current.node] = true
		engine.parent[current.node] = current.parent
		engine.parentSeg[current.node] = current.segment
		engine.cost[current.node] = current.g
		expanded++
		if current.node == destination {
			return true, expanded, nil
		}
		for _, segIdx := range graph.nodes[current.node].segments {
			seg := &graph.segments[segIdx]
			if !seg.traversableFrom(current.node) {
				continue
			}
			next := seg.other(current.node)
			if engine.closed[next] {
				continue
			}
			if graph.isRestricted(current.node, current.segment, segIdx) {
				continue
			}
			arrival := &graph.nodes[next]
			g := current.g + model.EdgeCost(seg, arrival)
			engine.queue.push(frontierEntry{
				node:    next,
				parent:  current.node,
				segment: segIdx,
				g:       g,
				f:       g + model.Heuristic(graph, arrival, target),
			})
		}
	}
	return false, expanded, nil
}
