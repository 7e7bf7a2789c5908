package roadgraph

import (
	"context"

	"github.com/pkg/errors"
)

// artFrame is explicit stack frame of depth-first traversal
type artFrame struct {
	node  int
	depth int
	low   int
	// position of parent frame in the stack, -1 for children of the component root
	parent     int
	parentNode int
	// position of the next neighbour to look at
	next    int
	entered bool
}

func (engine *Engine) resetArticulation() {
	for i := range engine.depth {
		engine.depth[i] = -1
		engine.reported[i] = false
	}
	engine.frames = engine.frames[:0]
}

// FindArticulationPoints returns intersections whose removal increases number of connected components.
// Points are listed in order of detection, each once.
func (engine *Engine) FindArticulationPoints(ctx context.Context) ([]NodeID, error) {
	if engine == nil || engine.graph == nil {
		return nil, ErrGraphNotBuilt
	}
	if err := engine.acquire(ctx); err != nil {
		return nil, errors.Wrap(err, "Articulation points search has been interrupted")
	}
	defer engine.release()

	engine.resetArticulation()
	graph := engine.graph
	points := []NodeID{}
	iterations := 0
	for _, members := range graph.components.members {
		root := members[0]
		engine.depth[root] = 0
		subtrees := 0
		for _, child := range graph.nodes[root].neighbours {
			if engine.depth[child] >= 0 {
				continue
			}
			subtrees++
			var err error
			points, err = engine.articulationTraverse(ctx, root, child, points, &iterations)
			if err != nil {
				return nil, errors.Wrap(err, "Articulation points search has been interrupted")
			}
		}
		if subtrees > 1 {
			points = engine.reportArticulation(root, points)
		}
	}
	return points, nil
}

func (engine *Engine) reportArticulation(nodeIdx int, points []NodeID) []NodeID {
	if engine.reported[nodeIdx] {
		return points
	}
	engine.reported[nodeIdx] = true
	return append(points, engine.graph.nodes[nodeIdx].ID)
}

// articulationTraverse walks the DFS subtree of root's child without recursion
func (engine *Engine) articulationTraverse(ctx context.Context, root, start int, points []NodeID, iterations *int) ([]NodeID, error) {
	graph := engine.graph
	engine.frames = append(engine.frames[:0], artFrame{
		node:       start,
		depth:      1,
		parent:     -1,
		parentNode: root,
	})
	for len(engine.frames) > 0 {
		*iterations++
		if *iterations%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return points, err
			}
		}
		top := len(engine.frames) - 1
		frame := &engine.frames[top]
		if !frame.entered {
			frame.entered = true
			engine.depth[frame.node] = frame.depth
			frame.low = frame.depth
			continue
		}
		neighbours := graph.nodes[frame.node].neighbours
		if frame.next < len(neighbours) {
			child := neighbours[frame.next]
			frame.next++
			if child == frame.parentNode {
				continue
			}
			if engine.depth[child] >= 0 {
				// Back edge
				if engine.depth[child] < frame.low {
					frame.low = engine.depth[child]
				}
				continue
			}
			engine.frames = append(engine.frames, artFrame{
				node:       child,
				depth:      frame.depth + 1,
				parent:     top,
				parentNode: frame.node,
			})
			continue
		}
		// All children processed
		if frame.parent >= 0 {
			parent := &engine.frames[frame.parent]
			if frame.low >= parent.depth {
				points = engine.reportArticulation(parent.node, points)
			}
			if frame.low < parent.low {
				parent.low = frame.low
			}
		}
		engine.frames = engine.frames[:top]
	}
	return points, nil
}
