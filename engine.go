package roadgraph

import (
	"context"

	"github.com/pkg/errors"
)

const (
	// How often (in loop iterations) long running queries check for cancellation
	cancelCheckInterval = 1024
)

// Engine answers route and articulation point queries over immutable graph.
// Queries are serialized: per-node scratch tables are shared between them.
type Engine struct {
	// one slot: holder owns the scratch tables
	busy  chan struct{}
	graph *Graph

	// A* scratch
	closed    []bool
	parent    []int
	parentSeg []int
	cost      []float64
	queue     frontier

	// articulation points scratch
	depth    []int
	reported []bool
	frames   []artFrame
}

// NewEngine returns engine for given graph. Nil graph is accepted: every query will fail with ErrGraphNotBuilt.
func NewEngine(graph *Graph) *Engine {
	engine := &Engine{
		busy:  make(chan struct{}, 1),
		graph: graph,
	}
	if graph == nil {
		return engine
	}
	n := len(graph.nodes)
	engine.closed = make([]bool, n)
	engine.parent = make([]int, n)
	engine.parentSeg = make([]int, n)
	engine.cost = make([]float64, n)
	engine.depth = make([]int, n)
	engine.reported = make([]bool, n)
	return engine
}

// acquire waits for the scratch tables. Waiting stops when ctx is done.
func (engine *Engine) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case engine.busy <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	// Both cases may be ready at once
	if err := ctx.Err(); err != nil {
		engine.release()
		return err
	}
	return nil
}

func (engine *Engine) release() {
	<-engine.busy
}

// Graph returns underlying graph
func (engine *Engine) Graph() *Graph {
	if engine == nil {
		return nil
	}
	return engine.graph
}

// Components returns connected components of underlying graph
func (engine *Engine) Components() ([]Component, error) {
	if engine == nil || engine.graph == nil {
		return nil, ErrGraphNotBuilt
	}
	return engine.graph.Components(), nil
}

// FindPathByDistance returns the shortest path between two intersections
func (engine *Engine) FindPathByDistance(ctx context.Context, origin, destination NodeID) (*Path, error) {
	return engine.FindPath(ctx, DistanceModel, origin, destination)
}

// FindPathByTime returns the fastest path between two intersections
func (engine *Engine) FindPathByTime(ctx context.Context, origin, destination NodeID) (*Path, error) {
	return engine.FindPath(ctx, TimeModel, origin, destination)
}

// FindPath returns path with the lowest cost under given model.
//
// Errors:
//   - ErrGraphNotBuilt when engine has no graph
//   - ErrUnknownNode when origin or destination is not in the graph
//   - ErrDisconnectedRoute when origin and destination belong to different components (no search is done)
//   - ErrUnreachable when one-way roads or turn restrictions leave no path
//   - ctx.Err() when query has been cancelled
func (engine *Engine) FindPath(ctx context.Context, model CostModel, origin, destination NodeID) (*Path, error) {
	if engine == nil || engine.graph == nil {
		return nil, ErrGraphNotBuilt
	}
	if model == nil {
		return nil, errors.New("cost model is not provided")
	}
	graph := engine.graph
	originIdx, ok := graph.nodeIndex[origin]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownNode, "Origin %d", origin)
	}
	destinationIdx, ok := graph.nodeIndex[destination]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownNode, "Destination %d", destination)
	}
	if !graph.sameComponentIdx(originIdx, destinationIdx) {
		return nil, errors.Wrapf(ErrDisconnectedRoute, "%d -> %d", origin, destination)
	}

	if err := engine.acquire(ctx); err != nil {
		return nil, errors.Wrapf(err, "Search %d -> %d has been interrupted", origin, destination)
	}
	defer engine.release()

	found, expanded, err := engine.search(ctx, model, originIdx, destinationIdx)
	if err != nil {
		return nil, errors.Wrapf(err, "Search %d -> %d has been interrupted", origin, destination)
	}
	if !found {
		return nil, errors.Wrapf(ErrUnreachable, "%d -> %d by %s", origin, destination, model.Name())
	}
	path, err := engine.reconstructPath(model, originIdx, destinationIdx)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't reconstruct path %d -> %d", origin, destination)
	}
	path.Expanded = expanded
	return path, nil
}
