package roadgraph

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineRecords: A=1 (0,0), B=2 (1,0), C=3 (2,0) joined by two-way segments of 1 km
func lineRecords() *Records {
	return &Records{
		Nodes:    []NodeRecord{nodeAt(1, 0, 0), nodeAt(2, 1, 0), nodeAt(3, 2, 0)},
		Roads:    []RoadRecord{twoWayRoad(10)},
		Segments: []SegmentRecord{seg(10, 1, 1, 2), seg(10, 1, 2, 3)},
	}
}

// squareRecords: A=1 (0,0), B=2 (1,0), C=3 (1,1), D=4 (0,1). Every side is a road on its own.
func squareRecords() *Records {
	return &Records{
		Nodes: []NodeRecord{nodeAt(1, 0, 0), nodeAt(2, 1, 0), nodeAt(3, 1, 1), nodeAt(4, 0, 1)},
		Roads: []RoadRecord{twoWayRoad(10), twoWayRoad(11), twoWayRoad(12), twoWayRoad(13)},
		Segments: []SegmentRecord{
			seg(10, 1, 1, 2),
			seg(11, 1, 2, 3),
			seg(12, 1, 3, 4),
			seg(13, 1, 4, 1),
		},
	}
}

// checkPath verifies that path is a connected walk honoring one-way roads and its cost matches the model
func checkPath(t *testing.T, model CostModel, graph *Graph, path *Path) {
	t.Helper()
	require.Len(t, path.Nodes, len(path.Segments)+1)
	assert.Equal(t, path.Origin, path.Nodes[0])
	assert.Equal(t, path.Destination, path.Nodes[len(path.Nodes)-1])
	cost := 0.0
	for i, s := range path.Segments {
		from, to := path.Nodes[i], path.Nodes[i+1]
		assert.True(t, (s.Start == from && s.End == to) || (s.Start == to && s.End == from), "segment %d does not join %d and %d", s.ID, from, to)
		if s.OneWay() {
			assert.Equal(t, s.Start, from, "one-way segment %d traversed backwards", s.ID)
		}
		arrival, _ := graph.Node(to)
		cost += model.EdgeCost(s, arrival)
	}
	assert.InDelta(t, cost, path.Cost, 1e-9)
}

func TestFindPathStraightLine(t *testing.T) {
	engine := NewEngine(buildTestGraph(t, lineRecords()))
	path, err := engine.FindPathByDistance(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []SegmentID{0, 1}, segmentIDs(path))
	assert.Equal(t, []NodeID{1, 2, 3}, path.Nodes)
	assert.InDelta(t, 2.0, path.Length, 1e-9)
	assert.InDelta(t, 2.0, path.Cost, 1e-9)
	assert.Equal(t, "distance", path.Model)
	assert.Greater(t, path.Expanded, 0)
	// Speed class 3 is 60 km/h
	assert.InDelta(t, 120.0, path.Duration, 1e-9)

	// Same route backwards
	path, err = engine.FindPathByDistance(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.Equal(t, []SegmentID{1, 0}, segmentIDs(path))
	assert.Equal(t, []NodeID{3, 2, 1}, path.Nodes)
}

func TestFindPathShortcut(t *testing.T) {
	records := lineRecords()
	records.Segments = append(records.Segments, seg(10, 1.9, 1, 3))
	graph := buildTestGraph(t, records)
	engine := NewEngine(graph)
	path, err := engine.FindPathByDistance(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []SegmentID{2}, segmentIDs(path))
	assert.InDelta(t, 1.9, path.Length, 1e-9)
	checkPath(t, DistanceModel, graph, path)
}

func TestFindPathOneWay(t *testing.T) {
	graph := buildTestGraph(t, triangleRecords())
	engine := NewEngine(graph)

	// A -> B directly along one-way
	path, err := engine.FindPathByDistance(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []SegmentID{0}, segmentIDs(path))

	// B -> A has to go around through C
	path, err = engine.FindPathByDistance(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []SegmentID{1, 2}, segmentIDs(path))
	assert.Equal(t, []NodeID{2, 3, 1}, path.Nodes)
	checkPath(t, DistanceModel, graph, path)
}

func TestFindPathUnreachable(t *testing.T) {
	records := &Records{
		Nodes:    []NodeRecord{nodeAt(1, 0, 0), nodeAt(2, 1, 0)},
		Roads:    []RoadRecord{oneWayRoad(10)},
		Segments: []SegmentRecord{seg(10, 1, 1, 2)},
	}
	engine := NewEngine(buildTestGraph(t, records))
	_, err := engine.FindPathByDistance(context.Background(), 2, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Equal(t, ERROR_UNREACHABLE, KindOf(err))
}

func TestFindPathTurnRestriction(t *testing.T) {
	records := squareRecords()
	records.Restrictions = []RestrictionRecord{{N1: 1, R1: 10, N: 2, R2: 11, N2: 3}}
	graph := buildTestGraph(t, records)
	engine := NewEngine(graph)

	path, err := engine.FindPathByDistance(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{1, 4, 3}, path.Nodes)
	assert.Equal(t, []SegmentID{3, 2}, segmentIDs(path))
	checkPath(t, DistanceModel, graph, path)

	// Restriction applies only when arriving along the restricted road
	path, err = engine.FindPathByDistance(context.Background(), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []SegmentID{1}, segmentIDs(path))

	// Opposite direction is not restricted
	path, err = engine.FindPathByDistance(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.Len(t, path.Segments, 2)
}

func TestFindPathTurnRestrictionReversedSegments(t *testing.T) {
	// A-B is stored as B->A and B-C as C->B, both are traversed the other way
	records := squareRecords()
	records.Segments[0] = seg(10, 1, 2, 1)
	records.Segments[1] = seg(11, 1, 3, 2)
	records.Restrictions = []RestrictionRecord{{N1: 1, R1: 10, N: 2, R2: 11, N2: 3}}
	graph := buildTestGraph(t, records)
	engine := NewEngine(graph)

	path, err := engine.FindPathByDistance(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{1, 4, 3}, path.Nodes)
	checkPath(t, DistanceModel, graph, path)

	// Without restriction both ways around the square are 2 km long
	records.Restrictions = nil
	path, err = NewEngine(buildTestGraph(t, records)).FindPathByDistance(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Len(t, path.Segments, 2)
}

func TestFindPathTurnRestrictionUnreachable(t *testing.T) {
	// The only exit from B toward C is forbidden
	records := lineRecords()
	records.Roads = append(records.Roads, twoWayRoad(11))
	records.Segments[1].RoadID = 11
	records.Restrictions = []RestrictionRecord{{N1: 1, R1: 10, N: 2, R2: 11, N2: 3}}
	engine := NewEngine(buildTestGraph(t, records))
	_, err := engine.FindPathByDistance(context.Background(), 1, 3)
	assert.ErrorIs(t, err, ErrUnreachable)
	_, err = engine.FindPathByDistance(context.Background(), 3, 1)
	assert.NoError(t, err)
}

func TestFindPathDisconnected(t *testing.T) {
	engine := NewEngine(buildTestGraph(t, twoTrianglesRecords()))
	path, err := engine.FindPathByDistance(context.Background(), 1, 5)
	assert.Nil(t, path)
	assert.ErrorIs(t, err, ErrDisconnectedRoute)
	assert.Equal(t, ERROR_DISCONNECTED_ROUTE, KindOf(err))
	_, err = engine.FindPathByTime(context.Background(), 6, 2)
	assert.ErrorIs(t, err, ErrDisconnectedRoute)
}

func TestFindPathUnknownNode(t *testing.T) {
	engine := NewEngine(buildTestGraph(t, lineRecords()))
	_, err := engine.FindPathByDistance(context.Background(), 42, 1)
	assert.ErrorIs(t, err, ErrUnknownNode)
	_, err = engine.FindPathByDistance(context.Background(), 1, 42)
	assert.ErrorIs(t, err, ErrUnknownNode)
	assert.Equal(t, ERROR_UNKNOWN_NODE, KindOf(err))
}

func TestFindPathGraphNotBuilt(t *testing.T) {
	engine := NewEngine(nil)
	_, err := engine.FindPathByDistance(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrGraphNotBuilt)
	_, err = engine.Components()
	assert.ErrorIs(t, err, ErrGraphNotBuilt)
	assert.Nil(t, engine.Graph())
}

func TestFindPathSameNode(t *testing.T) {
	engine := NewEngine(buildTestGraph(t, lineRecords()))
	path, err := engine.FindPathByTime(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Empty(t, path.Segments)
	assert.Empty(t, path.Steps)
	assert.Equal(t, []NodeID{2}, path.Nodes)
	assert.Equal(t, 0.0, path.Cost)
	assert.Equal(t, 0.0, path.Length)
}

func TestFindPathByTimeTrafficLight(t *testing.T) {
	records := lineRecords()
	// Direct road is a bit longer than the detour through B
	records.Segments = append(records.Segments, seg(10, 2.05, 1, 3))
	records.TrafficLights = []TrafficLightRecord{{Lat: 0, Lon: 1 / kmPerDegree}}
	graph := buildTestGraph(t, records)
	engine := NewEngine(graph)

	path, err := engine.FindPathByDistance(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{1, 2, 3}, path.Nodes)

	// 60 + 5 + 60 seconds through the light against 123 seconds along the direct road
	path, err = engine.FindPathByTime(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{1, 3}, path.Nodes)
	assert.Equal(t, "time", path.Model)
	assert.InDelta(t, 123.0, path.Cost, 1e-9)
	assert.InDelta(t, 123.0, path.Duration, 1e-9)
	checkPath(t, TimeModel, graph, path)
}

func TestFindPathCancelled(t *testing.T) {
	engine := NewEngine(buildTestGraph(t, lineRecords()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := engine.FindPathByDistance(ctx, 1, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ERROR_CANCELLED, KindOf(err))

	// Engine stays usable
	path, err := engine.FindPathByDistance(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Len(t, path.Segments, 2)
}

func TestFindPathWaitsForBusyEngine(t *testing.T) {
	engine := NewEngine(buildTestGraph(t, lineRecords()))
	// Another query holds the scratch tables
	engine.busy <- struct{}{}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := engine.FindPathByDistance(ctx, 1, 3)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	_, err = engine.FindArticulationPoints(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	engine.release()
	path, err := engine.FindPathByDistance(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{1, 2, 3}, path.Nodes)
}

func TestFindPathByTimeArterialChain(t *testing.T) {
	// 20 short motorway segments from 1 to 21 and a direct 2 km segment of the same road.
	// Every short one costs 0 s after the road class discount.
	records := &Records{
		Roads: []RoadRecord{{ID: 10, Label: "Motorway", Speed: 7, RoadClass: 4}},
	}
	for i := 0; i <= 20; i++ {
		records.Nodes = append(records.Nodes, nodeAt(NodeID(i+1), float64(i)*0.1, 0))
	}
	for i := 1; i <= 20; i++ {
		records.Segments = append(records.Segments, seg(10, 0.1, NodeID(i), NodeID(i+1)))
	}
	records.Segments = append(records.Segments, seg(10, 2.0, 1, 21))
	graph := buildTestGraph(t, records)

	path, err := NewEngine(graph).FindPathByTime(context.Background(), 1, 21)
	require.NoError(t, err)
	assert.Equal(t, 0.0, path.Cost)
	assert.Len(t, path.Segments, 20)
	assert.Equal(t, 0.0, dijkstraOracle(graph, TimeModel, 1, 21))
	checkPath(t, TimeModel, graph, path)
}

func TestFindPathNilModel(t *testing.T) {
	engine := NewEngine(buildTestGraph(t, lineRecords()))
	_, err := engine.FindPath(context.Background(), nil, 1, 3)
	assert.Error(t, err)
}

func TestFindPathAgainstDijkstra(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for iter := 0; iter < 10; iter++ {
		graph := buildTestGraph(t, randomRecords(rnd, 60, 150, 0.3))
		engine := NewEngine(graph)
		for _, model := range []CostModel{DistanceModel, TimeModel} {
			for q := 0; q < 30; q++ {
				origin := NodeID(1 + rnd.Intn(60))
				destination := NodeID(1 + rnd.Intn(60))
				name := fmt.Sprintf("%d/%s/%d->%d", iter, model.Name(), origin, destination)
				expected := dijkstraOracle(graph, model, origin, destination)
				path, err := engine.FindPath(context.Background(), model, origin, destination)
				if expected < 0 {
					require.Error(t, err, name)
					kind := KindOf(err)
					assert.True(t, kind == ERROR_DISCONNECTED_ROUTE || kind == ERROR_UNREACHABLE, name)
					continue
				}
				require.NoError(t, err, name)
				assert.InDelta(t, expected, path.Cost, 1e-6, name)
				checkPath(t, model, graph, path)
			}
		}
	}
}

func TestFindPathDeterministic(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	records := randomRecords(rnd, 80, 200, 0.2)
	first := NewEngine(buildTestGraph(t, records))
	second := NewEngine(buildTestGraph(t, records))
	for q := 0; q < 50; q++ {
		origin := NodeID(1 + rnd.Intn(80))
		destination := NodeID(1 + rnd.Intn(80))
		a, errA := first.FindPathByTime(context.Background(), origin, destination)
		b, errB := second.FindPathByTime(context.Background(), origin, destination)
		assert.Equal(t, KindOf(errA), KindOf(errB))
		if errA != nil {
			continue
		}
		assert.Equal(t, a.SegmentIDs(), b.SegmentIDs())
		assert.Equal(t, a.Expanded, b.Expanded)
	}
}

func TestFindPathConcurrent(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	records := randomRecords(rnd, 50, 150, 0.2)
	graph := buildTestGraph(t, records)
	engine := NewEngine(graph)

	type query struct{ origin, destination NodeID }
	queries := make([]query, 40)
	expected := make([]float64, len(queries))
	for i := range queries {
		queries[i] = query{NodeID(1 + rnd.Intn(50)), NodeID(1 + rnd.Intn(50))}
		expected[i] = dijkstraOracle(graph, DistanceModel, queries[i].origin, queries[i].destination)
	}
	results := make([]float64, len(queries))
	var wg sync.WaitGroup
	for i := range queries {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path, err := engine.FindPathByDistance(context.Background(), queries[i].origin, queries[i].destination)
			if err != nil {
				results[i] = -1
				return
			}
			results[i] = path.Cost
		}(i)
	}
	wg.Wait()
	for i := range queries {
		assert.InDelta(t, expected[i], results[i], 1e-6, "query %d", i)
	}
}

func BenchmarkFindPath(b *testing.B) {
	rnd := rand.New(rand.NewSource(1))
	graph := buildTestGraph(b, randomRecords(rnd, 2000, 6000, 0.1))
	engine := NewEngine(graph)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = engine.FindPathByDistance(context.Background(), NodeID(1+i%2000), NodeID(1+(i*7)%2000))
	}
}
