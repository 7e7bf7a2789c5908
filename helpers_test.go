package roadgraph

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// nodeAt places intersection at (x, y) kilometres from (0, 0)
func nodeAt(id NodeID, x, y float64) NodeRecord {
	return NodeRecord{ID: id, Lat: y / kmPerDegree, Lon: x / kmPerDegree}
}

func twoWayRoad(id RoadID) RoadRecord {
	return RoadRecord{ID: id, Label: "Road", Speed: 3}
}

func oneWayRoad(id RoadID) RoadRecord {
	return RoadRecord{ID: id, Label: "Road", Speed: 3, OneWay: 1}
}

func seg(road RoadID, length float64, start, end NodeID) SegmentRecord {
	return SegmentRecord{RoadID: road, Length: length, StartNodeID: start, EndNodeID: end}
}

func buildTestGraph(t testing.TB, records *Records) *Graph {
	t.Helper()
	graph, err := Build(records, WithProjectionOrigin(GeoPoint{}))
	require.NoError(t, err)
	return graph
}

func segmentIDs(path *Path) []SegmentID {
	return path.SegmentIDs()
}

// randomRecords generates graph with n intersections on a 10x10 km square.
// Every segment is not shorter than the straight line between its ends.
// Road classes are random, some roads are one-way.
func randomRecords(rnd *rand.Rand, n, m int, oneWayShare float64) *Records {
	records := &Records{}
	for i := 0; i < n; i++ {
		records.Nodes = append(records.Nodes, nodeAt(NodeID(i+1), rnd.Float64()*10, rnd.Float64()*10))
	}
	for i := 0; i < m; i++ {
		a := rnd.Intn(n)
		b := rnd.Intn(n)
		if a == b {
			continue
		}
		road := RoadRecord{ID: RoadID(i + 1), Label: "Road", Speed: 1 + rnd.Intn(7), RoadClass: rnd.Intn(5)}
		if rnd.Float64() < oneWayShare {
			road.OneWay = 1
		}
		records.Roads = append(records.Roads, road)
		pa, pb := records.Nodes[a], records.Nodes[b]
		straight := Location{X: pa.Lon * kmPerDegree, Y: pa.Lat * kmPerDegree}.Distance(Location{X: pb.Lon * kmPerDegree, Y: pb.Lat * kmPerDegree})
		records.Segments = append(records.Segments, seg(road.ID, straight*(1.001+rnd.Float64()), pa.ID, pb.ID))
	}
	return records
}

// dijkstraOracle returns minimal cost between two intersections by plain Dijkstra over traversable segments.
// Turn restrictions are not supported. Returns -1 when there is no path.
func dijkstraOracle(graph *Graph, model CostModel, origin, destination NodeID) float64 {
	const inf = -1.0
	n := graph.NodesNum()
	dist := make([]float64, n)
	done := make([]bool, n)
	for i := range dist {
		dist[i] = inf
	}
	src := graph.nodeIndex[origin]
	dst := graph.nodeIndex[destination]
	dist[src] = 0
	for {
		current := -1
		for i := 0; i < n; i++ {
			if done[i] || dist[i] == inf {
				continue
			}
			if current < 0 || dist[i] < dist[current] {
				current = i
			}
		}
		if current < 0 {
			return inf
		}
		if current == dst {
			return dist[current]
		}
		done[current] = true
		for _, segIdx := range graph.nodes[current].segments {
			s := &graph.segments[segIdx]
			if !s.traversableFrom(current) {
				continue
			}
			next := s.other(current)
			cost := dist[current] + model.EdgeCost(s, &graph.nodes[next])
			if dist[next] == inf || cost < dist[next] {
				dist[next] = cost
			}
		}
	}
}
