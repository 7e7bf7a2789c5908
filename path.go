package roadgraph

import (
	"github.com/pkg/errors"
)

// Path is a result of route query
type Path struct {
	Origin      NodeID
	Destination NodeID
	// Model is name of cost model path has been found with
	Model string
	// Segments in traversal order
	Segments []*Segment
	// Nodes visited in traversal order. Always has len(Segments)+1 elements.
	Nodes []NodeID
	Steps []Step
	// Length is total length in kilometres
	Length float64
	// Cost is total cost under the model used for search
	Cost float64
	// Duration is total travel time in seconds under the time model
	Duration float64
	// Expanded is number of intersections closed during search
	Expanded int
}

// reconstructPath walks parent pointers from destination back to origin
func (engine *Engine) reconstructPath(model CostModel, origin, destination int) (*Path, error) {
	graph := engine.graph
	nodes := []int{destination}
	segments := []int{}
	for current := destination; current != origin; {
		parent := engine.parent[current]
		segIdx := engine.parentSeg[current]
		if parent < 0 || segIdx < 0 {
			return nil, errors.Wrapf(ErrInternalInvariant, "No parent for node %d", graph.nodes[current].ID)
		}
		if len(segments) >= len(graph.nodes) {
			return nil, errors.Wrap(ErrInternalInvariant, "Parent pointers form a cycle")
		}
		segments = append(segments, segIdx)
		nodes = append(nodes, parent)
		current = parent
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}

	path := &Path{
		Origin:      graph.nodes[origin].ID,
		Destination: graph.nodes[destination].ID,
		Model:       model.Name(),
		Segments:    make([]*Segment, len(segments)),
		Nodes:       make([]NodeID, len(nodes)),
		Cost:        engine.cost[destination],
	}
	for i, idx := range nodes {
		path.Nodes[i] = graph.nodes[idx].ID
	}
	for i, segIdx := range segments {
		seg := &graph.segments[segIdx]
		path.Segments[i] = seg
		path.Length += seg.Length
		path.Duration += TimeModel.EdgeCost(seg, &graph.nodes[nodes[i+1]])
	}
	path.Steps = graph.prepareSteps(nodes, segments)
	return path, nil
}

// SegmentIDs returns identifiers of path segments in traversal order
func (path *Path) SegmentIDs() []SegmentID {
	ids := make([]SegmentID, len(path.Segments))
	for i, seg := range path.Segments {
		ids[i] = seg.ID
	}
	return ids
}

// Geometry returns polyline of the whole path. Segment polylines are reversed when segment
// is traversed from end to start. Segments without polyline contribute their endpoints.
func (path *Path) Geometry(graph *Graph) []GeoPoint {
	line := []GeoPoint{}
	for i, seg := range path.Segments {
		part := segmentGeometry(graph, seg)
		if path.Nodes[i] != seg.Start {
			part = reverseLine(part)
		}
		if len(line) > 0 && len(part) > 0 && line[len(line)-1] == part[0] {
			part = part[1:]
		}
		line = append(line, part...)
	}
	return line
}

func segmentGeometry(graph *Graph, seg *Segment) []GeoPoint {
	if len(seg.Geom) >= 2 {
		return seg.Geom
	}
	return []GeoPoint{graph.nodes[seg.start].Geom, graph.nodes[seg.end].Geom}
}

// reverseLine returns reversed copy of given line
func reverseLine(pts []GeoPoint) []GeoPoint {
	out := make([]GeoPoint, len(pts))
	for i := range pts {
		out[len(pts)-1-i] = pts[i]
	}
	return out
}
