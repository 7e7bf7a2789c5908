package roadgraph

import (
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
)

// Graph is an immutable road network. Nodes and segments are stored in contiguous slices
// and refer to each other by position.
type Graph struct {
	nodes        []Intersection
	segments     []Segment
	roads        []*Road
	restrictions []TurnRestriction

	nodeIndex map[NodeID]int
	roadIndex map[RoadID]*Road

	projection Projection
	components *componentIndex

	// lower bound of time cost per kilometre, see TimeCost.Heuristic
	timeRate float64
}

type buildConfig struct {
	verbose bool
	origin  GeoPoint
}

// BuildOption configures graph construction
type BuildOption func(*buildConfig)

// WithVerbose enables progress printing during construction
func WithVerbose(verbose bool) BuildOption {
	return func(cfg *buildConfig) {
		cfg.verbose = verbose
	}
}

// WithProjectionOrigin sets reference point of planar projection
func WithProjectionOrigin(origin GeoPoint) BuildOption {
	return func(cfg *buildConfig) {
		cfg.origin = origin
	}
}

// Build constructs graph from parsed records: wires incidence sets, attaches turn restrictions
// to their pivot intersections, marks intersections nearest to traffic lights and computes
// connected components.
func Build(records *Records, options ...BuildOption) (*Graph, error) {
	if records == nil {
		return nil, errors.Wrap(ErrMalformedInput, "No records provided")
	}
	cfg := buildConfig{
		origin: DefaultProjectionOrigin,
	}
	for _, option := range options {
		option(&cfg)
	}
	graph := &Graph{
		nodeIndex:  make(map[NodeID]int, len(records.Nodes)),
		roadIndex:  make(map[RoadID]*Road, len(records.Roads)),
		projection: NewProjection(cfg.origin),
	}
	err := graph.prepareNodes(records.Nodes, cfg.verbose)
	if err != nil {
		return nil, errors.Wrap(err, "Can't prepare nodes")
	}
	err = graph.prepareRoads(records.Roads, cfg.verbose)
	if err != nil {
		return nil, errors.Wrap(err, "Can't prepare roads")
	}
	err = graph.prepareSegments(records.Segments, cfg.verbose)
	if err != nil {
		return nil, errors.Wrap(err, "Can't prepare segments")
	}
	graph.timeRate = minTimeRate(graph.segments)
	err = graph.prepareRestrictions(records.Restrictions, cfg.verbose)
	if err != nil {
		return nil, errors.Wrap(err, "Can't prepare restrictions")
	}
	graph.attachTrafficLights(records.TrafficLights, cfg.verbose)
	graph.prepareComponents(cfg.verbose)
	return graph, nil
}

func (graph *Graph) prepareNodes(records []NodeRecord, verbose bool) error {
	if verbose {
		fmt.Printf("Preparing nodes...")
	}
	st := time.Now()
	graph.nodes = make([]Intersection, 0, len(records))
	for i, rec := range records {
		if _, ok := graph.nodeIndex[rec.ID]; ok {
			return errors.Wrapf(ErrMalformedInput, "Duplicate node with id: %d", rec.ID)
		}
		if math.IsNaN(rec.Lat) || math.IsNaN(rec.Lon) {
			return errors.Wrapf(ErrMalformedInput, "Node with id %d has no coordinates", rec.ID)
		}
		geom := GeoPoint{Lat: rec.Lat, Lon: rec.Lon}
		graph.nodes = append(graph.nodes, Intersection{
			ID:       rec.ID,
			Geom:     geom,
			Location: graph.projection.Project(geom),
			idx:      i,
		})
		graph.nodeIndex[rec.ID] = i
	}
	if verbose {
		fmt.Printf("Done in %v\n\tNodes: %d\n", time.Since(st), len(graph.nodes))
	}
	return nil
}

func (graph *Graph) prepareRoads(records []RoadRecord, verbose bool) error {
	if verbose {
		fmt.Printf("Preparing roads...")
	}
	st := time.Now()
	graph.roads = make([]*Road, 0, len(records))
	for _, rec := range records {
		if _, ok := graph.roadIndex[rec.ID]; ok {
			return errors.Wrapf(ErrMalformedInput, "Duplicate road with id: %d", rec.ID)
		}
		if rec.OneWay != 0 && rec.OneWay != 1 {
			return errors.Wrapf(ErrMalformedInput, "Road %d has bad oneway flag: %d", rec.ID, rec.OneWay)
		}
		if rec.Speed < 0 || rec.Speed > int(MaxSpeedClass) {
			return errors.Wrapf(ErrMalformedInput, "Road %d has speed class out of range: %d", rec.ID, rec.Speed)
		}
		if rec.RoadClass < 0 || rec.RoadClass > int(MaxRoadClass) {
			return errors.Wrapf(ErrMalformedInput, "Road %d has road class out of range: %d", rec.ID, rec.RoadClass)
		}
		road := &Road{
			ID:               rec.ID,
			Type:             rec.Type,
			Name:             rec.Label,
			City:             rec.City,
			OneWay:           rec.OneWay == 1,
			Speed:            SpeedClass(rec.Speed),
			Class:            RoadClass(rec.RoadClass),
			NotForCar:        rec.NotForCar != 0,
			NotForPedestrian: rec.NotForPedestrian != 0,
			NotForBicycle:    rec.NotForBicycle != 0,
		}
		graph.roads = append(graph.roads, road)
		graph.roadIndex[rec.ID] = road
	}
	if verbose {
		fmt.Printf("Done in %v\n\tRoads: %d\n", time.Since(st), len(graph.roads))
	}
	return nil
}

func (graph *Graph) prepareSegments(records []SegmentRecord, verbose bool) error {
	if verbose {
		fmt.Printf("Preparing segments...")
	}
	st := time.Now()
	graph.segments = make([]Segment, 0, len(records))
	for i, rec := range records {
		road, ok := graph.roadIndex[rec.RoadID]
		if !ok {
			return errors.Wrapf(ErrMalformedInput, "Segment #%d references missing road: %d", i, rec.RoadID)
		}
		startIdx, ok := graph.nodeIndex[rec.StartNodeID]
		if !ok {
			return errors.Wrapf(ErrMalformedInput, "Segment #%d references missing start node: %d", i, rec.StartNodeID)
		}
		endIdx, ok := graph.nodeIndex[rec.EndNodeID]
		if !ok {
			return errors.Wrapf(ErrMalformedInput, "Segment #%d references missing end node: %d", i, rec.EndNodeID)
		}
		if rec.Length < 0 || math.IsNaN(rec.Length) {
			return errors.Wrapf(ErrMalformedInput, "Segment #%d has bad length: %f", i, rec.Length)
		}
		if len(rec.Coords)%2 != 0 {
			return errors.Wrapf(ErrMalformedInput, "Segment #%d has odd number of coordinates: %d", i, len(rec.Coords))
		}
		geom := make([]GeoPoint, len(rec.Coords)/2)
		for j := range geom {
			geom[j] = GeoPoint{Lat: rec.Coords[2*j], Lon: rec.Coords[2*j+1]}
		}
		graph.segments = append(graph.segments, Segment{
			ID:     SegmentID(i),
			Road:   road,
			Start:  rec.StartNodeID,
			End:    rec.EndNodeID,
			Length: rec.Length,
			Geom:   geom,
			start:  startIdx,
			end:    endIdx,
		})
		road.segments = append(road.segments, i)
		graph.nodes[startIdx].segments = append(graph.nodes[startIdx].segments, i)
		if endIdx != startIdx {
			graph.nodes[endIdx].segments = append(graph.nodes[endIdx].segments, i)
		}
	}
	// Distinct adjacent intersections are used by undirected traversals
	for i := range graph.nodes {
		node := &graph.nodes[i]
		seen := make(map[int]struct{}, len(node.segments))
		for _, segIdx := range node.segments {
			other := graph.segments[segIdx].other(i)
			if other == i {
				continue
			}
			if _, ok := seen[other]; ok {
				continue
			}
			seen[other] = struct{}{}
			node.neighbours = append(node.neighbours, other)
		}
	}
	if verbose {
		fmt.Printf("Done in %v\n\tSegments: %d\n", time.Since(st), len(graph.segments))
	}
	return nil
}

func (graph *Graph) prepareRestrictions(records []RestrictionRecord, verbose bool) error {
	if verbose {
		fmt.Printf("Preparing turn restrictions...")
	}
	st := time.Now()
	graph.restrictions = make([]TurnRestriction, 0, len(records))
	for i, rec := range records {
		for _, nodeID := range []NodeID{rec.N1, rec.N, rec.N2} {
			if _, ok := graph.nodeIndex[nodeID]; !ok {
				return errors.Wrapf(ErrMalformedInput, "Restriction #%d references missing node: %d", i, nodeID)
			}
		}
		for _, roadID := range []RoadID{rec.R1, rec.R2} {
			if _, ok := graph.roadIndex[roadID]; !ok {
				return errors.Wrapf(ErrMalformedInput, "Restriction #%d references missing road: %d", i, roadID)
			}
		}
		graph.restrictions = append(graph.restrictions, TurnRestriction{
			From:     rec.N1,
			FromRoad: rec.R1,
			Via:      rec.N,
			ToRoad:   rec.R2,
			To:       rec.N2,
		})
		pivot := graph.nodeIndex[rec.N]
		graph.nodes[pivot].restrictions = append(graph.nodes[pivot].restrictions, i)
	}
	if verbose {
		fmt.Printf("Done in %v\n\tRestrictions: %d\n", time.Since(st), len(graph.restrictions))
	}
	return nil
}

// attachTrafficLights marks the intersection nearest to each light. Ties go to the first node.
func (graph *Graph) attachTrafficLights(records []TrafficLightRecord, verbose bool) {
	if verbose {
		fmt.Printf("Attaching traffic lights...")
	}
	st := time.Now()
	lit := 0
	for _, rec := range records {
		nearest := graph.nearestNode(graph.projection.Project(GeoPoint{Lat: rec.Lat, Lon: rec.Lon}))
		if nearest < 0 {
			continue
		}
		if !graph.nodes[nearest].HasLight {
			lit++
		}
		graph.nodes[nearest].HasLight = true
	}
	if verbose {
		fmt.Printf("Done in %v\n\tLit intersections: %d\n", time.Since(st), lit)
	}
}

func (graph *Graph) nearestNode(loc Location) int {
	nearest := -1
	best := math.Inf(1)
	for i := range graph.nodes {
		dist := graph.nodes[i].Location.Distance(loc)
		if dist < best {
			best = dist
			nearest = i
		}
	}
	return nearest
}

// NearestNode returns intersection closest (on projection plane) to given point
func (graph *Graph) NearestNode(pt GeoPoint) (*Intersection, bool) {
	idx := graph.nearestNode(graph.projection.Project(pt))
	if idx < 0 {
		return nil, false
	}
	return &graph.nodes[idx], true
}

// Projection returns projection used to compute planar locations
func (graph *Graph) Projection() Projection {
	return graph.projection
}

// NodesNum returns number of intersections
func (graph *Graph) NodesNum() int {
	return len(graph.nodes)
}

// SegmentsNum returns number of segments
func (graph *Graph) SegmentsNum() int {
	return len(graph.segments)
}

// Node returns intersection by its identifier
func (graph *Graph) Node(id NodeID) (*Intersection, bool) {
	idx, ok := graph.nodeIndex[id]
	if !ok {
		return nil, false
	}
	return &graph.nodes[idx], true
}

// Nodes returns all intersections in the order they have been provided
func (graph *Graph) Nodes() []*Intersection {
	nodes := make([]*Intersection, len(graph.nodes))
	for i := range graph.nodes {
		nodes[i] = &graph.nodes[i]
	}
	return nodes
}

// Road returns road by its identifier
func (graph *Graph) Road(id RoadID) (*Road, bool) {
	road, ok := graph.roadIndex[id]
	return road, ok
}

// Roads returns all roads in the order they have been provided
func (graph *Graph) Roads() []*Road {
	roads := make([]*Road, len(graph.roads))
	copy(roads, graph.roads)
	return roads
}

// Segment returns segment by its identifier
func (graph *Graph) Segment(id SegmentID) (*Segment, bool) {
	if id < 0 || int(id) >= len(graph.segments) {
		return nil, false
	}
	return &graph.segments[id], true
}

// Segments returns all segments in the order they have been provided
func (graph *Graph) Segments() []*Segment {
	segments := make([]*Segment, len(graph.segments))
	for i := range graph.segments {
		segments[i] = &graph.segments[i]
	}
	return segments
}

// RoadSegments returns segments belonging to given road
func (graph *Graph) RoadSegments(road *Road) []*Segment {
	segments := make([]*Segment, 0, len(road.segments))
	for _, segIdx := range road.segments {
		segments = append(segments, &graph.segments[segIdx])
	}
	return segments
}

// SegmentBetween returns the first segment with endpoints {a, b} in either order
func (graph *Graph) SegmentBetween(a, b NodeID) (*Segment, bool) {
	idx, ok := graph.nodeIndex[a]
	if !ok {
		return nil, false
	}
	for _, segIdx := range graph.nodes[idx].segments {
		seg := &graph.segments[segIdx]
		if (seg.Start == a && seg.End == b) || (seg.Start == b && seg.End == a) {
			return seg, true
		}
	}
	return nil, false
}

// Neighbours returns segments incident to given intersection
func (graph *Graph) Neighbours(id NodeID) []*Segment {
	idx, ok := graph.nodeIndex[id]
	if !ok {
		return nil
	}
	segments := make([]*Segment, 0, len(graph.nodes[idx].segments))
	for _, segIdx := range graph.nodes[idx].segments {
		segments = append(segments, &graph.segments[segIdx])
	}
	return segments
}

// OutSegments returns segments which could be traversed when leaving given intersection.
// One-way segments are omitted when respectOneWay is set and the intersection is not their start.
func (graph *Graph) OutSegments(id NodeID, respectOneWay bool) []*Segment {
	idx, ok := graph.nodeIndex[id]
	if !ok {
		return nil
	}
	segments := make([]*Segment, 0, len(graph.nodes[idx].segments))
	for _, segIdx := range graph.nodes[idx].segments {
		seg := &graph.segments[segIdx]
		if respectOneWay && !seg.traversableFrom(idx) {
			continue
		}
		segments = append(segments, seg)
	}
	return segments
}

// Restrictions returns turn restrictions whose pivot is given intersection
func (graph *Graph) Restrictions(id NodeID) []TurnRestriction {
	idx, ok := graph.nodeIndex[id]
	if !ok {
		return nil
	}
	restrictions := make([]TurnRestriction, 0, len(graph.nodes[idx].restrictions))
	for _, rIdx := range graph.nodes[idx].restrictions {
		restrictions = append(restrictions, graph.restrictions[rIdx])
	}
	return restrictions
}

// isRestricted checks if moving from prev to next segment at node is forbidden
func (graph *Graph) isRestricted(nodeIdx, prevIdx, nextIdx int) bool {
	if prevIdx < 0 {
		return false
	}
	node := &graph.nodes[nodeIdx]
	if len(node.restrictions) == 0 {
		return false
	}
	prev := &graph.segments[prevIdx]
	next := &graph.segments[nextIdx]
	for _, rIdx := range node.restrictions {
		if graph.restrictions[rIdx].Forbids(prev, next) {
			return true
		}
	}
	return false
}
