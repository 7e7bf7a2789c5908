package roadgraph

import (
	"math"
)

const (
	// trafficLightPenalty is added (in seconds) when arriving at intersection with traffic light
	trafficLightPenalty = 5.0
	secondsInHour       = 3600.0
)

// maxSpeedTimeRate is the number of seconds per kilometre at the maximum speed class
var maxSpeedTimeRate = secondsInHour / MaxSpeedClass.KMH()

// CostModel is a pair of edge weight function and heuristic used by A* search
type CostModel interface {
	// Name returns short identifier of the model
	Name() string
	// EdgeCost returns cost of traversing segment and arriving at given intersection
	EdgeCost(seg *Segment, arrival *Intersection) float64
	// Heuristic estimates remaining cost between two intersections of the graph. Must not overestimate.
	Heuristic(graph *Graph, from, to *Intersection) float64
}

// DistanceCost minimizes total length in kilometres
type DistanceCost struct{}

// Name returns "distance"
func (DistanceCost) Name() string {
	return "distance"
}

// EdgeCost returns segment length
func (DistanceCost) EdgeCost(seg *Segment, _ *Intersection) float64 {
	return seg.Length
}

// Heuristic returns planar distance
func (DistanceCost) Heuristic(_ *Graph, from, to *Intersection) float64 {
	return from.Location.Distance(to.Location)
}

// TimeCost minimizes travel time in seconds.
// Arterial roads get a discount of one second per road class and every traffic light costs five seconds.
type TimeCost struct{}

// Name returns "time"
func (TimeCost) Name() string {
	return "time"
}

// EdgeCost returns travel time of segment in seconds
func (TimeCost) EdgeCost(seg *Segment, arrival *Intersection) float64 {
	cost := travelTime(seg) - float64(seg.Road.Class)
	// Discount never turns edge into a negative one
	cost = math.Max(cost, 0)
	if arrival != nil && arrival.HasLight {
		cost += trafficLightPenalty
	}
	return cost
}

// Heuristic returns planar distance multiplied by the lowest cost per kilometre among graph segments.
// Without road class discounts that is the time needed to pass the distance at the maximum speed.
func (TimeCost) Heuristic(graph *Graph, from, to *Intersection) float64 {
	rate := maxSpeedTimeRate
	if graph != nil {
		rate = graph.timeRate
	}
	return from.Location.Distance(to.Location) * rate
}

// minTimeRate returns the lowest time cost per kilometre over segments.
// Zero-length segments have no rate and are skipped.
func minTimeRate(segments []Segment) float64 {
	rate := maxSpeedTimeRate
	for i := range segments {
		seg := &segments[i]
		if seg.Length <= 0 {
			continue
		}
		rate = math.Min(rate, TimeModel.EdgeCost(seg, nil)/seg.Length)
	}
	return rate
}

// travelTime returns time in seconds needed to pass segment at its road speed
func travelTime(seg *Segment) float64 {
	return seg.Length / seg.Road.Speed.KMH() * secondsInHour
}

var (
	// DistanceModel is a shared instance of DistanceCost
	DistanceModel CostModel = DistanceCost{}
	// TimeModel is a shared instance of TimeCost
	TimeModel CostModel = TimeCost{}
)

// CostModelByName returns model for "distance" or "time"
func CostModelByName(name string) (CostModel, bool) {
	switch name {
	case DistanceModel.Name():
		return DistanceModel, true
	case TimeModel.Name():
		return TimeModel, true
	default:
		return nil, false
	}
}
