package roadgraph

import (
	"fmt"
)

// NodeID is an identifier of intersection as it is given in the source data
type NodeID int64

// Intersection is a node of the road graph
type Intersection struct {
	ID       NodeID
	Geom     GeoPoint
	Location Location
	HasLight bool

	idx          int
	segments     []int
	neighbours   []int
	restrictions []int
}

// String returns pretty printed value for Intersection
func (node *Intersection) String() string {
	return fmt.Sprintf("ID: %d | %s | lights: %t", node.ID, node.Geom, node.HasLight)
}

// Degree returns number of incident segments
func (node *Intersection) Degree() int {
	return len(node.segments)
}

// ControlType describes how traffic is controlled at the intersection
type ControlType uint16

const (
	NOT_SIGNAL = ControlType(iota + 1)
	IS_SIGNAL
)

func (iotaIdx ControlType) String() string {
	return [...]string{"common", "signal"}[iotaIdx-1]
}

// ControlType returns IS_SIGNAL for intersections under traffic light control
func (node *Intersection) ControlType() ControlType {
	if node.HasLight {
		return IS_SIGNAL
	}
	return NOT_SIGNAL
}
