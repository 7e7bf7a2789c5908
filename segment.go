package roadgraph

import (
	"fmt"
)

// SegmentID is a position of segment in the graph's storage
type SegmentID int

// Segment is an edge between two intersections
type Segment struct {
	ID     SegmentID
	Road   *Road
	Start  NodeID
	End    NodeID
	Length float64 // kilometers
	Geom   []GeoPoint

	start int
	end   int
}

// String returns pretty printed value for Segment
func (seg *Segment) String() string {
	return fmt.Sprintf("ID: %d | %d -> %d | road: %d | length: %f", seg.ID, seg.Start, seg.End, seg.Road.ID, seg.Length)
}

// Other returns endpoint of segment which is not the given one
func (seg *Segment) Other(node NodeID) NodeID {
	if seg.Start == node {
		return seg.End
	}
	return seg.Start
}

// OneWay returns true when segment could be traversed from Start to End only
func (seg *Segment) OneWay() bool {
	return seg.Road.OneWay
}

// Touches checks if given intersection is one of endpoints
func (seg *Segment) Touches(node NodeID) bool {
	return seg.Start == node || seg.End == node
}

func (seg *Segment) other(nodeIdx int) int {
	if seg.start == nodeIdx {
		return seg.end
	}
	return seg.start
}

// traversableFrom returns false when segment is one-way and given node is not its start
func (seg *Segment) traversableFrom(nodeIdx int) bool {
	if !seg.Road.OneWay {
		return true
	}
	return seg.start == nodeIdx
}
