package roadgraph

import (
	"fmt"
)

// TurnRestriction forbids entering Via from From along FromRoad and leaving toward To along ToRoad
type TurnRestriction struct {
	From     NodeID
	FromRoad RoadID
	Via      NodeID
	ToRoad   RoadID
	To       NodeID
}

// String returns pretty printed value for TurnRestriction
func (tr TurnRestriction) String() string {
	return fmt.Sprintf("%d -(%d)-> %d -(%d)-> %d", tr.From, tr.FromRoad, tr.Via, tr.ToRoad, tr.To)
}

// Forbids checks whether transition from prev segment to next segment at Via matches the restriction.
// Both segments are compared regardless of their stored orientation.
func (tr TurnRestriction) Forbids(prev, next *Segment) bool {
	if prev == nil || next == nil {
		return false
	}
	if !prev.Touches(tr.Via) || !next.Touches(tr.Via) {
		return false
	}
	if prev.Road.ID != tr.FromRoad || next.Road.ID != tr.ToRoad {
		return false
	}
	return prev.Other(tr.Via) == tr.From && next.Other(tr.Via) == tr.To
}
