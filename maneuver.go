package roadgraph

import (
	"math"
)

// MovementType is a kind of turn made at intersection
type MovementType uint16

const (
	MOVEMENT_THRU = MovementType(iota + 1)
	MOVEMENT_RIGHT
	MOVEMENT_LEFT
	MOVEMENT_U_TURN

	MOVEMENT_UNDEFINED = MovementType(0)
)

func (iotaIdx MovementType) String() string {
	return [...]string{"undefined", "thru", "right", "left", "uturn"}[iotaIdx]
}

// Bound is a compass direction of approach to intersection
type Bound uint16

const (
	BOUND_SOUTH = Bound(iota + 1)
	BOUND_EAST
	BOUND_NORTH
	BOUND_WEST

	BOUND_UNDEFINED = Bound(0)
)

func (iotaIdx Bound) String() string {
	return [...]string{"undefined", "SB", "EB", "NB", "WB"}[iotaIdx]
}

// Step is a single segment of path along with the movement made to enter it
type Step struct {
	Segment  *Segment
	RoadName string
	// From is the intersection where step starts
	From NodeID
	// To is the intersection where step ends
	To       NodeID
	Bound    Bound
	Movement MovementType
}

// boundOf returns compass direction of vector given by angle (radians, counterclockwise from east)
func boundOf(angle float64) Bound {
	if -0.75*math.Pi <= angle && angle < -0.25*math.Pi {
		return BOUND_SOUTH
	} else if -0.25*math.Pi <= angle && angle < 0.25*math.Pi {
		return BOUND_EAST
	} else if 0.25*math.Pi <= angle && angle < 0.75*math.Pi {
		return BOUND_NORTH
	}
	return BOUND_WEST
}

// movementBetween classifies turn a -> b -> c
func movementBetween(a, b, c Location) (Bound, MovementType) {
	angle1 := math.Atan2(b.Y-a.Y, b.X-a.X)
	angle2 := math.Atan2(c.Y-b.Y, c.X-b.X)

	angleDiff := angle2 - angle1
	if angleDiff < -1*math.Pi {
		angleDiff += 2 * math.Pi
	}
	if angleDiff > math.Pi {
		angleDiff -= 2 * math.Pi
	}

	bound := boundOf(angle1)
	if -0.25*math.Pi <= angleDiff && angleDiff <= 0.25*math.Pi {
		return bound, MOVEMENT_THRU
	} else if angleDiff < -0.25*math.Pi {
		return bound, MOVEMENT_RIGHT
	} else if angleDiff <= 0.75*math.Pi {
		return bound, MOVEMENT_LEFT
	}
	return bound, MOVEMENT_U_TURN
}

// prepareSteps labels every transition of path. The first step has no movement.
func (graph *Graph) prepareSteps(nodes []int, segments []int) []Step {
	steps := make([]Step, len(segments))
	for i, segIdx := range segments {
		seg := &graph.segments[segIdx]
		from := &graph.nodes[nodes[i]]
		to := &graph.nodes[nodes[i+1]]
		steps[i] = Step{
			Segment:  seg,
			RoadName: seg.Road.Name,
			From:     from.ID,
			To:       to.ID,
			Movement: MOVEMENT_UNDEFINED,
		}
		if i == 0 {
			continue
		}
		prev := &graph.nodes[nodes[i-1]]
		steps[i].Bound, steps[i].Movement = movementBetween(prev.Location, from.Location, to.Location)
	}
	return steps
}
