package roadgraph

// NodeRecord is a parsed intersection
type NodeRecord struct {
	ID  NodeID
	Lat float64
	Lon float64
}

// RoadRecord is a parsed road description
type RoadRecord struct {
	ID               RoadID
	Type             int
	Label            string
	City             string
	OneWay           int
	Speed            int
	RoadClass        int
	NotForCar        int
	NotForPedestrian int
	NotForBicycle    int
}

// SegmentRecord is a parsed road segment. Coords are interleaved lat/lon pairs of the polyline.
type SegmentRecord struct {
	RoadID      RoadID
	Length      float64
	StartNodeID NodeID
	EndNodeID   NodeID
	Coords      []float64
}

// RestrictionRecord is a parsed turn restriction: N1 -(R1)-> N -(R2)-> N2
type RestrictionRecord struct {
	N1 NodeID
	R1 RoadID
	N  NodeID
	R2 RoadID
	N2 NodeID
}

// TrafficLightRecord is a location of traffic light
type TrafficLightRecord struct {
	Lat float64
	Lon float64
}

// Records is a full set of parsed data needed to build graph
type Records struct {
	Nodes         []NodeRecord
	Roads         []RoadRecord
	Segments      []SegmentRecord
	Restrictions  []RestrictionRecord
	TrafficLights []TrafficLightRecord
}
