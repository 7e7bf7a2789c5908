package roadgraph

import (
	"fmt"
)

// RoadID is an identifier of road as it is given in the source data
type RoadID int64

// SpeedClass is a speed limit code of road in range [0, 7]
type SpeedClass uint8

const (
	// MaxSpeedClass is the fastest speed class
	MaxSpeedClass = SpeedClass(7)
)

var (
	speedByClass = [...]float64{5, 20, 40, 60, 80, 100, 110, 150}
)

// KMH returns speed in kilometers per hour for given class
func (sc SpeedClass) KMH() float64 {
	if int(sc) >= len(speedByClass) {
		return speedByClass[len(speedByClass)-1]
	}
	return speedByClass[sc]
}

func (sc SpeedClass) String() string {
	return fmt.Sprintf("%.0f km/h", sc.KMH())
}

// speedClassForKMH returns the fastest class which does not exceed given speed
func speedClassForKMH(kmh float64) SpeedClass {
	class := SpeedClass(0)
	for i, v := range speedByClass {
		if v <= kmh {
			class = SpeedClass(i)
		}
	}
	return class
}

// RoadClass is a code of road importance in range [0, 4]. Higher is more arterial.
type RoadClass uint8

const (
	// MaxRoadClass is the most arterial road class
	MaxRoadClass = RoadClass(4)
)

func (iotaIdx RoadClass) String() string {
	if iotaIdx > MaxRoadClass {
		return "undefined"
	}
	return [...]string{"local", "collector", "minor_arterial", "major_arterial", "highway"}[iotaIdx]
}

// Road is a named group of segments sharing the same metadata
type Road struct {
	ID     RoadID
	Type   int
	Name   string
	City   string
	OneWay bool
	Speed  SpeedClass
	Class  RoadClass

	NotForCar        bool
	NotForPedestrian bool
	NotForBicycle    bool

	segments []int
}

// String returns pretty printed value for Road
func (road *Road) String() string {
	return fmt.Sprintf("ID: %d | %s (%s) | oneway: %t | %s | %s", road.ID, road.Name, road.City, road.OneWay, road.Speed, road.Class)
}

// SegmentsNum returns number of segments belonging to road
func (road *Road) SegmentsNum() int {
	return len(road.segments)
}
