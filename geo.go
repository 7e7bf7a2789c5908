package roadgraph

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

const (
	pi180 = math.Pi / 180.0
	// Kilometres per degree of latitude used by planar projection
	kmPerDegree = 111.0
)

var (
	// DefaultProjectionOrigin is the centre of the data sets the engine was first used with
	DefaultProjectionOrigin = GeoPoint{Lat: -36.847622, Lon: 174.763444}
)

// GeoPoint representation of point on Earth
type GeoPoint struct {
	Lat float64
	Lon float64
}

// String returns pretty printed value for for GeoPoint
func (gp GeoPoint) String() string {
	return fmt.Sprintf("Lon: %f | Lat: %f", gp.Lon, gp.Lat)
}

// Point returns orb representation of GeoPoint (X = Lon, Y = Lat)
func (gp GeoPoint) Point() orb.Point {
	return orb.Point{gp.Lon, gp.Lat}
}

// Location is a point on the projection plane. Both coordinates are in kilometres.
type Location struct {
	X float64
	Y float64
}

// Distance returns Euclidean distance between two locations (kilometres)
func (loc Location) Distance(other Location) float64 {
	return math.Hypot(loc.X-other.X, loc.Y-other.Y)
}

// Projection is an equirectangular projection around a fixed reference point:
//
//	y = (lat - lat0) * K
//	x = (lon - lon0) * K * cos(lat0)
type Projection struct {
	origin GeoPoint
	scaleX float64
}

// NewProjection returns projection centered at given origin
func NewProjection(origin GeoPoint) Projection {
	return Projection{
		origin: origin,
		scaleX: kmPerDegree * math.Cos(degreesToRadians(origin.Lat)),
	}
}

// Origin returns reference point of the projection
func (p Projection) Origin() GeoPoint {
	return p.origin
}

// Project converts geographic point into planar location
func (p Projection) Project(gp GeoPoint) Location {
	return Location{
		X: (gp.Lon - p.origin.Lon) * p.scaleX,
		Y: (gp.Lat - p.origin.Lat) * kmPerDegree,
	}
}

// Unproject is the inverse of Project
func (p Projection) Unproject(loc Location) GeoPoint {
	gp := GeoPoint{Lat: p.origin.Lat + loc.Y/kmPerDegree, Lon: p.origin.Lon}
	if p.scaleX != 0 {
		gp.Lon += loc.X / p.scaleX
	}
	return gp
}

// degreesToRadians deg = r * pi / 180
func degreesToRadians(d float64) float64 {
	return d * pi180
}

// greatCircleDistance returns distance between two geo-points (kilometers)
func greatCircleDistance(p, q GeoPoint) float64 {
	return geo.DistanceHaversine(p.Point(), q.Point()) / 1000.0
}

// getSphericalLength returns length for given line (kilometers)
func getSphericalLength(line []GeoPoint) float64 {
	totalLength := 0.0
	if len(line) < 2 {
		return totalLength
	}
	for i := 1; i < len(line); i++ {
		totalLength += greatCircleDistance(line[i-1], line[i])
	}
	return totalLength
}
