package roadgraph

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

func lineString(pts []GeoPoint) orb.LineString {
	line := make(orb.LineString, len(pts))
	for i := range pts {
		line[i] = pts[i].Point()
	}
	return line
}

// PrepareWKTLinestring returns WKT representation of LineString
func PrepareWKTLinestring(pts []GeoPoint) string {
	return wkt.MarshalString(lineString(pts))
}

// PrepareWKTPoint returns WKT representation of Point
func PrepareWKTPoint(pt GeoPoint) string {
	return wkt.MarshalString(pt.Point())
}

// PathToWKT returns WKT LineString of the whole path. Path without segments is a Point of the origin.
func PathToWKT(graph *Graph, path *Path) string {
	if len(path.Segments) == 0 {
		node, ok := graph.Node(path.Origin)
		if !ok {
			return wkt.MarshalString(orb.LineString{})
		}
		return PrepareWKTPoint(node.Geom)
	}
	return PrepareWKTLinestring(path.Geometry(graph))
}

// PointsToWKT returns WKT MultiPoint of given intersections. Unknown ones are skipped.
func PointsToWKT(graph *Graph, ids []NodeID) string {
	mp := make(orb.MultiPoint, 0, len(ids))
	for _, id := range ids {
		node, ok := graph.Node(id)
		if !ok {
			continue
		}
		mp = append(mp, node.Geom.Point())
	}
	return wkt.MarshalString(mp)
}
