package roadgraph

import (
	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
	"github.com/twpayne/go-polyline"
)

func coordinates(pts []GeoPoint) [][]float64 {
	pts2d := make([][]float64, len(pts))
	for i := range pts {
		pts2d[i] = []float64{pts[i].Lon, pts[i].Lat}
	}
	return pts2d
}

// PrepareGeoJSONLinestring returns GeoJSON representation of LineString
func PrepareGeoJSONLinestring(pts []GeoPoint) (string, error) {
	b, err := geojson.NewLineStringGeometry(coordinates(pts)).MarshalJSON()
	if err != nil {
		return "", errors.Wrap(err, "Can't convert geometry to GeoJSON")
	}
	return string(b), nil
}

// PrepareGeoJSONPoint returns GeoJSON representation of Point
func PrepareGeoJSONPoint(pt GeoPoint) (string, error) {
	b, err := geojson.NewPointGeometry([]float64{pt.Lon, pt.Lat}).MarshalJSON()
	if err != nil {
		return "", errors.Wrap(err, "Can't convert geometry to GeoJSON")
	}
	return string(b), nil
}

// PathToGeoJSON returns FeatureCollection with LineString feature per segment of the path
func PathToGeoJSON(graph *Graph, path *Path) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, step := range path.Steps {
		pts := segmentGeometry(graph, step.Segment)
		if step.From != step.Segment.Start {
			pts = reverseLine(pts)
		}
		feature := geojson.NewLineStringFeature(coordinates(pts))
		feature.SetProperty("seq", i)
		feature.SetProperty("segment_id", int(step.Segment.ID))
		feature.SetProperty("road_id", int64(step.Segment.Road.ID))
		feature.SetProperty("road_name", step.RoadName)
		feature.SetProperty("from", int64(step.From))
		feature.SetProperty("to", int64(step.To))
		feature.SetProperty("length_km", step.Segment.Length)
		feature.SetProperty("movement", step.Movement.String())
		fc.AddFeature(feature)
	}
	return fc
}

// PointsToGeoJSON returns FeatureCollection with Point feature per intersection. Unknown ones are skipped.
func PointsToGeoJSON(graph *Graph, ids []NodeID) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, id := range ids {
		node, ok := graph.Node(id)
		if !ok {
			continue
		}
		feature := geojson.NewPointFeature([]float64{node.Geom.Lon, node.Geom.Lat})
		feature.SetProperty("node_id", int64(node.ID))
		feature.SetProperty("traffic_light", node.HasLight)
		fc.AddFeature(feature)
	}
	return fc
}

// EncodePolyline returns Google encoded polyline of the path
func EncodePolyline(graph *Graph, path *Path) string {
	pts := path.Geometry(graph)
	if len(pts) == 0 {
		if node, ok := graph.Node(path.Origin); ok {
			pts = []GeoPoint{node.Geom}
		}
	}
	coords := make([][]float64, len(pts))
	for i := range pts {
		coords[i] = []float64{pts[i].Lat, pts[i].Lon}
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline is the inverse of EncodePolyline
func DecodePolyline(encoded string) ([]GeoPoint, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, errors.Wrap(err, "Can't decode polyline")
	}
	pts := make([]GeoPoint, len(coords))
	for i := range coords {
		pts[i] = GeoPoint{Lat: coords[i][0], Lon: coords[i][1]}
	}
	return pts, nil
}
