package roadgraph

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/LdDl/ch"
	"github.com/pkg/errors"
)

// GeometryFormat is an output format for geometries in exported files
type GeometryFormat uint16

const (
	GEOM_WKT = GeometryFormat(iota + 1)
	GEOM_GEOJSON
)

func (iotaIdx GeometryFormat) String() string {
	return [...]string{"wkt", "geojson"}[iotaIdx-1]
}

// ParseGeometryFormat returns GEOM_GEOJSON for "geojson" and GEOM_WKT otherwise
func ParseGeometryFormat(s string) GeometryFormat {
	if strings.ToLower(s) == "geojson" {
		return GEOM_GEOJSON
	}
	return GEOM_WKT
}

func (iotaIdx GeometryFormat) linestring(pts []GeoPoint) (string, error) {
	if iotaIdx == GEOM_GEOJSON {
		return PrepareGeoJSONLinestring(pts)
	}
	return PrepareWKTLinestring(pts), nil
}

func (iotaIdx GeometryFormat) point(pt GeoPoint) (string, error) {
	if iotaIdx == GEOM_GEOJSON {
		return PrepareGeoJSONPoint(pt)
	}
	return PrepareWKTPoint(pt), nil
}

// chEdge is a traversable direction of segment
type chEdge struct {
	segment *Segment
	source  NodeID
	target  NodeID
	weight  float64
}

// directedEdges enumerates every traversable direction of every segment weighted by model.
// Self-loops are skipped. Turn restrictions can not be expressed in vertex based graph and are ignored.
func directedEdges(graph *Graph, model CostModel) []chEdge {
	edges := make([]chEdge, 0, 2*len(graph.segments))
	for i := range graph.segments {
		seg := &graph.segments[i]
		if seg.start == seg.end {
			continue
		}
		edges = append(edges, chEdge{
			segment: seg,
			source:  seg.Start,
			target:  seg.End,
			weight:  model.EdgeCost(seg, &graph.nodes[seg.end]),
		})
		if seg.OneWay() {
			continue
		}
		edges = append(edges, chEdge{
			segment: seg,
			source:  seg.End,
			target:  seg.Start,
			weight:  model.EdgeCost(seg, &graph.nodes[seg.start]),
		})
	}
	return edges
}

// NewCHGraph returns contraction hierarchies graph whose vertices are intersections
func NewCHGraph(graph *Graph, model CostModel, contract bool) (*ch.Graph, error) {
	chGraph := &ch.Graph{}
	for i := range graph.nodes {
		err := chGraph.CreateVertex(int64(graph.nodes[i].ID))
		if err != nil {
			return nil, errors.Wrapf(err, "Can't create vertex %d", graph.nodes[i].ID)
		}
	}
	for _, edge := range directedEdges(graph, model) {
		err := chGraph.AddEdge(int64(edge.source), int64(edge.target), edge.weight)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't wrap vertices %d and %d as edge", edge.source, edge.target)
		}
	}
	if contract {
		chGraph.PrepareContractionHierarchies()
	}
	return chGraph, nil
}

// ExportCH writes graph in format of github.com/LdDl/ch. If out file name is 'map.csv' then
// 3 files will be produced: 'map.csv' (edges), 'map_vertices.csv', 'map_shortcuts.csv'.
// Shortcuts are written only when contraction is requested.
func ExportCH(graph *Graph, model CostModel, out string, geomFormat GeometryFormat, contract, verbose bool) error {
	fnamePart := strings.Split(out, ".csv") // to guarantee proper filename and its extension
	fnameEdges := fnamePart[0] + ".csv"
	fnameVertices := fnamePart[0] + "_vertices.csv"
	fnameShortcuts := fnamePart[0] + "_shortcuts.csv"

	if verbose {
		fmt.Printf("Preparing CH graph (%s)...", model.Name())
	}
	st := time.Now()
	chGraph, err := NewCHGraph(graph, model, false)
	if err != nil {
		return errors.Wrap(err, "Can't prepare CH graph")
	}
	if verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	err = writeCHEdges(graph, model, fnameEdges, geomFormat)
	if err != nil {
		return errors.Wrap(err, "Can't export edges")
	}

	if contract {
		if verbose {
			fmt.Printf("Starting contraction process...")
		}
		st = time.Now()
		chGraph.PrepareContractionHierarchies()
		if verbose {
			fmt.Printf("Done in %v\n", time.Since(st))
		}
	}

	err = writeCHVertices(graph, chGraph, fnameVertices, geomFormat)
	if err != nil {
		return errors.Wrap(err, "Can't export vertices")
	}

	if contract {
		// 	from_vertex_id - int64, ID of source vertex
		// 	to_vertex_id - int64, ID of arget vertex
		// 	weight - float64, Weight of an edge
		// 	via_vertex_id - int64, ID of vertex through which the shortcut exists
		err = chGraph.ExportShortcutsToFile(fnameShortcuts)
		if err != nil {
			return errors.Wrap(err, "Can't export shortcuts")
		}
	}
	return nil
}

func writeCHEdges(graph *Graph, model CostModel, fname string, geomFormat GeometryFormat) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()
	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	// 	from_vertex_id - int64, ID of source intersection
	// 	to_vertex_id - int64, ID of target intersection
	// 	weight - float64, Weight of an edge (kilometers or seconds)
	// 	geom - geometry (WKT or GeoJSON representation)
	// 	was_one_way - if edge was one way
	// 	edge_id - int, ID of segment
	// 	road_id - int64, ID of road
	err = writer.Write([]string{"from_vertex_id", "to_vertex_id", "weight", "geom", "was_one_way", "edge_id", "road_id"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	for _, edge := range directedEdges(graph, model) {
		pts := segmentGeometry(graph, edge.segment)
		if edge.source != edge.segment.Start {
			pts = reverseLine(pts)
		}
		geomStr, err := geomFormat.linestring(pts)
		if err != nil {
			return err
		}
		err = writer.Write([]string{
			fmt.Sprintf("%d", edge.source),
			fmt.Sprintf("%d", edge.target),
			fmt.Sprintf("%f", edge.weight),
			geomStr,
			fmt.Sprintf("%t", edge.segment.OneWay()),
			fmt.Sprintf("%d", edge.segment.ID),
			fmt.Sprintf("%d", edge.segment.Road.ID),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write edge")
		}
	}
	return nil
}

func writeCHVertices(graph *Graph, chGraph *ch.Graph, fname string, geomFormat GeometryFormat) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()
	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	// 	vertex_id - int64, ID of intersection
	// 	order_pos - int, Position of vertex in hierarchies (evaluted by library)
	// 	importance - int, Importance of vertex in graph (evaluted by library)
	// 	geom - geometry (WKT or GeoJSON representation)
	err = writer.Write([]string{"vertex_id", "order_pos", "importance", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	for i := range chGraph.Vertices {
		label := chGraph.Vertices[i].Label
		node, ok := graph.Node(NodeID(label))
		if !ok {
			return errors.Wrapf(ErrInternalInvariant, "No intersection for vertex %d", label)
		}
		geomStr, err := geomFormat.point(node.Geom)
		if err != nil {
			return err
		}
		err = writer.Write([]string{
			fmt.Sprintf("%d", label),
			fmt.Sprintf("%d", chGraph.Vertices[i].OrderPos()),
			fmt.Sprintf("%d", chGraph.Vertices[i].Importance()),
			geomStr,
		})
		if err != nil {
			return errors.Wrap(err, "Can't write vertex")
		}
	}
	return nil
}
