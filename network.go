package roadgraph

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ExportToCSV writes graph as a set of ';' separated files. If file name is 'map.csv' then
// 'map_nodes.csv', 'map_segments.csv' and 'map_restrictions.csv' will be produced.
func (graph *Graph) ExportToCSV(fname string, geomFormat GeometryFormat) error {
	fnameParts := strings.Split(fname, ".csv")
	fnameNodes := fnameParts[0] + "_nodes.csv"
	fnameSegments := fnameParts[0] + "_segments.csv"
	fnameRestrictions := fnameParts[0] + "_restrictions.csv"

	err := graph.exportNodesToCSV(fnameNodes, geomFormat)
	if err != nil {
		return errors.Wrap(err, "Can't export nodes")
	}

	err = graph.exportSegmentsToCSV(fnameSegments, geomFormat)
	if err != nil {
		return errors.Wrap(err, "Can't export segments")
	}

	err = graph.exportRestrictionsToCSV(fnameRestrictions)
	if err != nil {
		return errors.Wrap(err, "Can't export restrictions")
	}

	return nil
}

func (graph *Graph) exportNodesToCSV(fname string, geomFormat GeometryFormat) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "component_id", "control_type", "degree", "x_km", "y_km", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for i := range graph.nodes {
		node := &graph.nodes[i]
		geomStr, err := geomFormat.point(node.Geom)
		if err != nil {
			return err
		}
		err = writer.Write([]string{
			fmt.Sprintf("%d", node.ID),
			fmt.Sprintf("%d", graph.components.tags[i]),
			node.ControlType().String(),
			fmt.Sprintf("%d", node.Degree()),
			fmt.Sprintf("%f", node.Location.X),
			fmt.Sprintf("%f", node.Location.Y),
			geomStr,
		})
		if err != nil {
			return errors.Wrap(err, "Can't write node")
		}
	}
	return nil
}

func (graph *Graph) exportSegmentsToCSV(fname string, geomFormat GeometryFormat) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "source_node", "target_node", "road_id", "name", "city", "oneway", "speed_kmh", "road_class", "length_km", "travel_time_s", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for i := range graph.segments {
		seg := &graph.segments[i]
		geomStr, err := geomFormat.linestring(segmentGeometry(graph, seg))
		if err != nil {
			return err
		}
		err = writer.Write([]string{
			fmt.Sprintf("%d", seg.ID),
			fmt.Sprintf("%d", seg.Start),
			fmt.Sprintf("%d", seg.End),
			fmt.Sprintf("%d", seg.Road.ID),
			seg.Road.Name,
			seg.Road.City,
			fmt.Sprintf("%t", seg.OneWay()),
			fmt.Sprintf("%.0f", seg.Road.Speed.KMH()),
			seg.Road.Class.String(),
			fmt.Sprintf("%f", seg.Length),
			fmt.Sprintf("%f", travelTime(seg)),
			geomStr,
		})
		if err != nil {
			return errors.Wrap(err, "Can't write segment")
		}
	}
	return nil
}

func (graph *Graph) exportRestrictionsToCSV(fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"from_node", "from_road", "via_node", "to_road", "to_node"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for _, tr := range graph.restrictions {
		err = writer.Write([]string{
			fmt.Sprintf("%d", tr.From),
			fmt.Sprintf("%d", tr.FromRoad),
			fmt.Sprintf("%d", tr.Via),
			fmt.Sprintf("%d", tr.ToRoad),
			fmt.Sprintf("%d", tr.To),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write restriction")
		}
	}
	return nil
}
