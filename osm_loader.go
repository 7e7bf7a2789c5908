package roadgraph

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

// ImportOSMFile imports records from file of XML or PBF format (in OSM terms). Format is guessed by extension.
func ImportOSMFile(ctx context.Context, fileName string, cfg *OSMConfiguration) (*Records, error) {
	format, err := FormatFromFileName(fileName)
	if err != nil {
		return nil, err
	}
	if cfg != nil && cfg.Verbose {
		fmt.Printf("Opening file: '%s'...\n", fileName)
	}
	file, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "File open")
	}
	defer file.Close()
	return ImportOSM(ctx, file, format, cfg)
}

// ImportOSM converts OSM data into records:
//   - every accepted way becomes a road; ways are split into segments at nodes shared with other ways
//   - nodes tagged as traffic signals become traffic lights
//   - 'no_*' restriction relations forbid the from-to pair, 'only_*' ones forbid every other exit of via node
func ImportOSM(ctx context.Context, r io.ReadSeeker, format OSMFormat, cfg *OSMConfiguration) (*Records, error) {
	if cfg == nil {
		cfg = DefaultOSMConfiguration()
	}
	data, err := readOSM(ctx, r, format, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read OSM data")
	}
	records, err := data.prepareRecords(cfg.Verbose)
	if err != nil {
		return nil, errors.Wrap(err, "Can't prepare records")
	}
	return records, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type segmentEnds struct {
	road       RoadID
	start, end osm.NodeID
}

func (ends segmentEnds) other(node osm.NodeID) osm.NodeID {
	if ends.start == node {
		return ends.end
	}
	return ends.start
}

func (data *osmDataRaw) prepareRecords(verbose bool) (*Records, error) {
	records := &Records{}

	if verbose {
		fmt.Printf("Counting node use cases...")
	}
	st := time.Now()
	for _, way := range data.ways {
		for i, nodeID := range way.Nodes {
			node := data.nodes[nodeID]
			if node == nil {
				return nil, errors.Wrapf(ErrMalformedInput, "Missing node with id: %d (way %d)", nodeID, way.ID)
			}
			if i == 0 || i == len(way.Nodes)-1 {
				node.useCount += 2
			} else {
				node.useCount++
			}
		}
	}
	if verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	if verbose {
		fmt.Printf("Preparing roads and segments...")
	}
	st = time.Now()
	nodesAdded := make(map[osm.NodeID]struct{})
	addNode := func(node *osmNode) {
		if _, ok := nodesAdded[node.ID]; ok {
			return
		}
		nodesAdded[node.ID] = struct{}{}
		records.Nodes = append(records.Nodes, NodeRecord{ID: NodeID(node.ID), Lat: node.Geom.Lat, Lon: node.Geom.Lon})
	}
	ends := []segmentEnds{}
	segmentsByRoad := make(map[RoadID][]int)
	segmentsByNode := make(map[osm.NodeID][]int)
	for _, way := range data.ways {
		highway := way.highwayType()
		roadID := RoadID(way.ID)
		records.Roads = append(records.Roads, RoadRecord{
			ID:               roadID,
			Type:             int(highway),
			Label:            way.name,
			City:             way.city,
			OneWay:           boolToInt(way.oneway),
			Speed:            int(speedClassForKMH(way.speed())),
			RoadClass:        int(highway.RoadClass()),
			NotForCar:        boolToInt(!way.allowsAgent(AGENT_AUTO)),
			NotForPedestrian: boolToInt(!way.allowsAgent(AGENT_WALK)),
			NotForBicycle:    boolToInt(!way.allowsAgent(AGENT_BIKE)),
		})
		nodes := way.Nodes
		if way.isReversed {
			nodes = make([]osm.NodeID, len(way.Nodes))
			for i := range way.Nodes {
				nodes[len(nodes)-1-i] = way.Nodes[i]
			}
		}
		source := data.nodes[nodes[0]]
		geometry := []GeoPoint{source.Geom}
		for _, nodeID := range nodes[1:] {
			node := data.nodes[nodeID]
			geometry = append(geometry, node.Geom)
			if node.useCount <= 1 {
				continue
			}
			coords := make([]float64, 0, 2*len(geometry))
			for _, pt := range geometry {
				coords = append(coords, pt.Lat, pt.Lon)
			}
			addNode(source)
			addNode(node)
			idx := len(records.Segments)
			records.Segments = append(records.Segments, SegmentRecord{
				RoadID:      roadID,
				Length:      getSphericalLength(geometry),
				StartNodeID: NodeID(source.ID),
				EndNodeID:   NodeID(node.ID),
				Coords:      coords,
			})
			ends = append(ends, segmentEnds{road: roadID, start: source.ID, end: node.ID})
			segmentsByRoad[roadID] = append(segmentsByRoad[roadID], idx)
			segmentsByNode[source.ID] = append(segmentsByNode[source.ID], idx)
			if source.ID != node.ID {
				segmentsByNode[node.ID] = append(segmentsByNode[node.ID], idx)
			}
			source = node
			geometry = []GeoPoint{node.Geom}
		}
	}
	if verbose {
		fmt.Printf("Done in %v\n\tRoads: %d\n\tSegments: %d\n\tNodes: %d\n", time.Since(st), len(records.Roads), len(records.Segments), len(records.Nodes))
	}

	for _, signalID := range data.signals {
		node := data.nodes[signalID]
		records.TrafficLights = append(records.TrafficLights, TrafficLightRecord{Lat: node.Geom.Lat, Lon: node.Geom.Lon})
	}

	if verbose {
		fmt.Printf("Preparing turn restrictions...")
	}
	st = time.Now()
	touching := func(road RoadID, via osm.NodeID) []int {
		found := []int{}
		for _, idx := range segmentsByRoad[road] {
			if ends[idx].start == via || ends[idx].end == via {
				found = append(found, idx)
			}
		}
		return found
	}
	skipped := 0
	for _, rst := range data.restrictions {
		fromRoad, toRoad := RoadID(rst.from), RoadID(rst.to)
		fromSegments := touching(fromRoad, rst.via)
		toSegments := touching(toRoad, rst.via)
		if len(fromSegments) == 0 || len(toSegments) == 0 {
			skipped++
			continue
		}
		for _, fromIdx := range fromSegments {
			n1 := ends[fromIdx].other(rst.via)
			if rst.isNo() {
				for _, toIdx := range toSegments {
					records.Restrictions = append(records.Restrictions, RestrictionRecord{
						N1: NodeID(n1), R1: fromRoad, N: NodeID(rst.via), R2: toRoad, N2: NodeID(ends[toIdx].other(rst.via)),
					})
				}
				continue
			}
			for _, exitIdx := range segmentsByNode[rst.via] {
				if ends[exitIdx].road == toRoad {
					continue
				}
				records.Restrictions = append(records.Restrictions, RestrictionRecord{
					N1: NodeID(n1), R1: fromRoad, N: NodeID(rst.via), R2: ends[exitIdx].road, N2: NodeID(ends[exitIdx].other(rst.via)),
				})
			}
		}
	}
	if verbose {
		fmt.Printf("Done in %v\n\tRestrictions: %d (skipped relations: %d)\n", time.Since(st), len(records.Restrictions), skipped)
	}
	return records, nil
}
