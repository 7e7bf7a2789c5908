package roadgraph

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

// OSMScanner is a common interface of osmxml and osmpbf scanners
type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

func newOSMScanner(ctx context.Context, r io.Reader, format OSMFormat) (OSMScanner, error) {
	switch format {
	case OSM_FORMAT_XML:
		return osmxml.New(ctx, r), nil
	case OSM_FORMAT_PBF:
		return osmpbf.New(ctx, r, 4), nil
	default:
		return nil, errors.Errorf("OSM format '%s' is not handled yet", format)
	}
}

type osmNode struct {
	ID       osm.NodeID
	Geom     GeoPoint
	useCount int
	isSignal bool
}

// osmRestriction is a turn restriction relation with way-node-way members
type osmRestriction struct {
	ID   osm.RelationID
	kind string
	from osm.WayID
	via  osm.NodeID
	to   osm.WayID
}

func (rst osmRestriction) isOnly() bool {
	return strings.HasPrefix(rst.kind, "only_")
}

func (rst osmRestriction) isNo() bool {
	return strings.HasPrefix(rst.kind, "no_")
}

type osmDataRaw struct {
	ways         []*wayData
	nodes        map[osm.NodeID]*osmNode
	signals      []osm.NodeID
	restrictions []osmRestriction
}

// scanOSM runs scanner over the whole input calling fn for each object of given type
func scanOSM(ctx context.Context, r io.ReadSeeker, format OSMFormat, objType osm.Type, fn func(obj osm.Object)) error {
	_, err := r.Seek(0, io.SeekStart)
	if err != nil {
		return errors.Wrap(err, "Can't seek to start")
	}
	scanner, err := newOSMScanner(ctx, r, format)
	if err != nil {
		return err
	}
	defer scanner.Close()
	for scanner.Scan() {
		obj := scanner.Object()
		if obj.ObjectID().Type() != objType {
			continue
		}
		fn(obj)
	}
	return scanner.Err()
}

// readOSM scans input three times: ways, then nodes used by accepted ways, then restriction relations
func readOSM(ctx context.Context, r io.ReadSeeker, format OSMFormat, cfg *OSMConfiguration) (*osmDataRaw, error) {
	verbose := cfg.Verbose
	data := &osmDataRaw{
		nodes: make(map[osm.NodeID]*osmNode),
	}

	/* Process ways */
	if verbose {
		fmt.Printf("\tProcessing ways... ")
	}
	st := time.Now()
	skippedWays := 0
	err := scanOSM(ctx, r, format, osm.TypeWay, func(obj osm.Object) {
		way := obj.(*osm.Way)
		highway := way.Tags.Find("highway")
		if highway == "" || !cfg.CheckTag(highway) {
			return
		}
		preparedWay := newWayData(way, verbose)
		if preparedWay.isHighwayNegligible() || len(preparedWay.Nodes) < 2 {
			skippedWays++
			return
		}
		if cfg.Agent != AGENT_UNDEFINED && !preparedWay.allowsAgent(cfg.Agent) {
			skippedWays++
			return
		}
		for _, nodeID := range preparedWay.Nodes {
			data.nodes[nodeID] = nil
		}
		data.ways = append(data.ways, preparedWay)
	})
	if err != nil {
		return nil, errors.Wrap(err, "Scanner error on ways")
	}
	if verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	/* Process nodes */
	if verbose {
		fmt.Printf("\tProcessing nodes... ")
	}
	st = time.Now()
	err = scanOSM(ctx, r, format, osm.TypeNode, func(obj osm.Object) {
		node := obj.(*osm.Node)
		found, ok := data.nodes[node.ID]
		if !ok || found != nil {
			return
		}
		prepared := &osmNode{
			ID:       node.ID,
			Geom:     GeoPoint{Lat: node.Lat, Lon: node.Lon},
			isSignal: node.Tags.Find("highway") == "traffic_signals",
		}
		data.nodes[node.ID] = prepared
		if prepared.isSignal {
			data.signals = append(data.signals, node.ID)
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "Scanner error on nodes")
	}
	if verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	/* Process maneuvers (turn restrictions only) */
	if verbose {
		fmt.Printf("\tProcessing maneuvers... ")
	}
	st = time.Now()
	skippedRestrictions := 0
	err = scanOSM(ctx, r, format, osm.TypeRelation, func(obj osm.Object) {
		relation := obj.(*osm.Relation)
		kind := relation.Tags.Find("restriction")
		if kind == "" {
			// Ignore non-restriction relations
			return
		}
		rst, ok := parseRestrictionRelation(relation, kind)
		if !ok {
			skippedRestrictions++
			return
		}
		data.restrictions = append(data.restrictions, rst)
	})
	if err != nil {
		return nil, errors.Wrap(err, "Scanner error on relations")
	}
	if verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
		fmt.Printf("\tNumber of ways: %d (skipped: %d)\n", len(data.ways), skippedWays)
		fmt.Printf("\tNumber of nodes: %d\n", len(data.nodes))
		fmt.Printf("\tNumber of restrictions: %d (skipped: %d)\n", len(data.restrictions), skippedRestrictions)
	}
	return data, nil
}

// parseRestrictionRelation accepts relations having exactly one 'from' way, one 'via' node and one 'to' way
func parseRestrictionRelation(relation *osm.Relation, kind string) (osmRestriction, bool) {
	rst := osmRestriction{
		ID:   relation.ID,
		kind: kind,
	}
	if len(relation.Members) != 3 {
		return rst, false
	}
	fromSeen, viaSeen, toSeen := false, false, false
	for _, member := range relation.Members {
		switch member.Role {
		case "from":
			if member.Type != osm.TypeWay {
				return rst, false
			}
			rst.from = osm.WayID(member.Ref)
			fromSeen = true
		case "via":
			if member.Type != osm.TypeNode {
				return rst, false
			}
			rst.via = osm.NodeID(member.Ref)
			viaSeen = true
		case "to":
			if member.Type != osm.TypeWay {
				return rst, false
			}
			rst.to = osm.WayID(member.Ref)
			toSeen = true
		default:
			return rst, false
		}
	}
	if !fromSeen || !viaSeen || !toSeen {
		return rst, false
	}
	if !rst.isNo() && !rst.isOnly() {
		return rst, false
	}
	return rst, true
}
