package roadgraph

import (
	"context"
	"strings"
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="0" lon="0"/>
  <node id="2" lat="0" lon="0.001"/>
  <node id="3" lat="0" lon="0.002">
    <tag k="highway" v="traffic_signals"/>
  </node>
  <node id="4" lat="0.001" lon="0.002"/>
  <node id="5" lat="-0.001" lon="0.002"/>
  <way id="100">
    <nd ref="1"/>
    <nd ref="2"/>
    <nd ref="3"/>
    <tag k="highway" v="residential"/>
    <tag k="name" v="Queen Street"/>
    <tag k="addr:city" v="Auckland"/>
  </way>
  <way id="101">
    <nd ref="3"/>
    <nd ref="4"/>
    <tag k="highway" v="primary"/>
    <tag k="name" v="Victoria Street"/>
    <tag k="oneway" v="yes"/>
  </way>
  <way id="102">
    <nd ref="5"/>
    <nd ref="3"/>
    <tag k="highway" v="secondary"/>
    <tag k="name" v="Albert Street"/>
    <tag k="oneway" v="-1"/>
    <tag k="maxspeed" v="50"/>
  </way>
  <way id="103">
    <nd ref="1"/>
    <nd ref="4"/>
    <tag k="highway" v="footway"/>
  </way>
  <relation id="200">
    <member type="way" ref="100" role="from"/>
    <member type="node" ref="3" role="via"/>
    <member type="way" ref="101" role="to"/>
    <tag k="type" v="restriction"/>
    <tag k="restriction" v="no_left_turn"/>
  </relation>
  <relation id="201">
    <member type="way" ref="101" role="from"/>
    <member type="node" ref="3" role="via"/>
    <member type="way" ref="102" role="to"/>
    <tag k="type" v="restriction"/>
    <tag k="restriction" v="only_straight_on"/>
  </relation>
  <relation id="202">
    <member type="way" ref="100" role="from"/>
    <member type="way" ref="101" role="via"/>
    <member type="way" ref="102" role="to"/>
    <tag k="type" v="restriction"/>
    <tag k="restriction" v="no_u_turn"/>
  </relation>
</osm>`

func importTestOSM(t *testing.T, cfg *OSMConfiguration) *Records {
	t.Helper()
	records, err := ImportOSM(context.Background(), strings.NewReader(testOSM), OSM_FORMAT_XML, cfg)
	require.NoError(t, err)
	return records
}

func TestImportOSM(t *testing.T) {
	records := importTestOSM(t, nil)

	require.Len(t, records.Roads, 3)
	queen, victoria, albert := records.Roads[0], records.Roads[1], records.Roads[2]
	assert.Equal(t, RoadID(100), queen.ID)
	assert.Equal(t, "Queen Street", queen.Label)
	assert.Equal(t, "Auckland", queen.City)
	assert.Equal(t, 0, queen.OneWay)
	assert.Equal(t, int(HIGHWAY_RESIDENTIAL), queen.Type)
	// 30 km/h by default for residential
	assert.Equal(t, 1, queen.Speed)
	assert.Equal(t, 0, queen.RoadClass)

	assert.Equal(t, 1, victoria.OneWay)
	assert.Equal(t, 4, victoria.Speed)
	assert.Equal(t, 3, victoria.RoadClass)

	assert.Equal(t, 1, albert.OneWay)
	assert.Equal(t, 2, albert.Speed)

	// Node 2 is used by a single way only, so Queen Street is not split there
	require.Len(t, records.Segments, 3)
	assert.Equal(t, NodeID(1), records.Segments[0].StartNodeID)
	assert.Equal(t, NodeID(3), records.Segments[0].EndNodeID)
	assert.Len(t, records.Segments[0].Coords, 6)
	assert.InDelta(t, 0.2224, records.Segments[0].Length, 1e-3)
	// oneway=-1 is stored in traversal direction
	assert.Equal(t, NodeID(3), records.Segments[2].StartNodeID)
	assert.Equal(t, NodeID(5), records.Segments[2].EndNodeID)

	ids := []NodeID{}
	for _, node := range records.Nodes {
		ids = append(ids, node.ID)
	}
	assert.Equal(t, []NodeID{1, 3, 4, 5}, ids)

	assert.Equal(t, []TrafficLightRecord{{Lat: 0, Lon: 0.002}}, records.TrafficLights)

	assert.Equal(t, []RestrictionRecord{
		{N1: 1, R1: 100, N: 3, R2: 101, N2: 4},
		{N1: 4, R1: 101, N: 3, R2: 100, N2: 1},
		{N1: 4, R1: 101, N: 3, R2: 101, N2: 4},
	}, records.Restrictions)
}

func TestImportOSMBuildsGraph(t *testing.T) {
	graph, err := Build(importTestOSM(t, nil))
	require.NoError(t, err)
	assert.Equal(t, 4, graph.NodesNum())
	assert.Equal(t, 1, graph.ComponentsNum())
	node, ok := graph.Node(3)
	require.True(t, ok)
	assert.True(t, node.HasLight)
	assert.Len(t, graph.Restrictions(3), 3)

	engine := NewEngine(graph)
	// Left turn from Queen Street into Victoria Street is forbidden and there is no detour
	_, err = engine.FindPathByDistance(context.Background(), 1, 4)
	assert.ErrorIs(t, err, ErrUnreachable)
	path, err := engine.FindPathByDistance(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{1, 3, 5}, path.Nodes)
}

func TestImportOSMAgentFilter(t *testing.T) {
	records := importTestOSM(t, &OSMConfiguration{Agent: AGENT_UNDEFINED})
	assert.Len(t, records.Roads, 4)

	records = importTestOSM(t, &OSMConfiguration{Agent: AGENT_AUTO})
	assert.Len(t, records.Roads, 3)

	records = importTestOSM(t, &OSMConfiguration{Agent: AGENT_WALK, Tags: []string{"footway", "residential"}})
	require.Len(t, records.Roads, 2)
	assert.Equal(t, RoadID(103), records.Roads[1].ID)
	assert.Equal(t, 1, records.Roads[1].NotForCar)
	assert.Equal(t, 0, records.Roads[1].NotForPedestrian)
}

func TestImportOSMUnknownFormat(t *testing.T) {
	_, err := ImportOSM(context.Background(), strings.NewReader(testOSM), OSM_FORMAT_UNDEFINED, nil)
	assert.Error(t, err)
}

func TestFormatFromFileName(t *testing.T) {
	format, err := FormatFromFileName("auckland.osm.pbf")
	require.NoError(t, err)
	assert.Equal(t, OSM_FORMAT_PBF, format)
	format, err = FormatFromFileName("Auckland.OSM")
	require.NoError(t, err)
	assert.Equal(t, OSM_FORMAT_XML, format)
	_, err = FormatFromFileName("auckland.geojson")
	assert.Error(t, err)
}

func TestCheckTag(t *testing.T) {
	cfg := DefaultOSMConfiguration()
	assert.True(t, cfg.CheckTag("primary"))
	assert.False(t, cfg.CheckTag("footway"))
	cfg.Tags = nil
	assert.True(t, cfg.CheckTag("footway"))
	assert.False(t, cfg.CheckTag("path"))
}

func TestParseMaxSpeed(t *testing.T) {
	tests := []struct {
		text     string
		expected float64
	}{
		{"50", 50},
		{"60 km/h", 60},
		{"80.5", 80.5},
		{"30 mph", 30 * mphToKmh},
		{"RU:urban", -1},
		{"none", -1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.expected, parseMaxSpeed(tt.text), 1e-9, tt.text)
	}
}

func TestWayOneWay(t *testing.T) {
	tests := []struct {
		tags       osm.Tags
		oneway     bool
		isReversed bool
	}{
		{osm.Tags{{Key: "highway", Value: "primary"}}, false, false},
		{osm.Tags{{Key: "highway", Value: "primary"}, {Key: "oneway", Value: "yes"}}, true, false},
		{osm.Tags{{Key: "highway", Value: "primary"}, {Key: "oneway", Value: "reverse"}}, true, true},
		{osm.Tags{{Key: "highway", Value: "primary"}, {Key: "junction", Value: "roundabout"}}, true, false},
		{osm.Tags{{Key: "highway", Value: "primary"}, {Key: "junction", Value: "roundabout"}, {Key: "oneway", Value: "no"}}, false, false},
		{osm.Tags{{Key: "highway", Value: "primary"}, {Key: "oneway", Value: "reversible"}}, false, false},
	}
	for i, tt := range tests {
		way := newWayData(&osm.Way{ID: osm.WayID(i), Nodes: osm.WayNodes{{ID: 1}, {ID: 2}}, Tags: tt.tags}, false)
		assert.Equal(t, tt.oneway, way.oneway, "case %d", i)
		assert.Equal(t, tt.isReversed, way.isReversed, "case %d", i)
	}
}

func TestWayAllowsAgent(t *testing.T) {
	parking := newWayData(&osm.Way{ID: 1, Tags: osm.Tags{
		{Key: "highway", Value: "service"},
		{Key: "service", Value: "parking_aisle"},
	}}, false)
	assert.False(t, parking.allowsAgent(AGENT_AUTO))
	assert.True(t, parking.allowsAgent(AGENT_WALK))

	// Explicit permission wins over exclusion
	busway := newWayData(&osm.Way{ID: 2, Tags: osm.Tags{
		{Key: "highway", Value: "track"},
		{Key: "motor_vehicle", Value: "yes"},
	}}, false)
	assert.True(t, busway.allowsAgent(AGENT_AUTO))

	motorway := newWayData(&osm.Way{ID: 3, Tags: osm.Tags{{Key: "highway", Value: "motorway"}}}, false)
	assert.True(t, motorway.allowsAgent(AGENT_AUTO))
	assert.False(t, motorway.allowsAgent(AGENT_BIKE))
	assert.False(t, motorway.allowsAgent(AGENT_WALK))
	assert.InDelta(t, 120.0, motorway.speed(), 1e-9)
}
