package roadgraph

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/paulmach/osm"
)

const (
	mphToKmh = 1.609344
)

var (
	mphRegExp    = regexp.MustCompile(`(\d+\.?\d*)\s*mph`)
	numberRegExp = regexp.MustCompile(`^\s*(\d+\.?\d*)\s*(km/h)?\s*$`)
)

// wayData is a flattened OSM way accepted by import configuration
type wayData struct {
	ID    osm.WayID
	Nodes []osm.NodeID

	name    string
	city    string
	highway string

	// km/h, negative when tag is missing or unparsable
	maxSpeed float64

	oneway     bool
	isReversed bool

	access       string
	motorVehicle string
	motorcar     string
	service      string
	foot         string
	bicycle      string
}

func newWayData(way *osm.Way, verbose bool) *wayData {
	prepared := &wayData{
		ID:       way.ID,
		Nodes:    make([]osm.NodeID, 0, len(way.Nodes)),
		maxSpeed: -1,
	}
	for _, node := range way.Nodes {
		prepared.Nodes = append(prepared.Nodes, node.ID)
	}
	prepared.processTags(way.Tags, verbose)
	return prepared
}

func (way *wayData) processTags(tags osm.Tags, verbose bool) {
	way.name = tags.Find("name")
	way.city = tags.Find("addr:city")
	way.highway = tags.Find("highway")

	way.access = tags.Find("access")
	way.motorVehicle = tags.Find("motor_vehicle")
	way.motorcar = tags.Find("motorcar")
	way.service = tags.Find("service")
	way.foot = tags.Find("foot")
	way.bicycle = tags.Find("bicycle")

	onewayText := tags.Find("oneway")
	switch onewayText {
	case "yes", "1", "true":
		way.oneway = true
	case "no", "0", "false":
		way.oneway = false
	case "-1", "reverse":
		way.oneway = true
		way.isReversed = true
	case "":
		if _, ok := junctionTypes[tags.Find("junction")]; ok {
			way.oneway = true
		}
	default:
		// Reversible or alternating ways depend on time conditions
		if _, ok := onewayReversible[onewayText]; !ok && verbose {
			fmt.Printf("[WARNING]: Unhandled `oneway` tag value has been met: '%s'. Way ID: '%d'\n", onewayText, way.ID)
		}
	}

	maxSpeed := tags.Find("maxspeed")
	if maxSpeed != "" {
		way.maxSpeed = parseMaxSpeed(maxSpeed)
		if way.maxSpeed < 0 && verbose {
			fmt.Printf("[WARNING]: Provided `maxspeed` tag value should be an float (or integer?). Got '%s'. Way ID: '%d'\n", maxSpeed, way.ID)
		}
	}
}

// parseMaxSpeed converts 'maxspeed' tag to km/h. Returns -1 for values it does not understand (e.g. "RU:urban").
func parseMaxSpeed(text string) float64 {
	if found := numberRegExp.FindStringSubmatch(text); found != nil {
		value, err := strconv.ParseFloat(found[1], 64)
		if err == nil {
			return value
		}
	}
	if found := mphRegExp.FindStringSubmatch(text); found != nil {
		value, err := strconv.ParseFloat(found[1], 64)
		if err == nil {
			return value * mphToKmh
		}
	}
	return -1
}

func (way *wayData) highwayType() HighwayType {
	return getHighwayType(way.highway)
}

func (way *wayData) isHighwayNegligible() bool {
	_, ok := negligibleHighwayTags[way.highway]
	return ok
}

// speed returns maximum speed (km/h) from tags or highway default
func (way *wayData) speed() float64 {
	if way.maxSpeed > 0 {
		return way.maxSpeed
	}
	return way.highwayType().DefaultSpeed()
}

func (way *wayData) accessValue(accessType AccessType) string {
	switch accessType {
	case ACCESS_HIGHWAY:
		return way.highway
	case ACCESS_MOTOR_VEHICLE:
		return way.motorVehicle
	case ACCESS_MOTORCAR:
		return way.motorcar
	case ACCESS_OSM_ACCESS:
		return way.access
	case ACCESS_SERVICE:
		return way.service
	case ACCESS_BICYCLE:
		return way.bicycle
	case ACCESS_FOOT:
		return way.foot
	default:
		return ""
	}
}

// allowsAgent checks explicit permissions first and then exclusion filters
func (way *wayData) allowsAgent(agentType AgentType) bool {
	for accessType, values := range agentsAccessIncludeValues[agentType] {
		if _, ok := values[way.accessValue(accessType)]; ok {
			return true
		}
	}
	excludes, ok := agentsAccessExcludeValues[agentType]
	if !ok {
		return true
	}
	for accessType, values := range excludes {
		if _, ok := values[way.accessValue(accessType)]; ok {
			return false
		}
	}
	return true
}
