package roadgraph

// AgentType is a kind of road user
type AgentType uint16

const (
	AGENT_AUTO = AgentType(iota + 1)
	AGENT_BIKE
	AGENT_WALK
	AGENT_UNDEFINED = AgentType(0)
)

func (iotaIdx AgentType) String() string {
	return [...]string{"undefined", "auto", "bike", "walk"}[iotaIdx]
}

// AccessType is an OSM tag which may grant or deny access for agent
type AccessType uint16

const (
	ACCESS_HIGHWAY = AccessType(iota + 1)
	ACCESS_MOTOR_VEHICLE
	ACCESS_MOTORCAR
	ACCESS_OSM_ACCESS
	ACCESS_SERVICE
	ACCESS_BICYCLE
	ACCESS_FOOT
	ACCESS_UNDEFINED = AccessType(0)
)

func (iotaIdx AccessType) String() string {
	return [...]string{"undefined", "highway", "motor_vehicle", "motorcar", "access", "service", "bicycle", "foot"}[iotaIdx]
}

var (
	agentsAccessIncludeValues = map[AgentType]map[AccessType]map[string]struct{}{
		AGENT_AUTO: {
			ACCESS_MOTOR_VEHICLE: {"yes": {}},
			ACCESS_MOTORCAR:      {"yes": {}},
		},
		AGENT_BIKE: {
			ACCESS_BICYCLE: {"yes": {}},
		},
		AGENT_WALK: {
			ACCESS_FOOT: {"yes": {}},
		},
	}

	agentsAccessExcludeValues = map[AgentType]map[AccessType]map[string]struct{}{
		AGENT_AUTO: {
			ACCESS_HIGHWAY: {
				"cycleway":   {},
				"footway":    {},
				"pedestrian": {},
				"steps":      {},
				"track":      {},
				"corridor":   {},
				"elevator":   {},
				"escalator":  {},
			},
			ACCESS_MOTOR_VEHICLE: {"no": {}},
			ACCESS_MOTORCAR:      {"no": {}},
			ACCESS_OSM_ACCESS:    {"private": {}, "no": {}},
			ACCESS_SERVICE: {
				"parking":          {},
				"parking_aisle":    {},
				"driveway":         {},
				"private":          {},
				"emergency_access": {},
			},
		},
		AGENT_BIKE: {
			ACCESS_HIGHWAY: {
				"footway":       {},
				"steps":         {},
				"corridor":      {},
				"elevator":      {},
				"escalator":     {},
				"motorway":      {},
				"motorway_link": {},
			},
			ACCESS_BICYCLE:    {"no": {}},
			ACCESS_SERVICE:    {"private": {}},
			ACCESS_OSM_ACCESS: {"private": {}, "no": {}},
		},
		AGENT_WALK: {
			ACCESS_HIGHWAY: {
				"cycleway":      {},
				"motorway":      {},
				"motorway_link": {},
				"trunk":         {},
				"trunk_link":    {},
			},
			ACCESS_FOOT:       {"no": {}},
			ACCESS_SERVICE:    {"private": {}},
			ACCESS_OSM_ACCESS: {"private": {}, "no": {}},
		},
	}
)
