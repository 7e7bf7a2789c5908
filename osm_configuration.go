package roadgraph

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// OSMFormat is an encoding of OSM file
type OSMFormat uint16

const (
	OSM_FORMAT_XML = OSMFormat(iota + 1)
	OSM_FORMAT_PBF
	OSM_FORMAT_UNDEFINED = OSMFormat(0)
)

func (iotaIdx OSMFormat) String() string {
	return [...]string{"undefined", "xml", "pbf"}[iotaIdx]
}

// FormatFromFileName guesses format by file extension
func FormatFromFileName(fileName string) (OSMFormat, error) {
	lower := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lower, ".osm.pbf"), strings.HasSuffix(lower, ".pbf"):
		return OSM_FORMAT_PBF, nil
	case strings.HasSuffix(lower, ".osm"), strings.HasSuffix(lower, ".xml"):
		return OSM_FORMAT_XML, nil
	default:
		return OSM_FORMAT_UNDEFINED, errors.Errorf("File extension '%s' for file '%s' is not handled yet", filepath.Ext(fileName), fileName)
	}
}

// OSMConfiguration allows to filter ways by 'highway' tag values
type OSMConfiguration struct {
	// Accepted values of 'highway' tag. Empty means every known highway type.
	Tags []string
	// Ways not accessible by this agent are skipped. AGENT_UNDEFINED keeps every way.
	Agent   AgentType
	Verbose bool
}

// DefaultOSMConfiguration returns configuration suitable for car routing
func DefaultOSMConfiguration() *OSMConfiguration {
	return &OSMConfiguration{
		Tags: []string{
			"motorway", "motorway_link",
			"trunk", "trunk_link",
			"primary", "primary_link",
			"secondary", "secondary_link",
			"tertiary", "tertiary_link",
			"residential", "living_street", "unclassified", "service",
		},
		Agent: AGENT_AUTO,
	}
}

// CheckTag checks if incoming highway tag is represented in configuration
func (cfg *OSMConfiguration) CheckTag(tag string) bool {
	if len(cfg.Tags) == 0 {
		return getHighwayType(tag) != HIGHWAY_UNDEFINED
	}
	for i := range cfg.Tags {
		if cfg.Tags[i] == tag {
			return true
		}
	}
	return false
}
