package roadgraph

import (
	"sort"
	"strings"
)

// RoadIndex looks roads up by name prefix
type RoadIndex struct {
	// lower-cased names sorted ascending
	names []string
	// roads by lower-cased name ordered by id
	roads map[string][]*Road
}

// NewRoadIndex returns index of every named road of the graph
func NewRoadIndex(graph *Graph) *RoadIndex {
	index := &RoadIndex{
		roads: make(map[string][]*Road),
	}
	for _, road := range graph.roads {
		if road.Name == "" {
			continue
		}
		key := strings.ToLower(road.Name)
		if _, ok := index.roads[key]; !ok {
			index.names = append(index.names, key)
		}
		index.roads[key] = append(index.roads[key], road)
	}
	sort.Strings(index.names)
	for _, roads := range index.roads {
		sort.Slice(roads, func(i, j int) bool {
			return roads[i].ID < roads[j].ID
		})
	}
	return index
}

// Prefix returns roads whose names start with given prefix (case-insensitive), ordered by name and then by id.
// Non-positive limit means no limit.
func (index *RoadIndex) Prefix(prefix string, limit int) []*Road {
	key := strings.ToLower(prefix)
	start := sort.SearchStrings(index.names, key)
	found := []*Road{}
	for i := start; i < len(index.names); i++ {
		if !strings.HasPrefix(index.names[i], key) {
			break
		}
		for _, road := range index.roads[index.names[i]] {
			if limit > 0 && len(found) >= limit {
				return found
			}
			found = append(found, road)
		}
	}
	return found
}

// Names returns distinct road names (as in source data) starting with prefix
func (index *RoadIndex) Names(prefix string, limit int) []string {
	key := strings.ToLower(prefix)
	start := sort.SearchStrings(index.names, key)
	names := []string{}
	for i := start; i < len(index.names); i++ {
		if !strings.HasPrefix(index.names[i], key) {
			break
		}
		if limit > 0 && len(names) >= limit {
			break
		}
		names = append(names, index.roads[index.names[i]][0].Name)
	}
	return names
}

// ByName returns every road with exactly given name (case-insensitive)
func (index *RoadIndex) ByName(name string) []*Road {
	roads := index.roads[strings.ToLower(name)]
	out := make([]*Road, len(roads))
	copy(out, roads)
	return out
}
