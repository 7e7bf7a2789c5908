package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/LdDl/roadgraph"
	"github.com/gin-gonic/gin"
)

const (
	defaultRoadsLimit = 20
	maxRoadsLimit     = 500
)

type handler struct {
	engine    *roadgraph.Engine
	roads     *roadgraph.RoadIndex
	timeout   time.Duration
	startTime time.Time
}

func newHandler(engine *roadgraph.Engine, timeout time.Duration) *handler {
	h := &handler{
		engine:    engine,
		timeout:   timeout,
		startTime: time.Now(),
	}
	if engine != nil && engine.Graph() != nil {
		h.roads = roadgraph.NewRoadIndex(engine.Graph())
	}
	return h
}

// ErrorResponse is a body of any non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// statusForError maps engine errors to HTTP status codes
func statusForError(err error) int {
	switch roadgraph.KindOf(err) {
	case roadgraph.ERROR_UNKNOWN_NODE:
		return http.StatusNotFound
	case roadgraph.ERROR_DISCONNECTED_ROUTE, roadgraph.ERROR_UNREACHABLE:
		return http.StatusUnprocessableEntity
	case roadgraph.ERROR_MALFORMED_INPUT:
		return http.StatusBadRequest
	case roadgraph.ERROR_CANCELLED:
		return http.StatusGatewayTimeout
	case roadgraph.ERROR_GRAPH_NOT_BUILT:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusForError(err), ErrorResponse{
		Error: err.Error(),
		Kind:  roadgraph.KindOf(err).String(),
	})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error: msg,
		Kind:  roadgraph.ERROR_MALFORMED_INPUT.String(),
	})
}

func (h *handler) queryContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// Health reports service status and graph size
func (h *handler) Health(c *gin.Context) {
	resp := gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startTime).String(),
	}
	if h.engine != nil && h.engine.Graph() != nil {
		graph := h.engine.Graph()
		resp["nodes"] = graph.NodesNum()
		resp["segments"] = graph.SegmentsNum()
		resp["components"] = graph.ComponentsNum()
	}
	c.JSON(http.StatusOK, resp)
}

// SegmentResponse is a single step of route
type SegmentResponse struct {
	ID       int     `json:"id"`
	RoadID   int64   `json:"road_id"`
	RoadName string  `json:"road_name"`
	From     int64   `json:"from"`
	To       int64   `json:"to"`
	Length   float64 `json:"length_km"`
	Movement string  `json:"movement"`
}

// RouteResponse is a body of successful route query
type RouteResponse struct {
	Origin      int64             `json:"origin"`
	Destination int64             `json:"destination"`
	Model       string            `json:"model"`
	Length      float64           `json:"length_km"`
	Cost        float64           `json:"cost"`
	Duration    float64           `json:"duration_s"`
	Nodes       []int64           `json:"nodes"`
	Segments    []SegmentResponse `json:"segments"`
	Polyline    string            `json:"polyline"`
}

func parseNodeID(c *gin.Context, key string) (roadgraph.NodeID, bool) {
	value := c.Query(key)
	if value == "" {
		badRequest(c, "query parameter '"+key+"' is required")
		return 0, false
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		badRequest(c, "query parameter '"+key+"' must be an integer")
		return 0, false
	}
	return roadgraph.NodeID(id), true
}

// Route finds path between two intersections: /route?from=&to=&by=distance|time&format=json|geojson
func (h *handler) Route(c *gin.Context) {
	from, ok := parseNodeID(c, "from")
	if !ok {
		return
	}
	to, ok := parseNodeID(c, "to")
	if !ok {
		return
	}
	model, ok := roadgraph.CostModelByName(c.DefaultQuery("by", roadgraph.DistanceModel.Name()))
	if !ok {
		badRequest(c, "query parameter 'by' must be one of: distance, time")
		return
	}
	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "geojson" {
		badRequest(c, "query parameter 'format' must be one of: json, geojson")
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()
	path, err := h.engine.FindPath(ctx, model, from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	graph := h.engine.Graph()
	if format == "geojson" {
		c.JSON(http.StatusOK, roadgraph.PathToGeoJSON(graph, path))
		return
	}

	resp := RouteResponse{
		Origin:      int64(path.Origin),
		Destination: int64(path.Destination),
		Model:       path.Model,
		Length:      path.Length,
		Cost:        path.Cost,
		Duration:    path.Duration,
		Nodes:       make([]int64, len(path.Nodes)),
		Segments:    make([]SegmentResponse, len(path.Steps)),
		Polyline:    roadgraph.EncodePolyline(graph, path),
	}
	for i, id := range path.Nodes {
		resp.Nodes[i] = int64(id)
	}
	for i, step := range path.Steps {
		resp.Segments[i] = SegmentResponse{
			ID:       int(step.Segment.ID),
			RoadID:   int64(step.Segment.Road.ID),
			RoadName: step.RoadName,
			From:     int64(step.From),
			To:       int64(step.To),
			Length:   step.Segment.Length,
			Movement: step.Movement.String(),
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ArticulationPoints lists cut vertices: /articulation-points?format=json|geojson
func (h *handler) ArticulationPoints(c *gin.Context) {
	ctx, cancel := h.queryContext(c)
	defer cancel()
	points, err := h.engine.FindArticulationPoints(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if c.Query("format") == "geojson" {
		c.JSON(http.StatusOK, roadgraph.PointsToGeoJSON(h.engine.Graph(), points))
		return
	}
	ids := make([]int64, len(points))
	for i, id := range points {
		ids[i] = int64(id)
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(ids),
		"nodes": ids,
	})
}

// ComponentResponse is a summary of connected component
type ComponentResponse struct {
	ID    int     `json:"id"`
	Size  int     `json:"size"`
	Root  int64   `json:"root"`
	Nodes []int64 `json:"nodes,omitempty"`
}

// Components lists connected components: /components?nodes=true
func (h *handler) Components(c *gin.Context) {
	components, err := h.engine.Components()
	if err != nil {
		abortWithError(c, err)
		return
	}
	withNodes := c.Query("nodes") == "true"
	resp := make([]ComponentResponse, len(components))
	for i, component := range components {
		resp[i] = ComponentResponse{
			ID:   component.ID,
			Size: len(component.Nodes),
			Root: int64(component.Nodes[0]),
		}
		if withNodes {
			resp[i].Nodes = make([]int64, len(component.Nodes))
			for j, id := range component.Nodes {
				resp[i].Nodes[j] = int64(id)
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":      len(resp),
		"components": resp,
	})
}

// RoadResponse is a road found by name prefix
type RoadResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	City     string `json:"city"`
	OneWay   bool   `json:"oneway"`
	Segments int    `json:"segments"`
}

// Roads searches roads by name prefix: /roads?prefix=&limit=
func (h *handler) Roads(c *gin.Context) {
	if h.roads == nil {
		abortWithError(c, roadgraph.ErrGraphNotBuilt)
		return
	}
	prefix := c.Query("prefix")
	if prefix == "" {
		badRequest(c, "query parameter 'prefix' is required")
		return
	}
	limit := defaultRoadsLimit
	if value := c.Query("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			badRequest(c, "query parameter 'limit' must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxRoadsLimit {
		limit = maxRoadsLimit
	}
	roads := h.roads.Prefix(prefix, limit)
	resp := make([]RoadResponse, len(roads))
	for i, road := range roads {
		resp[i] = RoadResponse{
			ID:       int64(road.ID),
			Name:     road.Name,
			City:     road.City,
			OneWay:   road.OneWay,
			Segments: road.SegmentsNum(),
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(resp),
		"roads": resp,
	})
}
