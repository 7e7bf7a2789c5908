package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/LdDl/roadgraph"
	"github.com/LdDl/roadgraph/internal/api"
	"github.com/LdDl/roadgraph/internal/config"
	"github.com/pkg/errors"
)

var (
	dataDir       = flag.String("dir", "", "Directory with tab-delimited files (nodeID-lat-lon.tab, roadID-roadInfo.tab, ...)")
	osmFileName   = flag.String("osm", "", "Filename of *.osm or *.osm.pbf file. Mutually exclusive with -dir")
	tagStr        = flag.String("tags", "motorway,motorway_link,trunk,trunk_link,primary,primary_link,secondary,secondary_link,tertiary,tertiary_link,residential,living_street,unclassified,service", "Set of needed highway tags for OSM import (separated by commas)")
	action        = flag.String("action", "distance", "What to do. Expected values: distance / time / articulation / components / search / export / serve")
	fromID        = flag.Int64("from", 0, "Origin intersection ID for distance / time actions")
	toID          = flag.Int64("to", 0, "Destination intersection ID for distance / time actions")
	prefix        = flag.String("prefix", "", "Road name prefix for search action")
	geomFormat    = flag.String("geomf", "wkt", "Format of output geometry. Expected values: wkt / geojson")
	out           = flag.String("out", "roadgraph.csv", "Filename of 'Comma-Separated Values' (CSV) formatted file for export action. E.g.: if file name is 'map.csv' then 'map.csv' (edges), 'map_vertices.csv', 'map_shortcuts.csv' and 'map_nodes.csv', 'map_segments.csv', 'map_restrictions.csv' will be produced")
	costModel     = flag.String("model", "distance", "Cost model for export action. Expected values: distance / time")
	doContraction = flag.Bool("contract", true, "Prepare contraction hierarchies on export?")
	verbose       = flag.Bool("verbose", false, "Print progress information")
)

func main() {

	flag.Parse()

	if *action == "serve" {
		err := serve()
		if err != nil {
			slog.Error("server stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	graph, err := loadGraph(*dataDir, *osmFileName, *verbose)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	engine := roadgraph.NewEngine(graph)
	ctx := context.Background()

	switch strings.ToLower(*action) {
	case "distance", "time":
		model, _ := roadgraph.CostModelByName(strings.ToLower(*action))
		err = printPath(ctx, engine, model)
	case "articulation":
		err = printArticulationPoints(ctx, engine)
	case "components":
		err = printComponents(engine)
	case "search":
		printRoads(graph)
	case "export":
		err = export(graph)
	default:
		err = fmt.Errorf("Action '%s' is not handled", *action)
	}
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadGraph(dir, osmFile string, verbose bool) (*roadgraph.Graph, error) {
	var records *roadgraph.Records
	var err error
	switch {
	case dir != "" && osmFile != "":
		return nil, errors.New("Flags -dir and -osm are mutually exclusive")
	case dir != "":
		records, err = roadgraph.LoadDirectory(dir, verbose)
	case osmFile != "":
		cfg := roadgraph.DefaultOSMConfiguration()
		cfg.Tags = strings.Split(*tagStr, ",")
		cfg.Verbose = verbose
		records, err = roadgraph.ImportOSMFile(context.Background(), osmFile, cfg)
	default:
		return nil, errors.New("One of flags -dir or -osm should be provided")
	}
	if err != nil {
		return nil, errors.Wrap(err, "Can't read records")
	}
	graph, err := roadgraph.Build(records, roadgraph.WithVerbose(verbose))
	if err != nil {
		return nil, errors.Wrap(err, "Can't build graph")
	}
	return graph, nil
}

func printPath(ctx context.Context, engine *roadgraph.Engine, model roadgraph.CostModel) error {
	st := time.Now()
	path, err := engine.FindPath(ctx, model, roadgraph.NodeID(*fromID), roadgraph.NodeID(*toID))
	if err != nil {
		return err
	}
	elapsed := time.Since(st)
	for _, step := range path.Steps {
		fmt.Printf("%s: %.3fkm (%d -> %d) %s\n", step.RoadName, step.Segment.Length, step.From, step.To, step.Movement)
	}
	fmt.Printf("Total: %.3fkm, %.0fs (found by %s in %v, intersections expanded: %d)\n", path.Length, path.Duration, path.Model, elapsed, path.Expanded)
	if strings.ToLower(*geomFormat) == "geojson" {
		b, err := json.Marshal(roadgraph.PathToGeoJSON(engine.Graph(), path))
		if err != nil {
			return errors.Wrap(err, "Can't marshal GeoJSON")
		}
		fmt.Println(string(b))
	} else {
		fmt.Println(roadgraph.PathToWKT(engine.Graph(), path))
	}
	return nil
}

func printArticulationPoints(ctx context.Context, engine *roadgraph.Engine) error {
	st := time.Now()
	points, err := engine.FindArticulationPoints(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Articulation points: %d (found in %v)\n", len(points), time.Since(st))
	if strings.ToLower(*geomFormat) == "geojson" {
		b, err := json.Marshal(roadgraph.PointsToGeoJSON(engine.Graph(), points))
		if err != nil {
			return errors.Wrap(err, "Can't marshal GeoJSON")
		}
		fmt.Println(string(b))
		return nil
	}
	fmt.Println(roadgraph.PointsToWKT(engine.Graph(), points))
	return nil
}

func printComponents(engine *roadgraph.Engine) error {
	components, err := engine.Components()
	if err != nil {
		return err
	}
	fmt.Printf("Components: %d\n", len(components))
	for _, component := range components {
		fmt.Printf("\t#%d: %d intersections (root %d)\n", component.ID, len(component.Nodes), component.Nodes[0])
	}
	return nil
}

func printRoads(graph *roadgraph.Graph) {
	index := roadgraph.NewRoadIndex(graph)
	for _, road := range index.Prefix(*prefix, 0) {
		fmt.Println(road)
	}
}

func export(graph *roadgraph.Graph) error {
	model, ok := roadgraph.CostModelByName(strings.ToLower(*costModel))
	if !ok {
		return fmt.Errorf("Cost model '%s' is not handled", *costModel)
	}
	format := roadgraph.ParseGeometryFormat(*geomFormat)
	err := roadgraph.ExportCH(graph, model, *out, format, *doContraction, *verbose)
	if err != nil {
		return errors.Wrap(err, "Can't export CH graph")
	}
	err = graph.ExportToCSV(*out, format)
	if err != nil {
		return errors.Wrap(err, "Can't export graph")
	}
	return nil
}

func serve() error {
	cfg := config.Load()
	// Flags override environment
	if *dataDir != "" || *osmFileName != "" {
		cfg.DataDir, cfg.OSMFile = *dataDir, *osmFileName
	}
	cfg.Verbose = cfg.Verbose || *verbose
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "Configuration error")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if cfg.IsDevelopment() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	slog.SetDefault(logger)

	logger.Info("loading graph", "dir", cfg.DataDir, "osm", cfg.OSMFile)
	st := time.Now()
	graph, err := loadGraph(cfg.DataDir, cfg.OSMFile, cfg.Verbose)
	if err != nil {
		return err
	}
	logger.Info("graph loaded",
		"nodes", graph.NodesNum(),
		"segments", graph.SegmentsNum(),
		"components", graph.ComponentsNum(),
		"duration", time.Since(st).String(),
	)

	router := api.NewRouter(roadgraph.NewEngine(graph), api.Options{
		QueryTimeout: cfg.QueryTimeout,
		Development:  cfg.IsDevelopment(),
		Logger:       logger,
	})
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.QueryTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		errCh <- server.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
