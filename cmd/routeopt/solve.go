package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"route-optimizer/internal/database"
	"route-optimizer/internal/distance"
	"route-optimizer/internal/export"
	"route-optimizer/internal/models"
	"route-optimizer/internal/routing"
	"route-optimizer/internal/server"
)

type solveOptions struct {
	miles   bool
	asJSON  bool
	geoJSON bool
	noCache bool
}

// stopsFile accepts either a bare list of stops or {"stops": [...]}
type stopsFile struct {
	Stops []models.Coordinate `json:"stops" yaml:"stops"`
}

func newSolveCmd(a *app) *cobra.Command {
	var opts solveOptions

	cmd := &cobra.Command{
		Use:   "solve FILE",
		Short: "Optimize the stops listed in a YAML or JSON file",
		Long: `Reads a list of stops (name, lat, lng) from FILE and prints the
shortest visiting order starting at the first stop. Use "-" to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.asJSON && opts.geoJSON {
				return fmt.Errorf("--json and --geojson are mutually exclusive")
			}

			stops, err := readStops(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return a.solve(cmd, stops, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.miles, "miles", false, "print distances in miles")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the route as JSON")
	cmd.Flags().BoolVar(&opts.geoJSON, "geojson", false, "print the route as a GeoJSON FeatureCollection")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the route cache")
	return cmd
}

func readStops(path string, stdin io.Reader) ([]models.Coordinate, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stops: %w", err)
	}

	stops, err := parseStops(data, strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		return nil, err
	}
	if len(stops) == 0 {
		return nil, fmt.Errorf("no stops found in %s", path)
	}
	if err := models.ValidateAll(stops); err != nil {
		return nil, err
	}
	return stops, nil
}

func parseStops(data []byte, isJSON bool) ([]models.Coordinate, error) {
	unmarshal := yaml.Unmarshal
	if isJSON {
		unmarshal = json.Unmarshal
	}

	var list []models.Coordinate
	if err := unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapped stopsFile
	if err := unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse stops: %w", err)
	}
	return wrapped.Stops, nil
}

func (a *app) solve(cmd *cobra.Command, stops []models.Coordinate, opts solveOptions) error {
	var repo database.RouteCacheRepository
	if !opts.noCache {
		store, err := server.OpenCache(a.cfg.Cache, a.logger)
		if err != nil {
			a.logger.Warn("[CACHE] Route cache unavailable, solving without it", zap.Error(err))
		} else if store != nil {
			defer store.Close()
			repo = store.RouteCache()
		}
	}

	solver := server.NewSolver(a.cfg.Solver, a.logger)
	route, cached, err := routing.NewCachedOptimizer(solver, repo, a.logger).Optimize(cmd.Context(), stops)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case opts.geoJSON:
		return writeIndentedJSON(out, export.RouteFeatureCollection(route))
	case opts.asJSON:
		return writeIndentedJSON(out, struct {
			Route  *models.OptimizedRoute `json:"route"`
			Cached bool                   `json:"cached"`
		}{route, cached})
	default:
		printRoute(out, route, opts.miles)
		return nil
	}
}

func writeIndentedJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRoute(w io.Writer, route *models.OptimizedRoute, miles bool) {
	fmt.Fprintf(w, "Route: %d stops, %s\n", len(route.Path), distance.FormatDistance(route.TotalKm, miles))
	for i, stop := range route.Path {
		if i == 0 {
			fmt.Fprintf(w, "%3d. %s (start)\n", i+1, stop.Name)
			continue
		}
		leg := route.Legs[i-1]
		fmt.Fprintf(w, "%3d. %s  +%s\n", i+1, stop.Name, distance.FormatDistance(leg.DistanceKm, miles))
	}
}
