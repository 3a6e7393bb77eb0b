// Command routeopt computes exact minimum-distance visiting orders for
// small sets of geographic stops, from the command line or over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"route-optimizer/internal/config"
	"route-optimizer/internal/database"
	"route-optimizer/internal/logging"
)

// app carries state shared by every subcommand once the root pre-run hook
// has loaded configuration
type app struct {
	configPath string
	verbose    bool

	// cfgFile is configPath with the default applied
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "routeopt",
		Short: "Exact shortest open-path route optimizer",
		Long: `routeopt finds the shortest order in which to visit a small set of
geographic stops, starting from the first stop and ending wherever the
cheapest order ends. Distances are great-circle (haversine) kilometers.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default ~/.route-optimizer/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newServeCmd(a), newSolveCmd(a), newConfigCmd(a))
	return root
}

func (a *app) init() error {
	path := a.configPath
	if path == "" {
		var err error
		if path, err = database.GetConfigFilePath(); err != nil {
			return err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}

	a.cfgFile = path
	a.cfg = cfg
	a.logger = logger
	return nil
}
