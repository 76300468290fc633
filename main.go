package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sheikhrachel/go-gol3d/utils"
)

var (
	configPath  string
	ruleFlag    string
	generations int
	width       int
	height      int
	depth       int
	workers     int
	logLevel    string

	rootCmd = &cobra.Command{
		Use:   "gol3d",
		Short: "Run a 3D cellular automaton with decaying cells",
		Long: `gol3d advances a dense 3D lattice under a birth/survival/decay rule
written as creates/survives/initial/topology, for example 4/4/5/M.`,
		SilenceUsage: true,
		RunE:         runSimulation,
	}
)

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "JSON or YAML config file")
	rootCmd.Flags().StringVarP(&ruleFlag, "rule", "r", "", "rule notation, overrides the config file")
	rootCmd.Flags().IntVarP(&generations, "generations", "g", 0, "number of generations to run")
	rootCmd.Flags().IntVar(&width, "width", 0, "lattice width")
	rootCmd.Flags().IntVar(&height, "height", 0, "lattice height")
	rootCmd.Flags().IntVar(&depth, "depth", 0, "lattice depth")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines per generation (0 = NumCPU)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	config, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(config.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return run(ctx, config, logger)
}

// resolveConfig loads the config file, if any, and applies explicitly set flags on top
func resolveConfig(cmd *cobra.Command) (utils.Config, error) {
	config := utils.DefaultConfig()
	if configPath != "" {
		var err error
		if config, err = utils.LoadConfig(configPath); err != nil {
			return config, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("rule") {
		config.Rule = ruleFlag
	}
	if flags.Changed("generations") {
		config.Generations = generations
	}
	if flags.Changed("width") {
		config.Width = width
	}
	if flags.Changed("height") {
		config.Height = height
	}
	if flags.Changed("depth") {
		config.Depth = depth
	}
	if flags.Changed("workers") {
		config.Workers = workers
	}
	if flags.Changed("log-level") {
		config.LogLevel = logLevel
	}

	return config, config.Validate()
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
