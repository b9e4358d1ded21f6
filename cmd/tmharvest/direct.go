package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cmorand/tmharvest/internal/config"
	"github.com/cmorand/tmharvest/internal/direct"
	"github.com/cmorand/tmharvest/internal/fetch"
	"github.com/cmorand/tmharvest/internal/harvest"
	"github.com/cmorand/tmharvest/internal/observability"
	"github.com/cmorand/tmharvest/internal/robots"
	"github.com/cmorand/tmharvest/internal/store"
)

var directCmd = &cobra.Command{
	Use:   "direct",
	Short: "Harvest records from the GeoResponder JSON endpoint",
	Long: `Walks the identifier range against the structured-data endpoint and saves
each valid JSON payload as id_<N>.json. In auto mode the download variant
(dl=1) is tried first with a fallback to the plain view.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runDirect,
}

var (
	directConfigPath  string
	directStart       int
	directEnd         int
	directOut         string
	directBaseURL     string
	directMode        string
	directDelay       float64
	directTimeout     int
	directResume      bool
	directCheckRobots bool
	directVerbose     bool
)

func init() {
	directCmd.Flags().StringVar(&directConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	directCmd.Flags().IntVar(&directStart, "start", 1500, "First identifier (inclusive)")
	directCmd.Flags().IntVar(&directEnd, "end", 2000, "Last identifier (inclusive; may be below --start for a descending run)")
	directCmd.Flags().StringVarP(&directOut, "out", "o", "out", "Output directory")
	directCmd.Flags().StringVar(&directBaseURL, "base-url", direct.DefaultBaseURL, "Data endpoint base URL")
	directCmd.Flags().StringVar(&directMode, "mode", "auto", "Access mode: auto, download, or view")
	directCmd.Flags().Float64Var(&directDelay, "delay", 0.5, "Seconds to wait between record fetches")
	directCmd.Flags().IntVar(&directTimeout, "timeout", 20, "HTTP timeout in seconds")
	directCmd.Flags().BoolVar(&directResume, "resume", false, "Skip identifiers whose output file already exists")
	directCmd.Flags().BoolVar(&directCheckRobots, "check-robots", true, "Read the site's crawl policy before starting")
	directCmd.Flags().BoolVarP(&directVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(directCmd)
}

func runDirect(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd, directConfigPath, config.Config{
		Start:   directStart,
		End:     directEnd,
		Out:     directOut,
		BaseURL: directBaseURL,
		Mode:    directMode,
		Delay:   directDelay,
		Timeout: directTimeout,
	})
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("resume") || directConfigPath == "" {
		cfg.Resume = directResume
	}
	if cmd.Flags().Changed("check-robots") || directConfigPath == "" {
		cfg.CheckRobots = directCheckRobots
	}
	if cmd.Flags().Changed("verbose") || directConfigPath == "" {
		cfg.Verbose = directVerbose
	}

	mode, err := direct.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	client := fetch.NewClient(&fetch.Options{
		Timeout: time.Duration(cfg.Timeout) * time.Second,
	})

	if cfg.CheckRobots && !robots.Allowed(ctx, client, cfg.BaseURL, fetch.DefaultUserAgent) {
		return fmt.Errorf("the site's crawl policy disallows %s for this user agent", cfg.BaseURL)
	}

	strategy := direct.New(client, cfg.BaseURL, mode, cfg.Verbose)
	st := store.New(cfg.Out)
	runner := harvest.New(strategy, st, harvest.Options{
		Start:   cfg.Start,
		End:     cfg.End,
		Delay:   time.Duration(cfg.Delay * float64(time.Second)),
		Resume:  cfg.Resume,
		Verbose: cfg.Verbose,
	})

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintRunHeader(uuid.NewString(), "direct ("+string(mode)+")", cfg.Start, cfg.End, cfg.Out)

	stats, err := runner.Run(ctx)
	printer.PrintSummary(stats)
	return err
}

// resolveConfig layers the three configuration sources: flag values beat
// config-file values, which beat the flag defaults passed in fromFlags.
func resolveConfig(cmd *cobra.Command, path string, fromFlags config.Config) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	flagged := config.Config{}
	if cmd.Flags().Changed("start") {
		flagged.Start = fromFlags.Start
	}
	if cmd.Flags().Changed("end") {
		flagged.End = fromFlags.End
	}
	if cmd.Flags().Changed("out") {
		flagged.Out = fromFlags.Out
	}
	if cmd.Flags().Changed("base-url") {
		flagged.BaseURL = fromFlags.BaseURL
	}
	if cmd.Flags().Changed("mode") {
		flagged.Mode = fromFlags.Mode
	}
	if cmd.Flags().Changed("delay") {
		flagged.Delay = fromFlags.Delay
	}
	if cmd.Flags().Changed("timeout") {
		flagged.Timeout = fromFlags.Timeout
	}
	if cmd.Flags().Changed("gate-wait") {
		flagged.GateWait = fromFlags.GateWait
	}

	cfg = flagged.MergeWithDefaults(cfg)
	cfg = cfg.MergeWithDefaults(fromFlags)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
