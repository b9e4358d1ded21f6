package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cmorand/tmharvest/internal/browser"
	"github.com/cmorand/tmharvest/internal/config"
	"github.com/cmorand/tmharvest/internal/harvest"
	"github.com/cmorand/tmharvest/internal/observability"
	"github.com/cmorand/tmharvest/internal/sectioned"
	"github.com/cmorand/tmharvest/internal/store"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Harvest records from rendered record pages",
	Long: `Drives a browser session through each record page and its section tabs
(people, places, irregularities, collections), extracting metadata,
publications, and the transcribed text into one JSON document per id.

Before the first record the browser loads a bootstrap page and waits for
the site's interactive verification challenge to clear; solve it in the
opened window. The wait resumes after --gate-wait seconds regardless.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runRender,
}

var (
	renderConfigPath string
	renderStart      int
	renderEnd        int
	renderOut        string
	renderBaseURL    string
	renderDelay      float64
	renderGateWait   int
	renderHeadless   bool
	renderResume     bool
	renderVerbose    bool
)

func init() {
	renderCmd.Flags().StringVar(&renderConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	renderCmd.Flags().IntVar(&renderStart, "start", 1, "First identifier (inclusive)")
	renderCmd.Flags().IntVar(&renderEnd, "end", 10, "Last identifier (inclusive; may be below --start for a descending run)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "out", "Output directory")
	renderCmd.Flags().StringVar(&renderBaseURL, "base-url", sectioned.DefaultBaseURL, "Record page base URL")
	renderCmd.Flags().Float64Var(&renderDelay, "delay", 1.0, "Seconds to wait between records")
	renderCmd.Flags().IntVar(&renderGateWait, "gate-wait", 40, "Ceiling in seconds for the verification gate")
	renderCmd.Flags().BoolVar(&renderHeadless, "headless", false, "Hide the browser window (the verification challenge cannot be solved headless)")
	renderCmd.Flags().BoolVar(&renderResume, "resume", false, "Skip identifiers whose output file already exists")
	renderCmd.Flags().BoolVarP(&renderVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd, renderConfigPath, config.Config{
		Start:    renderStart,
		End:      renderEnd,
		Out:      renderOut,
		BaseURL:  renderBaseURL,
		Delay:    renderDelay,
		GateWait: renderGateWait,
	})
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("resume") || renderConfigPath == "" {
		cfg.Resume = renderResume
	}
	if cmd.Flags().Changed("verbose") || renderConfigPath == "" {
		cfg.Verbose = renderVerbose
	}

	session, err := browser.NewSession(ctx, browser.Options{
		Headless: renderHeadless,
		Verbose:  cfg.Verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to start browser session: %w", err)
	}
	defer session.Close()

	strategy := sectioned.New(session, cfg.BaseURL, nil, cfg.Verbose)

	// One-time session gate before the first record of the run.
	gateWait := time.Duration(cfg.GateWait) * time.Second
	if err := session.AwaitVerification(ctx, strategy.RecordURL(cfg.Start), nil, 0, gateWait); err != nil {
		return fmt.Errorf("session gate failed: %w", err)
	}

	st := store.New(cfg.Out)
	runner := harvest.New(strategy, st, harvest.Options{
		Start:   cfg.Start,
		End:     cfg.End,
		Delay:   time.Duration(cfg.Delay * float64(time.Second)),
		Resume:  cfg.Resume,
		Verbose: cfg.Verbose,
	})

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintRunHeader(uuid.NewString(), "render", cfg.Start, cfg.End, cfg.Out)

	stats, err := runner.Run(ctx)
	printer.PrintSummary(stats)
	return err
}
