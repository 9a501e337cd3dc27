package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"photonlink-sim/internal/artifact"
	"photonlink-sim/internal/config"
	"photonlink-sim/internal/cosim"
	"photonlink-sim/internal/link"
	"photonlink-sim/internal/link/extern"
	"photonlink-sim/internal/link/rtlmodel"
	"photonlink-sim/internal/logging"
	"photonlink-sim/internal/plant"
)

var (
	runConfigPath  string
	runSchemaPath  string
	runPrintOnly   bool
	runColor       bool
	runTUI         bool
	runLogDir      string
	runArtifactDir string
	runMonitorKind string
	runExternCmd   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a co-simulation scenario",
	Long:  "run executes a configured scenario cycle by cycle and records timeseries, CRC events, and link state.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(verbose)

		cfg, err := config.Load(runConfigPath, runSchemaPath)
		if err != nil {
			return err
		}

		runID := uuid.New().String()
		writer, cleanup, err := newWriters(cfg, writerOptions{
			printOnly: runPrintOnly,
			color:     runColor,
			tui:       runTUI,
			logDir:    runLogDir,
			runID:     runID,
			scenario:  cfg.Name,
		}, log)
		if err != nil {
			return err
		}
		defer cleanup()

		mon, monCleanup, err := newMonitor(cfg)
		if err != nil {
			return err
		}
		defer monCleanup()

		sched, err := cfg.Schedule.Build()
		if err != nil {
			return err
		}
		ctrl, err := cfg.Controller.Build()
		if err != nil {
			return err
		}

		kernel, err := cosim.NewKernel(
			cfg.RunConfig(),
			plant.NewRunner(cfg.Plant, cfg.InitialTempC),
			sched,
			ctrl,
			mon,
			writer,
		)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(logging.NewContext(context.Background(), log))
		defer cancel()

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigs
			log.Info("shutdown requested, finishing current chunk")
			cancel()
		}()

		res, runErr := kernel.Run(ctx)
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			return runErr
		}

		if runArtifactDir != "" && res != nil {
			dir := artifact.RunDir(runArtifactDir, cfg.Name, time.Now())
			if err := artifact.WriteRunArtifacts(dir, res); err != nil {
				return fmt.Errorf("write artifacts: %w", err)
			}
			log.Info("artifacts written", "dir", dir)
		}
		return nil
	},
}

// newMonitor builds the configured link monitor implementation, or nil when
// link monitoring is disabled.
func newMonitor(cfg *config.SimulationConfig) (link.Monitor, func(), error) {
	noop := func() {}
	if !cfg.Link.Enabled {
		return nil, noop, nil
	}
	params := cfg.Link.Params()
	if err := params.Validate(); err != nil {
		return nil, noop, err
	}
	switch runMonitorKind {
	case "", "software":
		return link.NewReferenceMonitor(params), noop, nil
	case "rtl":
		return rtlmodel.New(params), noop, nil
	case "extern":
		if runExternCmd == "" {
			return nil, noop, &cosim.ConfigError{Param: "extern-cmd", Value: runExternCmd, Reason: "required for the extern monitor"}
		}
		m, err := extern.Start(runExternCmd, params)
		if err != nil {
			return nil, noop, err
		}
		return m, func() { _ = m.Close() }, nil
	default:
		return nil, noop, &cosim.ConfigError{Param: "monitor", Value: runMonitorKind, Reason: "must be software, rtl, or extern"}
	}
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	runCmd.Flags().StringVar(&runSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	runCmd.Flags().BoolVar(&runPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to DB")
	runCmd.Flags().BoolVar(&runColor, "color", false, "Render a colored per-cycle view on STDOUT")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "Render a live TUI view")
	runCmd.Flags().StringVar(&runLogDir, "log-dir", "", "Directory for streaming JSONL logs")
	runCmd.Flags().StringVar(&runArtifactDir, "artifacts", "artifacts", "Base directory for run artifacts (empty to disable)")
	runCmd.Flags().StringVar(&runMonitorKind, "monitor", "software", "Link monitor implementation: software, rtl, or extern")
	runCmd.Flags().StringVar(&runExternCmd, "extern-cmd", "", "External monitor binary for --monitor=extern")
}
