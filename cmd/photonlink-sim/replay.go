package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"photonlink-sim/internal/config"
	"photonlink-sim/internal/link"
	"photonlink-sim/internal/logging"
	"photonlink-sim/internal/record"
)

var (
	replayInput     string
	replayDelay     time.Duration
	replayChunkSize int
	replayPrintOnly bool
	replayColor     bool
	replayFails     uint
	replayPasses    uint
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded CRC event log",
	Long:  "replay feeds CRC events from a JSONL log back through a link monitor and the configured writers.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(verbose)

		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		params := link.Params{FailsToDown: replayFails, PassesToUp: replayPasses}
		if err := params.Validate(); err != nil {
			return err
		}

		cfg := config.Defaults()
		cfg.Name = "replay"
		cfg.ChunkSize = replayChunkSize
		cfg.Link.FailsToDown = replayFails
		cfg.Link.PassesToUp = replayPasses

		writer, cleanup, err := newWriters(&cfg, writerOptions{
			printOnly: replayPrintOnly,
			color:     replayColor,
			runID:     uuid.New().String(),
			scenario:  cfg.Name,
		}, log)
		if err != nil {
			return err
		}
		defer cleanup()

		mon := link.NewReferenceMonitor(params)
		return record.ReplayEventFile(replayInput, mon, writer, replayChunkSize, replayDelay)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to events.jsonl")
	replayCmd.Flags().DurationVar(&replayDelay, "delay", 0, "Pause per cycle (e.g. 10ms); 0 replays at full speed")
	replayCmd.Flags().IntVar(&replayChunkSize, "chunk-size", 10, "Cycles per flushed chunk")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to DB")
	replayCmd.Flags().BoolVar(&replayColor, "color", false, "Render a colored per-cycle view on STDOUT")
	replayCmd.Flags().UintVar(&replayFails, "fails-to-down", 4, "Consecutive CRC failures before the link drops")
	replayCmd.Flags().UintVar(&replayPasses, "passes-to-up", 8, "Consecutive passes before the link recovers")
	replayCmd.MarkFlagRequired("input")
}
