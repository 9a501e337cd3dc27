package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"photonlink-sim/internal/cosim"
	"photonlink-sim/internal/link"
	"photonlink-sim/internal/link/equiv"
	"photonlink-sim/internal/link/extern"
	"photonlink-sim/internal/link/rtlmodel"
	"photonlink-sim/internal/logging"
)

var (
	verifyInput     string
	verifyCycles    int
	verifySeed      uint64
	verifyFailProb  float64
	verifyGapPeriod int
	verifyFails     uint
	verifyPasses    uint
	verifyExternCmd string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validate link monitor implementations against the software model",
	Long: "verify replays a frame sequence through the software monitor and the register-level model " +
		"in lock-step and reports any state divergence. With --extern-cmd an external monitor process " +
		"is checked as well.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(verbose)

		params := link.Params{FailsToDown: verifyFails, PassesToUp: verifyPasses}
		if err := params.Validate(); err != nil {
			return err
		}

		frames, err := verifyFrames()
		if err != nil {
			return err
		}
		log.Info("replaying frames", "count", len(frames))

		report := equiv.Replay(frames, link.NewReferenceMonitor(params), rtlmodel.New(params))
		if err := printReport("rtl-model", report); err != nil {
			return err
		}
		clean := report.Clean()

		if verifyExternCmd != "" {
			mon, err := extern.Start(verifyExternCmd, params)
			if err != nil {
				if errors.Is(err, extern.ErrUnavailable) {
					log.Warn("external monitor unavailable, skipped", "cmd", verifyExternCmd)
				} else {
					return err
				}
			} else {
				defer mon.Close()
				report := equiv.Replay(frames, link.NewReferenceMonitor(params), mon)
				if err := mon.Err(); err != nil {
					return fmt.Errorf("external monitor failed mid-replay: %w", err)
				}
				if err := printReport("extern", report); err != nil {
					return err
				}
				clean = clean && report.Clean()
			}
		}

		if !clean {
			return fmt.Errorf("implementations diverged")
		}
		return nil
	},
}

// verifyFrames loads frames from the recorded event log, or synthesizes a
// deterministic sequence from the sampler when no input is given.
func verifyFrames() ([]equiv.Frame, error) {
	if verifyInput != "" {
		f, err := os.Open(verifyInput)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		var frames []equiv.Frame
		dec := json.NewDecoder(f)
		for {
			var ev cosim.CrcEvent
			if err := dec.Decode(&ev); err != nil {
				if err == io.EOF {
					return frames, nil
				}
				return nil, err
			}
			frames = append(frames, equiv.Frame{Valid: ev.Valid, Failed: ev.Failed})
		}
	}

	sampler := cosim.NewEventSampler(verifySeed)
	frames := make([]equiv.Frame, 0, verifyCycles)
	for cycle := 0; cycle < verifyCycles; cycle++ {
		valid := verifyGapPeriod <= 0 || cycle%verifyGapPeriod != verifyGapPeriod-1
		ev := sampler.Sample(cycle, 0, verifyFailProb, valid, true)
		frames = append(frames, equiv.Frame{Valid: ev.Valid, Failed: ev.Failed})
	}
	return frames, nil
}

func printReport(name string, report equiv.Report) error {
	out := struct {
		Implementation string `json:"implementation"`
		equiv.Report
	}{Implementation: name, Report: report}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func init() {
	verifyCmd.Flags().StringVar(&verifyInput, "input", "", "Replay frames from a recorded events.jsonl instead of synthesizing")
	verifyCmd.Flags().IntVar(&verifyCycles, "cycles", 10000, "Synthetic frame count")
	verifyCmd.Flags().Uint64Var(&verifySeed, "seed", 1, "Synthetic sequence seed")
	verifyCmd.Flags().Float64Var(&verifyFailProb, "fail-prob", 0.3, "Synthetic per-frame CRC failure probability")
	verifyCmd.Flags().IntVar(&verifyGapPeriod, "gap-period", 7, "Insert an idle frame every N cycles (0 disables)")
	verifyCmd.Flags().UintVar(&verifyFails, "fails-to-down", 4, "Consecutive CRC failures before the link drops")
	verifyCmd.Flags().UintVar(&verifyPasses, "passes-to-up", 8, "Consecutive passes before the link recovers")
	verifyCmd.Flags().StringVar(&verifyExternCmd, "extern-cmd", "", "External monitor binary to validate")
}
