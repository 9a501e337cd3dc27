package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"photonlink-sim/internal/config"
	"photonlink-sim/internal/record"
)

// writerOptions selects the output sinks for a run or replay.
type writerOptions struct {
	printOnly bool
	color     bool
	tui       bool
	logDir    string
	runID     string
	scenario  string
}

// newWriters assembles the writer fan-out from flags and env vars. It
// returns the combined writer and a cleanup function closing any resources.
func newWriters(cfg *config.SimulationConfig, opts writerOptions, log *slog.Logger) (*record.MultiWriter, func(), error) {
	var writers []record.Writer

	switch {
	case opts.tui:
		hdr := record.TUIHeader{
			Scenario:    cfg.Name,
			TotalCycles: cfg.Cycles,
			ChunkSize:   cfg.ChunkSize,
			Seed:        cfg.Seed,
			Controller:  cfg.Controller.Kind,
			LinkEnabled: cfg.Link.Enabled,
		}
		writers = append(writers, record.NewTUIWriter(hdr))
	case opts.color:
		writers = append(writers, record.NewColorStdoutWriter())
	case opts.printOnly:
		writers = append(writers, record.NewStdoutJSONWriter())
	}

	if !opts.printOnly {
		if endpoint := os.Getenv("GREPTIMEDB_ENDPOINT"); endpoint != "" {
			database := os.Getenv("GREPTIMEDB_DATABASE")
			if database == "" {
				database = "public"
			}
			gw, err := record.NewGreptimeWriter(endpoint, database, opts.runID, cfg.Name, log)
			if err != nil {
				return nil, nil, err
			}
			writers = append(writers, gw)
		}
	}

	if opts.logDir != "" {
		if err := os.MkdirAll(opts.logDir, 0o755); err != nil {
			return nil, nil, err
		}
		fw, err := record.NewFileWriter(
			filepath.Join(opts.logDir, "events.jsonl"),
			filepath.Join(opts.logDir, "link_state.jsonl"),
			filepath.Join(opts.logDir, "timeseries.jsonl"),
		)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, fw)
	}

	mw := record.NewMultiWriter(writers...)
	cleanup := func() { _ = mw.Close() }
	return mw, cleanup, nil
}
