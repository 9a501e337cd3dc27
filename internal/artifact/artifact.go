// Package artifact persists completed runs to a per-run directory so results
// can be diffed and post-processed offline.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"photonlink-sim/internal/cosim"
)

// Artifact file names within a run directory.
const (
	MetricsFile    = "metrics.json"
	TimeseriesFile = "timeseries.json"
	EventsFile     = "events.jsonl"
	LinkStateFile  = "link_state.json"
)

// metricsPayload is the on-disk shape of metrics.json.
type metricsPayload struct {
	Run    cosim.RunMetrics     `json:"run"`
	Chunks []cosim.ChunkSummary `json:"chunks"`
}

// CleanName lowercases a scenario name and replaces anything outside
// [a-z0-9-] so it is safe as a directory component.
func CleanName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "run"
	}
	return out
}

// RunDir returns the directory for a new run under base, named by start time
// and scenario.
func RunDir(base, scenario string, start time.Time) string {
	return filepath.Join(base, "runs", fmt.Sprintf("%s_%s", start.Format("20060102-150405"), CleanName(scenario)))
}

// WriteRunArtifacts writes the run's metrics, timeseries, CRC events, and
// link state history into dir, creating it if needed.
func WriteRunArtifacts(dir string, res *cosim.RunResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	payload := metricsPayload{Run: res.Metrics, Chunks: res.Chunks}
	if err := writeJSON(filepath.Join(dir, MetricsFile), payload); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, TimeseriesFile), res.Timeseries); err != nil {
		return err
	}
	if err := writeJSONL(filepath.Join(dir, EventsFile), res.Events); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, LinkStateFile), res.LinkStates)
}

// ReadMetrics loads a run's metrics.json.
func ReadMetrics(dir string) (cosim.RunMetrics, []cosim.ChunkSummary, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetricsFile))
	if err != nil {
		return cosim.RunMetrics{}, nil, err
	}
	var payload metricsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return cosim.RunMetrics{}, nil, err
	}
	return payload.Run, payload.Chunks, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSONL[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}
