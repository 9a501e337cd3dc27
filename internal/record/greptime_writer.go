package record

import (
	"context"
	"log/slog"
	"time"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	ingesterContext "github.com/GreptimeTeam/greptimedb-ingester-go/context"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"photonlink-sim/internal/cosim"
)

// GreptimeWriter streams timeseries samples and link states to GreptimeDB
// so long runs can be inspected with SQL while they execute.
type GreptimeWriter struct {
	client   greptime.Client
	db       string
	runID    string
	scenario string
	log      *slog.Logger
}

// NewGreptimeWriter creates a GreptimeDB writer and auto-creates the tables
// if needed.
func NewGreptimeWriter(endpoint, database, runID, scenario string, log *slog.Logger) (*GreptimeWriter, error) {
	ctx := ingesterContext.NewContext(context.Background())
	client, err := greptime.NewClient(ctx, &greptime.Config{
		Endpoint: endpoint,
	})
	if err != nil {
		return nil, err
	}

	// Auto-create table schemas
	ddls := []string{`
CREATE TABLE IF NOT EXISTS cosim_timeseries (
  run_id STRING TAG,
  scenario STRING TAG,
  cycle DOUBLE,
  temp_c DOUBLE,
  detune_nm DOUBLE,
  locked DOUBLE,
  crc_fail_prob DOUBLE,
  heater_duty DOUBLE,
  workload_frac DOUBLE,
  ts TIMESTAMP TIME INDEX
) WITH (ttl='30d')
`, `
CREATE TABLE IF NOT EXISTS cosim_link_state (
  run_id STRING TAG,
  scenario STRING TAG,
  cycle DOUBLE,
  link_up DOUBLE,
  consec_fails DOUBLE,
  consec_passes DOUBLE,
  total_frames DOUBLE,
  total_crc_fails DOUBLE,
  ts TIMESTAMP TIME INDEX
) WITH (ttl='30d')
`}
	for _, ddl := range ddls {
		if _, err := client.SQL(ctx, ddl); err != nil {
			return nil, err
		}
	}

	return &GreptimeWriter{
		client:   client,
		db:       database,
		runID:    runID,
		scenario: scenario,
		log:      log,
	}, nil
}

// WriteChunk implements Writer.
func (w *GreptimeWriter) WriteChunk(summary cosim.ChunkSummary, samples []cosim.TimeSeriesSample, events []cosim.CrcEvent, states []cosim.LinkStateSample) error {
	var tables []*table.Table
	now := time.Now()

	if len(samples) > 0 {
		tables = append(tables, w.sampleTable(samples, now))
	}
	if len(states) > 0 {
		tables = append(tables, w.stateTable(states, now))
	}
	if len(tables) == 0 {
		return nil
	}

	ctx := ingesterContext.NewContext(context.Background())
	if err := w.client.Write(ctx, w.db, tables); err != nil {
		w.log.Error("greptime write failed", "chunk", summary.ChunkIdx, "error", err)
		return err
	}
	w.log.Debug("greptime chunk written",
		"chunk", summary.ChunkIdx, "samples", len(samples), "states", len(states))
	return nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (w *GreptimeWriter) sampleTable(samples []cosim.TimeSeriesSample, now time.Time) *table.Table {
	tbl := table.New("cosim_timeseries")
	tbl.AddTagColumn("run_id", types.StringType, 0)
	tbl.AddTagColumn("scenario", types.StringType, 0)
	tbl.AddFieldColumn("cycle", types.Float64Type)
	tbl.AddFieldColumn("temp_c", types.Float64Type)
	tbl.AddFieldColumn("detune_nm", types.Float64Type)
	tbl.AddFieldColumn("locked", types.Float64Type)
	tbl.AddFieldColumn("crc_fail_prob", types.Float64Type)
	tbl.AddFieldColumn("heater_duty", types.Float64Type)
	tbl.AddFieldColumn("workload_frac", types.Float64Type)
	tbl.SetTimeIndex("ts", types.TimestampType)

	for _, s := range samples {
		tbl.AppendTagValue("run_id", w.runID)
		tbl.AppendTagValue("scenario", w.scenario)
		tbl.AppendFieldValue("cycle", float64(s.Cycle))
		tbl.AppendFieldValue("temp_c", s.TempC)
		tbl.AppendFieldValue("detune_nm", s.DetuneNm)
		tbl.AppendFieldValue("locked", boolToFloat(s.Locked))
		tbl.AppendFieldValue("crc_fail_prob", s.CrcFailProb)
		tbl.AppendFieldValue("heater_duty", s.HeaterDuty)
		tbl.AppendFieldValue("workload_frac", s.WorkloadFrac)
		tbl.AppendTimeIndex(now)
	}
	return tbl
}

func (w *GreptimeWriter) stateTable(states []cosim.LinkStateSample, now time.Time) *table.Table {
	tbl := table.New("cosim_link_state")
	tbl.AddTagColumn("run_id", types.StringType, 0)
	tbl.AddTagColumn("scenario", types.StringType, 0)
	tbl.AddFieldColumn("cycle", types.Float64Type)
	tbl.AddFieldColumn("link_up", types.Float64Type)
	tbl.AddFieldColumn("consec_fails", types.Float64Type)
	tbl.AddFieldColumn("consec_passes", types.Float64Type)
	tbl.AddFieldColumn("total_frames", types.Float64Type)
	tbl.AddFieldColumn("total_crc_fails", types.Float64Type)
	tbl.SetTimeIndex("ts", types.TimestampType)

	for _, st := range states {
		tbl.AppendTagValue("run_id", w.runID)
		tbl.AppendTagValue("scenario", w.scenario)
		tbl.AppendFieldValue("cycle", float64(st.Cycle))
		tbl.AppendFieldValue("link_up", boolToFloat(st.LinkUp))
		tbl.AppendFieldValue("consec_fails", float64(st.ConsecFails))
		tbl.AppendFieldValue("consec_passes", float64(st.ConsecPasses))
		tbl.AppendFieldValue("total_frames", float64(st.TotalFrames))
		tbl.AppendFieldValue("total_crc_fails", float64(st.TotalCrcFails))
		tbl.AppendTimeIndex(now)
	}
	return tbl
}
