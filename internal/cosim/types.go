// Core records exchanged between the co-simulation kernel and its writers.
package cosim

import (
	"time"

	"photonlink-sim/internal/link"
)

// CrcEvent is the realized outcome for one cycle. Valid reports whether a
// frame was present; on invalid cycles Failed is always false and no
// randomness was consumed.
type CrcEvent struct {
	Cycle    int     `json:"cycle"`
	Chunk    int     `json:"chunk"`
	Valid    bool    `json:"valid"`
	FailProb float64 `json:"fail_probability"`
	Failed   bool    `json:"failed"`
}

// LinkStateSample is the monitor state recorded after one cycle.
type LinkStateSample struct {
	Cycle         int  `json:"cycle"`
	LinkUp        bool `json:"link_up"`
	TotalFrames   uint `json:"total_frames"`
	TotalCrcFails uint `json:"total_crc_fails"`
	ConsecFails   uint `json:"consec_fails"`
	ConsecPasses  uint `json:"consec_passes"`
}

// NewLinkStateSample tags a monitor snapshot with its cycle index.
func NewLinkStateSample(cycle int, st link.State) LinkStateSample {
	return LinkStateSample{
		Cycle:         cycle,
		LinkUp:        st.LinkUp,
		TotalFrames:   st.TotalFrames,
		TotalCrcFails: st.TotalCrcFails,
		ConsecFails:   st.ConsecFails,
		ConsecPasses:  st.ConsecPasses,
	}
}

// TimeSeriesSample is the plant/controller state recorded each cycle.
type TimeSeriesSample struct {
	Cycle            int      `json:"cycle"`
	TempC            float64  `json:"temp_c"`
	DetuneNm         float64  `json:"detune_nm"`
	Locked           bool     `json:"locked"`
	CrcFailProb      float64  `json:"crc_fail_prob"`
	HeaterDuty       float64  `json:"heater_duty"`
	WorkloadFrac     float64  `json:"workload_frac"`
	ControllerError  *float64 `json:"controller_error,omitempty"`
	ControllerActive bool     `json:"controller_active"`
}

// ChunkSummary covers the half-open cycle range [StartCycle, EndCycle).
// The final chunk of a run may be shorter than the configured chunk size.
type ChunkSummary struct {
	ChunkIdx   int `json:"chunk_idx"`
	StartCycle int `json:"start_cycle"`
	EndCycle   int `json:"end_cycle"`
}

// RunMetrics is computed once at run end and never mutated afterwards.
type RunMetrics struct {
	RunID        string    `json:"run_id"`
	ScenarioName string    `json:"scenario_name"`
	TotalCycles  int       `json:"total_cycles"`
	TotalChunks  int       `json:"total_chunks"`
	StartTime    time.Time `json:"start_time"`
	FinishTime   time.Time `json:"finish_time"`
}

// RunResult aggregates everything a run produced. It is handed off
// read-only to artifact and validation collaborators once the kernel
// returns.
type RunResult struct {
	Metrics    RunMetrics         `json:"metrics"`
	Chunks     []ChunkSummary     `json:"chunks"`
	Timeseries []TimeSeriesSample `json:"timeseries,omitempty"`
	Events     []CrcEvent         `json:"events,omitempty"`
	LinkStates []LinkStateSample  `json:"link_states,omitempty"`
}
