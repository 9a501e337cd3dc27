// Co-simulation kernel: the single time authority for a run.
package cosim

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"photonlink-sim/internal/control"
	"photonlink-sim/internal/link"
	"photonlink-sim/internal/logging"
	"photonlink-sim/internal/plant"
	"photonlink-sim/internal/scenario"
)

// RunConfig is the validated parameter set for one run.
type RunConfig struct {
	ScenarioName   string
	TotalCycles    int
	ChunkSize      int
	Seed           uint64
	DetuneTargetNm float64
}

// Observer receives the rows of each completed chunk. Writers that stream
// to files, a database, or a TUI implement this; the kernel flushes its
// per-chunk buffers through it at every chunk boundary.
type Observer interface {
	OnChunk(summary ChunkSummary, samples []TimeSeriesSample, events []CrcEvent, states []LinkStateSample) error
}

// inputSource yields the plant drive for one cycle. The open-loop and
// closed-loop variants are separate implementations so the stepping loop
// has no controller-presence checks.
type inputSource interface {
	reset()
	inputs(cycle int, last *plant.Outputs) (plant.Inputs, ctrlMeta, error)
}

// ctrlMeta is what the timeseries records about the controller.
type ctrlMeta struct {
	active bool
	err    float64
}

// openLoop drives the plant straight from the schedule.
type openLoop struct {
	sched scenario.Schedule
}

func (o *openLoop) reset() {}

func (o *openLoop) inputs(cycle int, _ *plant.Outputs) (plant.Inputs, ctrlMeta, error) {
	return o.sched(cycle), ctrlMeta{}, nil
}

// closedLoop lets the controller command the heater from the previous
// cycle's plant outputs; workload and timestep still come from the
// schedule. The very first cycle has no feedback yet and always uses the
// schedule unchanged.
type closedLoop struct {
	ctrl   control.Controller
	sched  scenario.Schedule
	target float64
}

func (c *closedLoop) reset() { c.ctrl.Reset() }

func (c *closedLoop) inputs(cycle int, last *plant.Outputs) (plant.Inputs, ctrlMeta, error) {
	in := c.sched(cycle)
	if last == nil {
		return in, ctrlMeta{}, nil
	}
	out := c.ctrl.Step(control.Inputs{
		DtS:            in.DtS,
		TempC:          last.TempC,
		DetuneNm:       last.DetuneNm,
		Locked:         last.Locked,
		CrcFailProb:    last.CrcFailProb,
		DetuneTargetNm: c.target,
	})
	if !isFinite(out.HeaterDuty) {
		return in, ctrlMeta{}, &NumericError{Cycle: cycle, Source: "controller", Field: "heater_duty", Value: out.HeaterDuty}
	}
	in.HeaterDuty = out.HeaterDuty
	return in, ctrlMeta{active: true, err: out.Error}, nil
}

// Kernel advances simulated cycles in chunks and coordinates the plant,
// controller, event sampler, and link monitor in a fixed per-cycle order.
// It exclusively owns the random stream, the plant state, and the monitor
// state for the duration of a run; collaborators only ever see immutable
// value records.
type Kernel struct {
	cfg      RunConfig
	plant    *plant.Runner
	source   inputSource
	sampler  *EventSampler
	monitor  link.Monitor
	observer Observer

	lastOutputs *plant.Outputs
}

// NewKernel assembles a kernel. sched is required; ctrl enables the closed
// loop; mon enables link monitoring; obs may be nil.
func NewKernel(cfg RunConfig, pr *plant.Runner, sched scenario.Schedule, ctrl control.Controller, mon link.Monitor, obs Observer) (*Kernel, error) {
	if pr == nil {
		return nil, &ConfigError{Param: "plant", Value: nil, Reason: "plant runner is required"}
	}
	if sched == nil {
		if ctrl == nil {
			return nil, &ConfigError{Param: "schedule", Value: nil, Reason: "open-loop runs need a schedule"}
		}
		// Closed loop without a schedule degrades to zero workload at the
		// default timestep.
		sched = scenario.Constant(0, 0, scenario.DefaultDtS)
	}
	var src inputSource
	if ctrl != nil {
		src = &closedLoop{ctrl: ctrl, sched: sched, target: cfg.DetuneTargetNm}
	} else {
		src = &openLoop{sched: sched}
	}
	return &Kernel{
		cfg:      cfg,
		plant:    pr,
		source:   src,
		sampler:  NewEventSampler(cfg.Seed),
		monitor:  mon,
		observer: obs,
	}, nil
}

// Run executes the simulation from cycle 0 to TotalCycles.
//
// Per-cycle order, never reordered: obtain inputs, step plant, realize and
// monitor the CRC event (when enabled), record the timeseries sample, and
// at a chunk boundary emit the ChunkSummary and flush buffered rows.
// Chunking is purely a recording granularity; evaluation is per-cycle.
//
// Cancellation is honored between chunks only, never mid-cycle; on
// cancellation the partial result up to the last completed chunk is
// returned together with the context error.
func (k *Kernel) Run(ctx context.Context) (*RunResult, error) {
	if k.cfg.ChunkSize <= 0 {
		return nil, &ConfigError{Param: "chunk_size", Value: k.cfg.ChunkSize, Reason: "must be > 0"}
	}
	if k.cfg.TotalCycles < 0 {
		return nil, &ConfigError{Param: "total_cycles", Value: k.cfg.TotalCycles, Reason: "must be >= 0"}
	}

	log := logging.FromContext(ctx)
	log.Info("starting run",
		"scenario", k.cfg.ScenarioName,
		"cycles", k.cfg.TotalCycles,
		"chunk_size", k.cfg.ChunkSize,
		"seed", k.cfg.Seed,
		"link_monitor", k.monitor != nil,
	)

	start := time.Now().UTC()
	k.source.reset()
	k.sampler.Reset(k.cfg.Seed)
	if k.monitor != nil {
		k.monitor.Reset()
	}
	k.lastOutputs = nil

	res := &RunResult{}
	var chunkSamples []TimeSeriesSample
	var chunkEvents []CrcEvent
	var chunkStates []LinkStateSample

	chunkIdx := 0
	chunkStart := 0

	for cycle := 0; cycle < k.cfg.TotalCycles; cycle++ {
		in, meta, err := k.source.inputs(cycle, k.lastOutputs)
		if err != nil {
			return nil, err
		}

		out := k.plant.Step(in)
		if err := checkFinite(cycle, out); err != nil {
			return nil, err
		}
		k.lastOutputs = &out

		if k.monitor != nil {
			ev := k.sampler.Sample(cycle, chunkIdx, out.CrcFailProb, in.FrameValid, out.Locked)
			st := k.monitor.Step(ev.Valid, ev.Failed)
			chunkEvents = append(chunkEvents, ev)
			chunkStates = append(chunkStates, NewLinkStateSample(cycle, st))
		}

		sample := TimeSeriesSample{
			Cycle:            cycle,
			TempC:            out.TempC,
			DetuneNm:         out.DetuneNm,
			Locked:           out.Locked,
			CrcFailProb:      out.CrcFailProb,
			HeaterDuty:       in.HeaterDuty,
			WorkloadFrac:     in.WorkloadFrac,
			ControllerActive: meta.active,
		}
		if meta.active {
			e := meta.err
			sample.ControllerError = &e
		}
		chunkSamples = append(chunkSamples, sample)

		if (cycle+1)%k.cfg.ChunkSize == 0 || cycle == k.cfg.TotalCycles-1 {
			summary := ChunkSummary{ChunkIdx: chunkIdx, StartCycle: chunkStart, EndCycle: cycle + 1}
			res.Chunks = append(res.Chunks, summary)
			res.Timeseries = append(res.Timeseries, chunkSamples...)
			res.Events = append(res.Events, chunkEvents...)
			res.LinkStates = append(res.LinkStates, chunkStates...)

			if k.observer != nil {
				if err := k.observer.OnChunk(summary, chunkSamples, chunkEvents, chunkStates); err != nil {
					log.Error("observer flush failed", "chunk", chunkIdx, "err", err)
				}
			}
			chunkSamples, chunkEvents, chunkStates = nil, nil, nil
			chunkIdx++
			chunkStart = cycle + 1

			if err := ctx.Err(); err != nil {
				log.Info("run aborted between chunks", "completed_cycles", chunkStart, "chunks", chunkIdx)
				res.Metrics = k.metrics(start, chunkStart, chunkIdx)
				return res, err
			}
		}
	}

	res.Metrics = k.metrics(start, k.cfg.TotalCycles, chunkIdx)
	log.Info("run finished", "cycles", res.Metrics.TotalCycles, "chunks", res.Metrics.TotalChunks)
	return res, nil
}

func (k *Kernel) metrics(start time.Time, cycles, chunks int) RunMetrics {
	return RunMetrics{
		RunID:        uuid.New().String(),
		ScenarioName: k.cfg.ScenarioName,
		TotalCycles:  cycles,
		TotalChunks:  chunks,
		StartTime:    start,
		FinishTime:   time.Now().UTC(),
	}
}

func checkFinite(cycle int, out plant.Outputs) error {
	checks := []struct {
		field string
		value float64
	}{
		{"temp_c", out.TempC},
		{"detune_nm", out.DetuneNm},
		{"crc_fail_prob", out.CrcFailProb},
	}
	for _, c := range checks {
		if !isFinite(c.value) {
			return &NumericError{Cycle: cycle, Source: "plant", Field: c.field, Value: c.value}
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
