// Package scenario turns a declarative schedule description into the input
// function the kernel drives the plant with. Schedules are total functions
// of the cycle index, so they cannot be exhausted mid-run.
package scenario

import (
	"fmt"

	"photonlink-sim/internal/plant"
)

// DefaultDtS is the plant evaluation timestep used when a schedule does
// not set one.
const DefaultDtS = 0.1

// Schedule produces the plant drive for a given cycle.
type Schedule func(cycle int) plant.Inputs

// Spec is the YAML-facing schedule description.
type Spec struct {
	Kind string `yaml:"kind"` // constant | step | ramp | pulsed

	HeaterDuty   float64 `yaml:"heater_duty"`
	WorkloadFrac float64 `yaml:"workload_frac"`
	DtS          float64 `yaml:"dt_s"`

	// step: workload jumps from WorkloadFrac to WorkloadHigh at StepAtCycle.
	WorkloadHigh float64 `yaml:"workload_high"`
	StepAtCycle  int     `yaml:"step_at_cycle"`

	// ramp: workload interpolates linearly to WorkloadHigh over RampCycles.
	RampCycles int `yaml:"ramp_cycles"`

	// pulsed: workload alternates between WorkloadFrac and WorkloadHigh
	// with the given period and on-time.
	PeriodCycles int `yaml:"period_cycles"`
	OnCycles     int `yaml:"on_cycles"`

	// Every FrameGapPeriod-th cycle carries no frame (0 disables gaps).
	FrameGapPeriod int `yaml:"frame_gap_period"`
}

// Build compiles the Spec into a schedule function.
func (s Spec) Build() (Schedule, error) {
	dt := s.DtS
	if dt <= 0 {
		dt = DefaultDtS
	}

	var sched Schedule
	switch s.Kind {
	case "", "constant":
		sched = Constant(s.HeaterDuty, s.WorkloadFrac, dt)
	case "step":
		sched = StepWorkload(s.HeaterDuty, s.WorkloadFrac, s.WorkloadHigh, s.StepAtCycle, dt)
	case "ramp":
		if s.RampCycles <= 0 {
			return nil, fmt.Errorf("scenario: ramp_cycles must be > 0 for kind=ramp")
		}
		sched = RampWorkload(s.HeaterDuty, s.WorkloadFrac, s.WorkloadHigh, s.RampCycles, dt)
	case "pulsed":
		if s.PeriodCycles <= 0 || s.OnCycles < 0 || s.OnCycles > s.PeriodCycles {
			return nil, fmt.Errorf("scenario: pulsed needs 0 <= on_cycles <= period_cycles and period_cycles > 0")
		}
		sched = PulsedWorkload(s.HeaterDuty, s.WorkloadFrac, s.WorkloadHigh, s.PeriodCycles, s.OnCycles, dt)
	default:
		return nil, fmt.Errorf("scenario: unknown schedule kind %q", s.Kind)
	}

	if s.FrameGapPeriod > 0 {
		sched = WithFrameGaps(sched, s.FrameGapPeriod)
	}
	return sched, nil
}

// Constant drives fixed heater duty and workload every cycle.
func Constant(heater, workload, dtS float64) Schedule {
	return func(int) plant.Inputs {
		return plant.Inputs{HeaterDuty: heater, WorkloadFrac: workload, DtS: dtS, FrameValid: true}
	}
}

// StepWorkload jumps the workload from low to high at stepAtCycle.
func StepWorkload(heater, low, high float64, stepAtCycle int, dtS float64) Schedule {
	return func(cycle int) plant.Inputs {
		w := low
		if cycle >= stepAtCycle {
			w = high
		}
		return plant.Inputs{HeaterDuty: heater, WorkloadFrac: w, DtS: dtS, FrameValid: true}
	}
}

// RampWorkload interpolates the workload linearly over rampCycles, then
// holds the end value.
func RampWorkload(heater, start, end float64, rampCycles int, dtS float64) Schedule {
	return func(cycle int) plant.Inputs {
		w := end
		if cycle < rampCycles {
			t := float64(cycle) / float64(rampCycles)
			w = start + t*(end-start)
		}
		return plant.Inputs{HeaterDuty: heater, WorkloadFrac: w, DtS: dtS, FrameValid: true}
	}
}

// PulsedWorkload alternates the workload between high (for onCycles) and
// low (for the rest of each period).
func PulsedWorkload(heater, low, high float64, periodCycles, onCycles int, dtS float64) Schedule {
	return func(cycle int) plant.Inputs {
		w := low
		if cycle%periodCycles < onCycles {
			w = high
		}
		return plant.Inputs{HeaterDuty: heater, WorkloadFrac: w, DtS: dtS, FrameValid: true}
	}
}

// WithFrameGaps clears FrameValid on every period-th cycle, modeling idle
// cycles with no frame on the link.
func WithFrameGaps(s Schedule, period int) Schedule {
	return func(cycle int) plant.Inputs {
		in := s(cycle)
		if period > 0 && cycle%period == period-1 {
			in.FrameValid = false
		}
		return in
	}
}
