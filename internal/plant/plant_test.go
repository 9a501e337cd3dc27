package plant

import (
	"math"
	"testing"
)

func TestStepThermalEquilibrium(t *testing.T) {
	p := DefaultParams().Thermal
	s := ThermalState{TempC: p.AmbientC}
	// Zero power at ambient: no drift.
	s2 := StepThermal(s, 0.1, 0, 0, p)
	if s2.TempC != p.AmbientC {
		t.Fatalf("temperature drifted at equilibrium: %v", s2.TempC)
	}
}

func TestStepThermalConvergesToSteadyState(t *testing.T) {
	p := DefaultParams().Thermal
	s := ThermalState{TempC: p.AmbientC}
	// Full heater: steady state is T_amb + P*R_th.
	want := p.AmbientC + p.HeaterWMax*p.RThCPerW
	for i := 0; i < 10000; i++ {
		s = StepThermal(s, 0.01, 1.0, 0, p)
	}
	if math.Abs(s.TempC-want) > 0.01 {
		t.Fatalf("steady state %v, want %v", s.TempC, want)
	}
}

func TestStepThermalClampsDuty(t *testing.T) {
	p := DefaultParams().Thermal
	s := ThermalState{TempC: p.AmbientC}
	over := StepThermal(s, 0.1, 5.0, 2.0, p)
	capped := StepThermal(s, 0.1, 1.0, 1.0, p)
	if over.TempC != capped.TempC {
		t.Fatalf("duty inputs not clamped: %v vs %v", over.TempC, capped.TempC)
	}
	under := StepThermal(s, 0.1, -1.0, -0.5, p)
	zero := StepThermal(s, 0.1, 0, 0, p)
	if under.TempC != zero.TempC {
		t.Fatalf("negative duty not clamped: %v vs %v", under.TempC, zero.TempC)
	}
}

func TestEvalResonatorAtAmbient(t *testing.T) {
	p := DefaultParams().Resonator
	out := EvalResonator(p.AmbientC, p)
	if out.ResonanceNm != p.Lambda0Nm {
		t.Fatalf("resonance at ambient %v, want %v", out.ResonanceNm, p.Lambda0Nm)
	}
	if out.DetuneNm != 0 || !out.Locked {
		t.Fatalf("expected zero detune and lock at ambient: %+v", out)
	}
}

func TestEvalResonatorLockWindow(t *testing.T) {
	p := DefaultParams().Resonator
	// 0.1 nm/°C: a 5°C rise shifts resonance by 0.5 nm, the window edge.
	edge := EvalResonator(p.AmbientC+5.0, p)
	if !edge.Locked {
		t.Fatalf("|detune| equal to the window must still be locked: %+v", edge)
	}
	out := EvalResonator(p.AmbientC+5.1, p)
	if out.Locked {
		t.Fatalf("expected unlock past the window: %+v", out)
	}
	if out.DetuneNm >= 0 {
		t.Fatalf("warming shifts resonance up, so detune must go negative: %v", out.DetuneNm)
	}
}

func TestEvalImpairmentEndpoints(t *testing.T) {
	p := ImpairmentParams{Detune50Nm: 0.3, DetuneFloorNm: 0.1, DetuneCeilNm: 1.0}
	if got := EvalImpairment(0.05, true, p); got != 0 {
		t.Fatalf("below floor must be 0, got %v", got)
	}
	if got := EvalImpairment(1.5, true, p); got != 1 {
		t.Fatalf("above ceiling must be 1, got %v", got)
	}
	if got := EvalImpairment(-1.5, true, p); got != 1 {
		t.Fatalf("curve must use detune magnitude, got %v", got)
	}
	if got := EvalImpairment(0, false, p); got != 1 {
		t.Fatalf("unlocked must be 1 regardless of detune, got %v", got)
	}
}

func TestEvalImpairmentHalfPoint(t *testing.T) {
	p := ImpairmentParams{Detune50Nm: 0.3, DetuneFloorNm: 0.0, DetuneCeilNm: 1.0}
	got := EvalImpairment(0.3, true, p)
	if math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("probability at detune_50 is %v, want 0.5", got)
	}
}

func TestEvalImpairmentMonotone(t *testing.T) {
	p := DefaultParams().Impairment
	prev := -1.0
	for d := 0.0; d <= 1.2; d += 0.01 {
		got := EvalImpairment(d, true, p)
		if got < prev {
			t.Fatalf("curve not monotone at %v: %v < %v", d, got, prev)
		}
		if got < 0 || got > 1 {
			t.Fatalf("probability out of range at %v: %v", d, got)
		}
		prev = got
	}
}

func TestRunnerChain(t *testing.T) {
	p := DefaultParams()
	r := NewRunner(p, p.Thermal.AmbientC)

	out := r.Step(Inputs{HeaterDuty: 0, WorkloadFrac: 0, DtS: 0.1, FrameValid: true})
	if out.TempC != p.Thermal.AmbientC || !out.Locked || out.CrcFailProb != 0 {
		t.Fatalf("idle plant must stay locked at ambient: %+v", out)
	}

	// Heat hard; eventually the ring drifts out of lock and the failure
	// probability saturates.
	var unlocked bool
	for i := 0; i < 5000; i++ {
		out = r.Step(Inputs{HeaterDuty: 1.0, WorkloadFrac: 1.0, DtS: 0.1, FrameValid: true})
		if !out.Locked {
			unlocked = true
			break
		}
	}
	if !unlocked {
		t.Fatalf("full power never unlocked the ring: %+v", out)
	}
	if out.CrcFailProb != 1.0 {
		t.Fatalf("unlocked failure probability must be 1, got %v", out.CrcFailProb)
	}
	if r.ThermalState().TempC <= p.Thermal.AmbientC {
		t.Fatalf("temperature did not rise")
	}
}
