package equiv

import (
	"math/rand"
	"testing"

	"photonlink-sim/internal/link"
	"photonlink-sim/internal/link/rtlmodel"
)

func randomFrames(seed int64, n int, failProb, gapProb float64) []Frame {
	rng := rand.New(rand.NewSource(seed))
	frames := make([]Frame, n)
	for i := range frames {
		frames[i] = Frame{
			Valid:  rng.Float64() >= gapProb,
			Failed: rng.Float64() < failProb,
		}
	}
	return frames
}

func TestReplayReferenceVsRtlModel(t *testing.T) {
	cases := []struct {
		name     string
		params   link.Params
		failProb float64
		gapProb  float64
	}{
		{"defaults_marginal", link.DefaultParams(), 0.5, 0.1},
		{"defaults_clean", link.DefaultParams(), 0.05, 0},
		{"defaults_noisy", link.DefaultParams(), 0.9, 0.3},
		{"tight_thresholds", link.Params{FailsToDown: 1, PassesToUp: 1}, 0.5, 0.1},
		{"asymmetric", link.Params{FailsToDown: 2, PassesToUp: 16}, 0.4, 0.05},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frames := randomFrames(int64(i+1), 20000, tc.failProb, tc.gapProb)
			rep := Replay(frames, link.NewReferenceMonitor(tc.params), rtlmodel.New(tc.params))
			if rep.Cycles != len(frames) {
				t.Fatalf("replayed %d cycles, want %d", rep.Cycles, len(frames))
			}
			if !rep.Clean() {
				d := rep.Divergences[0]
				t.Fatalf("%d divergences, first at cycle %d: %s %s != %s",
					len(rep.Divergences), d.Cycle, d.Field, d.Software, d.Hardware)
			}
		})
	}
}

// offByOneMonitor compares the streak counter before incrementing it, the
// classic threshold mistake the validator exists to catch.
type offByOneMonitor struct {
	params link.Params
	state  link.State
}

func (m *offByOneMonitor) Reset() { m.state = link.State{LinkUp: true} }

func (m *offByOneMonitor) Step(valid, failed bool) link.State {
	if !valid {
		return m.state
	}
	m.state.TotalFrames++
	if failed {
		if m.state.LinkUp && m.state.ConsecFails >= m.params.FailsToDown {
			m.state.LinkUp = false
		}
		m.state.TotalCrcFails++
		m.state.ConsecFails++
		m.state.ConsecPasses = 0
	} else {
		if !m.state.LinkUp && m.state.ConsecPasses >= m.params.PassesToUp {
			m.state.LinkUp = true
		}
		m.state.ConsecPasses++
		m.state.ConsecFails = 0
	}
	return m.state
}

func TestReplayCatchesOffByOne(t *testing.T) {
	params := link.DefaultParams()
	frames := randomFrames(7, 5000, 0.5, 0.1)
	rep := Replay(frames, link.NewReferenceMonitor(params), &offByOneMonitor{params: params})
	if rep.Clean() {
		t.Fatalf("validator failed to catch a pre-increment threshold compare")
	}
	for _, d := range rep.Divergences {
		if d.Field != "link_up" {
			t.Fatalf("unexpected diverging field %q", d.Field)
		}
	}
}

func TestReplayEmptySequence(t *testing.T) {
	rep := Replay(nil, link.NewReferenceMonitor(link.DefaultParams()), rtlmodel.New(link.DefaultParams()))
	if rep.Cycles != 0 || !rep.Clean() {
		t.Fatalf("empty replay must be trivially clean: %+v", rep)
	}
}

func TestReplayResetsBothSides(t *testing.T) {
	sw := link.NewReferenceMonitor(link.DefaultParams())
	hw := rtlmodel.New(link.DefaultParams())
	// Dirty both monitors, then replay; stale state must not leak in.
	for i := 0; i < 10; i++ {
		sw.Step(true, true)
		hw.Step(true, false)
	}
	frames := randomFrames(3, 100, 0.5, 0)
	if rep := Replay(frames, sw, hw); !rep.Clean() {
		t.Fatalf("stale state leaked into the replay: %+v", rep.Divergences[0])
	}
}
