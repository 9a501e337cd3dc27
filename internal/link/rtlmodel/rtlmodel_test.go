package rtlmodel

import (
	"testing"

	"photonlink-sim/internal/link"
)

func TestStepRegistersHoldWhenInvalid(t *testing.T) {
	m := New(link.DefaultParams())
	m.Step(true, true)
	before := m.Step(true, true)
	for i := 0; i < 5; i++ {
		if st := m.Step(false, true); st != before {
			t.Fatalf("registers changed without clock enable: %+v -> %+v", before, st)
		}
	}
}

func TestStepDropsOnThreshold(t *testing.T) {
	m := New(link.Params{FailsToDown: 3, PassesToUp: 2})
	m.Step(true, true)
	if st := m.Step(true, true); !st.LinkUp {
		t.Fatalf("dropped early: %+v", st)
	}
	if st := m.Step(true, true); st.LinkUp {
		t.Fatalf("must drop on the 3rd failure: %+v", st)
	}
	m.Step(true, false)
	if st := m.Step(true, false); !st.LinkUp {
		t.Fatalf("must recover on the 2nd pass: %+v", st)
	}
}

func TestResetClearsRegisters(t *testing.T) {
	m := New(link.Params{FailsToDown: 1, PassesToUp: 1})
	m.Step(true, true)
	m.Reset()
	st := m.Step(false, false)
	want := link.State{LinkUp: true}
	if st != want {
		t.Fatalf("post-reset state %+v, want %+v", st, want)
	}
}

func TestSnapshotAfterEdge(t *testing.T) {
	// The returned snapshot must reflect the committed registers, not the
	// pre-edge values.
	m := New(link.DefaultParams())
	st := m.Step(true, true)
	if st.TotalFrames != 1 || st.TotalCrcFails != 1 || st.ConsecFails != 1 {
		t.Fatalf("snapshot taken before commit: %+v", st)
	}
}
