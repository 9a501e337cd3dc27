package cosim

import (
	"math"
	"testing"
)

func TestQuantizeProbClamps(t *testing.T) {
	if q := QuantizeProb(-0.5); q != 0 {
		t.Fatalf("expected 0 for negative prob, got %d", q)
	}
	if q := QuantizeProb(1.5); q != ProbScale {
		t.Fatalf("expected %d for prob > 1, got %d", ProbScale, q)
	}
}

func TestQuantizeRoundTrip(t *testing.T) {
	for _, p := range []float64{0, 0.1, 0.25, 0.5, 0.75, 0.999, 1} {
		back := DequantizeProb(QuantizeProb(p))
		if math.Abs(back-p) > 1.0/ProbScale {
			t.Fatalf("round trip of %v lost more than one LSB: %v", p, back)
		}
	}
}

func TestSamplerDeterminism(t *testing.T) {
	a := NewEventSampler(42)
	b := NewEventSampler(42)
	for cycle := 0; cycle < 1000; cycle++ {
		ea := a.Sample(cycle, 0, 0.3, true, true)
		eb := b.Sample(cycle, 0, 0.3, true, true)
		if ea.Failed != eb.Failed {
			t.Fatalf("cycle %d: same seed diverged", cycle)
		}
	}
}

func TestSamplerSeedsDiffer(t *testing.T) {
	a := NewEventSampler(1)
	b := NewEventSampler(2)
	same := true
	for cycle := 0; cycle < 200; cycle++ {
		if a.Sample(cycle, 0, 0.5, true, true).Failed != b.Sample(cycle, 0, 0.5, true, true).Failed {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different seeds produced identical outcomes over 200 cycles")
	}
}

func TestSamplerResetReplays(t *testing.T) {
	s := NewEventSampler(7)
	var first []bool
	for cycle := 0; cycle < 100; cycle++ {
		first = append(first, s.Sample(cycle, 0, 0.4, true, true).Failed)
	}
	s.Reset(7)
	for cycle := 0; cycle < 100; cycle++ {
		if s.Sample(cycle, 0, 0.4, true, true).Failed != first[cycle] {
			t.Fatalf("cycle %d: reset did not replay the stream", cycle)
		}
	}
}

func TestSamplerExtremes(t *testing.T) {
	s := NewEventSampler(3)
	for cycle := 0; cycle < 500; cycle++ {
		if s.Sample(cycle, 0, 0.0, true, true).Failed {
			t.Fatalf("cycle %d: probability 0 failed", cycle)
		}
	}
	for cycle := 0; cycle < 500; cycle++ {
		if !s.Sample(cycle, 0, 1.0, true, true).Failed {
			t.Fatalf("cycle %d: probability 1 passed", cycle)
		}
	}
}

func TestSamplerUnlockedAlwaysFails(t *testing.T) {
	s := NewEventSampler(9)
	for cycle := 0; cycle < 100; cycle++ {
		ev := s.Sample(cycle, 0, 0.0, true, false)
		if !ev.Failed {
			t.Fatalf("cycle %d: unlocked frame passed", cycle)
		}
		if ev.FailProb != 1.0 {
			t.Fatalf("cycle %d: unlocked probability not forced to 1, got %v", cycle, ev.FailProb)
		}
	}
}

func TestSamplerInvalidConsumesNoDraw(t *testing.T) {
	s := NewEventSampler(5)
	ev := s.Sample(0, 0, 0.5, false, true)
	if ev.Failed {
		t.Fatalf("invalid cycle marked failed")
	}
	if ev.Valid {
		t.Fatalf("invalid cycle marked valid")
	}
	if s.Draws() != 0 {
		t.Fatalf("invalid cycle consumed randomness: %d draws", s.Draws())
	}

	s.Sample(1, 0, 0.5, true, true)
	if s.Draws() != 1 {
		t.Fatalf("valid cycle must consume exactly one draw, got %d", s.Draws())
	}
}

func TestSamplerDrawInsensitiveToOutcome(t *testing.T) {
	// The stream position depends only on how many valid frames were
	// sampled, never on their probabilities or outcomes.
	a := NewEventSampler(11)
	b := NewEventSampler(11)
	for cycle := 0; cycle < 50; cycle++ {
		a.Sample(cycle, 0, 0.9, true, true)
		b.Sample(cycle, 0, 0.1, true, true)
	}
	if a.Draws() != b.Draws() {
		t.Fatalf("draw counts diverged: %d vs %d", a.Draws(), b.Draws())
	}
	ea := a.Sample(50, 0, 0.5, true, true)
	eb := b.Sample(50, 0, 0.5, true, true)
	if ea.Failed != eb.Failed {
		t.Fatalf("stream position depended on prior probabilities")
	}
}

func TestSamplerFailureRate(t *testing.T) {
	s := NewEventSampler(1234)
	const cycles = 20000
	const prob = 0.3
	fails := 0
	for cycle := 0; cycle < cycles; cycle++ {
		if s.Sample(cycle, 0, prob, true, true).Failed {
			fails++
		}
	}
	rate := float64(fails) / cycles
	if math.Abs(rate-prob) > 0.02 {
		t.Fatalf("observed failure rate %.4f too far from %.2f", rate, prob)
	}
}
