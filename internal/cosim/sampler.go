package cosim

// ProbScale is the Q0.16 wire scale: 0 encodes 0.0, 65535 encodes ~1.0.
// It matches the native probability representation of the hardware link
// monitor, so sampling decisions round-trip bit-exactly through replay.
const ProbScale = 65535

// QuantizeProb encodes a probability as a 16-bit fixed-point fraction.
// Inputs outside [0,1] are clamped before encoding.
func QuantizeProb(p float64) uint16 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return ProbScale
	}
	return uint16(p * ProbScale)
}

// DequantizeProb is the inverse mapping; the round trip loses at most
// one LSB (1/65535).
func DequantizeProb(q uint16) float64 {
	return float64(q) / ProbScale
}

// 16-bit maximal-length Galois LFSR, taps x^16+x^14+x^13+x^11+1.
// The register never reaches zero, so a draw is always in [1, 65535]:
// a quantized probability of 65535 fails on every draw and 0 never fails.
const (
	lfsrTaps = 0xB400
	lfsrLoad = 0xACE1
)

// EventSampler realizes boolean failure outcomes from continuous
// probabilities using a private seeded LFSR stream. The stream is owned by
// one kernel run; it is never shared or global, so concurrent processes and
// back-to-back runs cannot cross-contaminate randomness.
type EventSampler struct {
	state uint16
	draws uint64
}

// NewEventSampler seeds the stream. The seed is XORed with a nonzero load
// constant so that seed 0 (the default) does not jam the register.
func NewEventSampler(seed uint64) *EventSampler {
	s := &EventSampler{}
	s.Reset(seed)
	return s
}

// Reset reloads the register as a hardware reset with the same seed would.
func (s *EventSampler) Reset(seed uint64) {
	st := uint16(seed) ^ lfsrLoad
	if st == 0 {
		st = lfsrLoad
	}
	s.state = st
	s.draws = 0
}

// next advances the register by one step and returns the new state.
func (s *EventSampler) next() uint16 {
	v := s.state
	lsb := v & 1
	v >>= 1
	if lsb != 0 {
		v ^= lfsrTaps
	}
	s.state = v
	s.draws++
	return v
}

// Draws reports how many units of randomness have been consumed.
func (s *EventSampler) Draws() uint64 { return s.draws }

// Sample realizes the outcome for one cycle.
//
// When the plant is unlocked the probability is forced to 1.0 before
// quantization, matching the digital rule that no valid signal means a
// guaranteed failure. Exactly one draw is consumed per valid cycle,
// regardless of outcome. Invalid cycles consume no randomness but still
// produce an event record so cycle accounting stays aligned with the
// hardware implementation, whose clock-enabled LFSR also idles when no
// frame is present.
func (s *EventSampler) Sample(cycle, chunk int, prob float64, valid, locked bool) CrcEvent {
	if !locked {
		prob = 1.0
	}
	prob = min(max(prob, 0), 1)
	ev := CrcEvent{
		Cycle:    cycle,
		Chunk:    chunk,
		Valid:    valid,
		FailProb: prob,
	}
	if !valid {
		return ev
	}
	ev.Failed = s.next() <= QuantizeProb(prob)
	return ev
}
