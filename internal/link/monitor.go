// Package link defines the link-health monitor contract and its software
// reference implementation.
//
// The monitor is a two-state hysteresis machine: consecutive CRC failures
// take the link DOWN, consecutive passes bring it back UP. The thresholds
// are asymmetric by default (4 fails down, 8 passes up) so a marginal link
// does not oscillate; once down, recovery requires sustained evidence.
package link

import "fmt"

// Params are the hysteresis thresholds. Both must be positive.
type Params struct {
	FailsToDown uint
	PassesToUp  uint
}

// DefaultParams matches the hardware module's default generics.
func DefaultParams() Params {
	return Params{FailsToDown: 4, PassesToUp: 8}
}

// Validate rejects thresholds that would disable a transition entirely.
func (p Params) Validate() error {
	if p.FailsToDown == 0 {
		return fmt.Errorf("link params: fails_to_down must be > 0")
	}
	if p.PassesToUp == 0 {
		return fmt.Errorf("link params: passes_to_up must be > 0")
	}
	return nil
}

// State is a full snapshot of the monitor after a step. At most one of
// ConsecFails/ConsecPasses is non-zero at any time.
type State struct {
	LinkUp        bool
	TotalFrames   uint
	TotalCrcFails uint
	ConsecFails   uint
	ConsecPasses  uint
}

// Monitor is the cycle-stepping contract shared by every implementation:
// the software model, the register-transfer model, and any external
// simulator adapter. Implementations must be drop-in substitutable; the
// equivalence validator holds them to identical snapshots on every cycle.
//
// Step presents one cycle. When valid is false the failed input is ignored
// and no state changes, but the implementation still observes the cycle so
// its internal numbering stays aligned.
type Monitor interface {
	Reset()
	Step(valid, failed bool) State
}

// reset state: link assumed healthy, all counters cleared.
func resetState() State {
	return State{LinkUp: true}
}

// advance applies the transition rule to a state snapshot and returns the
// next one. Shared by the software model; the rule, spelled out once:
//
//	valid && failed: total_frames++, total_crc_fails++, consec_fails++,
//	                 consec_passes=0; if UP and the post-increment
//	                 consec_fails >= FailsToDown, go DOWN.
//	valid && !failed: total_frames++, consec_passes++, consec_fails=0;
//	                 if DOWN and the post-increment consec_passes >=
//	                 PassesToUp, go UP.
//	!valid: no change.
//
// The comparison is against the post-increment counter. Comparing before
// the increment shifts the effective threshold by one and silently
// diverges from the hardware implementation.
func advance(s State, p Params, valid, failed bool) State {
	if !valid {
		return s
	}
	s.TotalFrames++
	if failed {
		s.TotalCrcFails++
		s.ConsecFails++
		s.ConsecPasses = 0
		if s.LinkUp && s.ConsecFails >= p.FailsToDown {
			s.LinkUp = false
		}
	} else {
		s.ConsecPasses++
		s.ConsecFails = 0
		if !s.LinkUp && s.ConsecPasses >= p.PassesToUp {
			s.LinkUp = true
		}
	}
	return s
}
