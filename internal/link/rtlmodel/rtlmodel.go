// Package rtlmodel is a cycle-accurate model of the link monitor written
// the way the hardware describes it: a bank of registers, a combinational
// next-state function, and a commit on the clock edge. Snapshots are taken
// after the edge, the same point at which a testbench samples the
// registered outputs of the real module.
//
// It deliberately shares no code with the software reference model; the
// two are kept equivalent by the replay validator, not by construction.
package rtlmodel

import "photonlink-sim/internal/link"

// Register widths follow the hardware module: 32-bit running totals,
// 16-bit streak counters.
type regs struct {
	linkUp        bool
	totalFrames   uint32
	totalCrcFails uint32
	consecFails   uint16
	consecPasses  uint16
}

// Monitor implements link.Monitor with registered outputs.
type Monitor struct {
	failsToDown uint16
	passesToUp  uint16
	q           regs
}

// New returns a monitor in the post-reset state.
func New(params link.Params) *Monitor {
	m := &Monitor{
		failsToDown: uint16(params.FailsToDown),
		passesToUp:  uint16(params.PassesToUp),
	}
	m.Reset()
	return m
}

// Reset mirrors asserting the active-low reset: link_up high, counters
// cleared.
func (m *Monitor) Reset() {
	m.q = regs{linkUp: true}
}

// Step evaluates one clock cycle: compute next-state combinationally from
// the current registers and the inputs, then commit. Valid acts as a clock
// enable; with valid low the registers hold.
func (m *Monitor) Step(valid, failed bool) link.State {
	d := m.q
	if valid {
		d.totalFrames = m.q.totalFrames + 1
		if failed {
			d.totalCrcFails = m.q.totalCrcFails + 1
			d.consecFails = m.q.consecFails + 1
			d.consecPasses = 0
			d.linkUp = m.q.linkUp && d.consecFails < m.failsToDown
		} else {
			d.consecPasses = m.q.consecPasses + 1
			d.consecFails = 0
			d.linkUp = m.q.linkUp || d.consecPasses >= m.passesToUp
		}
	}
	m.q = d
	return m.snapshot()
}

func (m *Monitor) snapshot() link.State {
	return link.State{
		LinkUp:        m.q.linkUp,
		TotalFrames:   uint(m.q.totalFrames),
		TotalCrcFails: uint(m.q.totalCrcFails),
		ConsecFails:   uint(m.q.consecFails),
		ConsecPasses:  uint(m.q.consecPasses),
	}
}
