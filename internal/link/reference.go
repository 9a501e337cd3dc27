package link

// ReferenceMonitor is the software model of the link monitor. It is the
// implementation the kernel runs during simulation: fast, in-process, and
// the baseline the hardware-description implementations are validated
// against.
type ReferenceMonitor struct {
	params Params
	state  State
}

// NewReferenceMonitor returns a monitor in the reset state.
func NewReferenceMonitor(params Params) *ReferenceMonitor {
	return &ReferenceMonitor{params: params, state: resetState()}
}

// Reset restores the cold-start state: link up, all counters zero.
func (m *ReferenceMonitor) Reset() {
	m.state = resetState()
}

// Step processes one cycle and returns the post-cycle snapshot.
func (m *ReferenceMonitor) Step(valid, failed bool) State {
	m.state = advance(m.state, m.params, valid, failed)
	return m.state
}

// State returns the current snapshot without advancing.
func (m *ReferenceMonitor) State() State { return m.state }
