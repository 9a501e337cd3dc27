// Package extern drives an external cycle-accurate simulator of the link
// monitor through the same step contract as the in-process models. The
// simulator is a black box behind a line protocol on stdin/stdout; each
// step is a synchronous request/response, one clock edge at a time. No
// pipelining: the simulator's counters are stateful and order-dependent.
//
// Protocol, one line per message:
//
//	-> init <fails_to_down> <passes_to_up>     <- ok
//	-> reset                                   <- ok
//	-> step <valid:0|1> <failed:0|1>           <- <link_up> <total_frames> <total_crc_fails> <consec_fails> <consec_passes>
//	-> quit
package extern

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"photonlink-sim/internal/link"
)

// ErrUnavailable reports that the external simulator binary cannot be
// found or started. Equivalence validation is skipped in that case; the
// primary simulation run is unaffected.
var ErrUnavailable = errors.New("external link monitor simulator unavailable")

// Monitor is a link.Monitor backed by a child process.
type Monitor struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	out    *bufio.Scanner
	params link.Params
	last   link.State
	err    error
}

// Start launches the simulator binary and performs the init handshake.
// A missing or unstartable binary is reported as ErrUnavailable.
func Start(binary string, params link.Params, args ...string) (*Monitor, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found", ErrUnavailable, binary)
	}
	cmd := exec.Command(path, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	m := &Monitor{
		cmd:    cmd,
		stdin:  stdin,
		out:    bufio.NewScanner(stdout),
		params: params,
		last:   link.State{LinkUp: true},
	}
	if err := m.roundTripOK(fmt.Sprintf("init %d %d", params.FailsToDown, params.PassesToUp)); err != nil {
		m.Close()
		return nil, fmt.Errorf("%w: init handshake failed: %v", ErrUnavailable, err)
	}
	return m, nil
}

// Reset asks the simulator to return to its post-reset state.
func (m *Monitor) Reset() {
	if m.err != nil {
		return
	}
	if err := m.roundTripOK("reset"); err != nil {
		m.err = err
		return
	}
	m.last = link.State{LinkUp: true}
}

// Step presents one cycle and blocks until the simulator has committed the
// clock edge and reported its registers. After a transport error the
// monitor goes sticky-failed and keeps returning the last good snapshot;
// callers observe the failure via Err.
func (m *Monitor) Step(valid, failed bool) link.State {
	if m.err != nil {
		return m.last
	}
	line, err := m.roundTrip(fmt.Sprintf("step %s %s", bit(valid), bit(failed)))
	if err != nil {
		m.err = err
		return m.last
	}
	st, err := parseState(line)
	if err != nil {
		m.err = err
		return m.last
	}
	m.last = st
	return st
}

// Err reports the first transport or protocol error, if any.
func (m *Monitor) Err() error { return m.err }

// Close tells the simulator to exit and reaps the process.
func (m *Monitor) Close() error {
	if m.stdin != nil {
		fmt.Fprintln(m.stdin, "quit")
		m.stdin.Close()
	}
	if m.cmd != nil {
		return m.cmd.Wait()
	}
	return nil
}

func (m *Monitor) roundTrip(req string) (string, error) {
	if _, err := fmt.Fprintln(m.stdin, req); err != nil {
		return "", fmt.Errorf("write %q: %w", req, err)
	}
	if !m.out.Scan() {
		if err := m.out.Err(); err != nil {
			return "", fmt.Errorf("read response to %q: %w", req, err)
		}
		return "", fmt.Errorf("simulator closed stream after %q", req)
	}
	return strings.TrimSpace(m.out.Text()), nil
}

func (m *Monitor) roundTripOK(req string) error {
	resp, err := m.roundTrip(req)
	if err != nil {
		return err
	}
	if resp != "ok" {
		return fmt.Errorf("unexpected response to %q: %q", req, resp)
	}
	return nil
}

// parseState decodes a step response line.
func parseState(line string) (link.State, error) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return link.State{}, fmt.Errorf("malformed state line %q", line)
	}
	vals := make([]uint64, 5)
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return link.State{}, fmt.Errorf("malformed state line %q: %v", line, err)
		}
		vals[i] = v
	}
	return link.State{
		LinkUp:        vals[0] != 0,
		TotalFrames:   uint(vals[1]),
		TotalCrcFails: uint(vals[2]),
		ConsecFails:   uint(vals[3]),
		ConsecPasses:  uint(vals[4]),
	}, nil
}

func bit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
