package record

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"photonlink-sim/internal/cosim"
)

type collectWriter struct {
	chunks []cosim.ChunkSummary
	events []cosim.CrcEvent
	states []cosim.LinkStateSample
	err    error
	closed bool
}

func (c *collectWriter) WriteChunk(summary cosim.ChunkSummary, samples []cosim.TimeSeriesSample, events []cosim.CrcEvent, states []cosim.LinkStateSample) error {
	c.chunks = append(c.chunks, summary)
	c.events = append(c.events, events...)
	c.states = append(c.states, states...)
	return c.err
}

func (c *collectWriter) Close() error {
	c.closed = true
	return nil
}

func TestMultiWriterFansOut(t *testing.T) {
	a, b := &collectWriter{}, &collectWriter{}
	mw := NewMultiWriter(a, nil, b)

	summary := cosim.ChunkSummary{ChunkIdx: 0, StartCycle: 0, EndCycle: 10}
	if err := mw.WriteChunk(summary, nil, []cosim.CrcEvent{{Cycle: 1}}, nil); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	if len(a.chunks) != 1 || len(b.chunks) != 1 {
		t.Fatalf("chunk not fanned out: %d %d", len(a.chunks), len(b.chunks))
	}
}

func TestMultiWriterOffersChunkToAllDespiteError(t *testing.T) {
	boom := errors.New("boom")
	a := &collectWriter{err: boom}
	b := &collectWriter{}
	mw := NewMultiWriter(a, b)

	err := mw.WriteChunk(cosim.ChunkSummary{}, nil, nil, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("first error not surfaced: %v", err)
	}
	if len(b.chunks) != 1 {
		t.Fatalf("later writer skipped after earlier error")
	}
}

func TestMultiWriterClose(t *testing.T) {
	a, b := &collectWriter{}, &collectWriter{}
	mw := NewMultiWriter(a, b)
	if err := mw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !a.closed || !b.closed {
		t.Fatalf("closers not closed")
	}
}

func TestStdoutJSONWriterOutput(t *testing.T) {
	var buf bytes.Buffer
	w := &StdoutJSONWriter{out: &buf}
	err := w.WriteChunk(cosim.ChunkSummary{},
		[]cosim.TimeSeriesSample{{Cycle: 0, TempC: 25}},
		[]cosim.CrcEvent{{Cycle: 0, Valid: true}},
		[]cosim.LinkStateSample{{Cycle: 0, LinkUp: true}},
	)
	if err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 JSON lines, got %d: %q", len(lines), buf.String())
	}
}

func TestColorStdoutWriterMarksTransitions(t *testing.T) {
	var buf bytes.Buffer
	w := &ColorStdoutWriter{out: &buf}

	write := func(cycle int, up bool) {
		err := w.WriteChunk(cosim.ChunkSummary{ChunkIdx: cycle, StartCycle: cycle, EndCycle: cycle + 1},
			[]cosim.TimeSeriesSample{{Cycle: cycle, Locked: true}},
			[]cosim.CrcEvent{{Cycle: cycle, Valid: true}},
			[]cosim.LinkStateSample{{Cycle: cycle, LinkUp: up}},
		)
		if err != nil {
			t.Fatalf("WriteChunk: %v", err)
		}
	}

	write(0, true)
	if strings.Contains(buf.String(), "LINK") {
		t.Fatalf("initial state must not be a transition: %q", buf.String())
	}
	write(1, false)
	if !strings.Contains(buf.String(), "LINK DOWN") {
		t.Fatalf("missing LINK DOWN marker: %q", buf.String())
	}
	write(2, true)
	if !strings.Contains(buf.String(), "LINK UP") {
		t.Fatalf("missing LINK UP marker: %q", buf.String())
	}
}
