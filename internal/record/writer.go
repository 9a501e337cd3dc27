// Package record streams run output to sinks: JSONL files, STDOUT, a
// GreptimeDB instance, or a live TUI. Writers receive rows a chunk at a
// time from the kernel's observer hook.
package record

import "photonlink-sim/internal/cosim"

// Writer receives the rows of each completed chunk in chunk order.
type Writer interface {
	WriteChunk(summary cosim.ChunkSummary, samples []cosim.TimeSeriesSample, events []cosim.CrcEvent, states []cosim.LinkStateSample) error
}

// Closer is implemented by writers holding resources (files, processes).
type Closer interface {
	Close() error
}

// MultiWriter fans chunks out to several writers. The first error is
// returned after all writers have been offered the chunk.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter combines writers; nil entries are skipped.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range writers {
		if w != nil {
			mw.writers = append(mw.writers, w)
		}
	}
	return mw
}

// WriteChunk implements Writer.
func (m *MultiWriter) WriteChunk(summary cosim.ChunkSummary, samples []cosim.TimeSeriesSample, events []cosim.CrcEvent, states []cosim.LinkStateSample) error {
	var firstErr error
	for _, w := range m.writers {
		if err := w.WriteChunk(summary, samples, events, states); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// OnChunk lets a MultiWriter be used directly as the kernel observer.
func (m *MultiWriter) OnChunk(summary cosim.ChunkSummary, samples []cosim.TimeSeriesSample, events []cosim.CrcEvent, states []cosim.LinkStateSample) error {
	return m.WriteChunk(summary, samples, events, states)
}

// Close closes every writer that holds resources.
func (m *MultiWriter) Close() error {
	var firstErr error
	for _, w := range m.writers {
		if c, ok := w.(Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
