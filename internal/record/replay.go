package record

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"photonlink-sim/internal/cosim"
	"photonlink-sim/internal/link"
)

// ReplayEvents re-feeds a recorded CRC event log through a link monitor and
// streams the reconstructed chunks to writer. A delay >0 inserts a pause per
// cycle so the replay can be watched live; zero replays as fast as possible.
func ReplayEvents(r io.Reader, mon link.Monitor, writer Writer, chunkSize int, delay time.Duration) error {
	if chunkSize <= 0 {
		return &cosim.ConfigError{Param: "chunk_size", Value: chunkSize, Reason: "must be positive"}
	}
	mon.Reset()

	dec := json.NewDecoder(r)
	var (
		events []cosim.CrcEvent
		states []cosim.LinkStateSample
		chunk  = cosim.ChunkSummary{}
		count  int
	)
	flush := func(endCycle int) error {
		chunk.EndCycle = endCycle
		if err := writer.WriteChunk(chunk, nil, events, states); err != nil {
			return err
		}
		chunk = cosim.ChunkSummary{ChunkIdx: chunk.ChunkIdx + 1, StartCycle: endCycle}
		events = events[:0]
		states = states[:0]
		count = 0
		return nil
	}

	for {
		var ev cosim.CrcEvent
		if err := dec.Decode(&ev); err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		if count == 0 {
			chunk.StartCycle = ev.Cycle
		}
		st := mon.Step(ev.Valid, ev.Failed)
		events = append(events, ev)
		states = append(states, cosim.NewLinkStateSample(ev.Cycle, st))
		count++
		if count == chunkSize {
			if err := flush(ev.Cycle + 1); err != nil {
				return err
			}
		}
		if delay > 0 {
			time.Sleep(delay)
		}
	}
	if count > 0 {
		last := events[len(events)-1].Cycle
		if err := flush(last + 1); err != nil {
			return err
		}
	}
	return nil
}

// ReplayEventFile opens a JSONL event log and replays it.
func ReplayEventFile(path string, mon link.Monitor, writer Writer, chunkSize int, delay time.Duration) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayEvents(f, mon, writer, chunkSize, delay)
}
