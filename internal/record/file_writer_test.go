package record

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"photonlink-sim/internal/cosim"
)

func TestFileWriterStreamsJSONL(t *testing.T) {
	dir := t.TempDir()
	eventPath := filepath.Join(dir, "events.jsonl")
	statePath := filepath.Join(dir, "states.jsonl")

	fw, err := NewFileWriter(eventPath, statePath, "")
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}

	events := []cosim.CrcEvent{
		{Cycle: 0, Valid: true, FailProb: 0.2},
		{Cycle: 1, Valid: true, FailProb: 0.2, Failed: true},
	}
	states := []cosim.LinkStateSample{{Cycle: 0, LinkUp: true}, {Cycle: 1, LinkUp: true}}
	if err := fw.WriteChunk(cosim.ChunkSummary{}, nil, events[:1], states[:1]); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	if err := fw.WriteChunk(cosim.ChunkSummary{}, nil, events[1:], states[1:]); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(eventPath)
	if err != nil {
		t.Fatalf("open events: %v", err)
	}
	defer f.Close()
	var decoded []cosim.CrcEvent
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev cosim.CrcEvent
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("bad JSONL line: %v", err)
		}
		decoded = append(decoded, ev)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 events, got %d", len(decoded))
	}
	if decoded[1] != events[1] {
		t.Fatalf("event round trip lost data: %+v vs %+v", decoded[1], events[1])
	}
}

func TestFileWriterSkipsEmptyPaths(t *testing.T) {
	fw, err := NewFileWriter("", "", "")
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	if err := fw.WriteChunk(cosim.ChunkSummary{}, []cosim.TimeSeriesSample{{Cycle: 0}}, nil, nil); err != nil {
		t.Fatalf("WriteChunk with no streams: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
