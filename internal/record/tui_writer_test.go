package record

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"photonlink-sim/internal/cosim"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func TestTUIWriterMessages(t *testing.T) {
	p := &fakeProgram{}
	w := &TUIWriter{program: p}

	summary := cosim.ChunkSummary{ChunkIdx: 0, StartCycle: 0, EndCycle: 2}
	samples := []cosim.TimeSeriesSample{
		{Cycle: 0, TempC: 25, Locked: true},
		{Cycle: 1, TempC: 25.1, Locked: true},
	}
	events := []cosim.CrcEvent{
		{Cycle: 0, Valid: true},               // pass, not rendered
		{Cycle: 1, Valid: true, Failed: true}, // fail, rendered
	}
	states := []cosim.LinkStateSample{
		{Cycle: 0, LinkUp: true},
		{Cycle: 1, LinkUp: true, TotalFrames: 2, TotalCrcFails: 1},
	}
	if err := w.WriteChunk(summary, samples, events, states); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}

	var logs, eventLines, statuses, chunks int
	for _, msg := range p.msgs {
		switch msg.(type) {
		case logMsg:
			logs++
		case eventMsg:
			eventLines++
		case statusMsg:
			statuses++
		case chunkMsg:
			chunks++
		}
	}
	if logs != 2 {
		t.Fatalf("expected 2 cycle lines, got %d", logs)
	}
	if eventLines != 1 {
		t.Fatalf("passing events must not be rendered; got %d event lines", eventLines)
	}
	if statuses != 1 || chunks != 1 {
		t.Fatalf("expected 1 status and 1 chunk message, got %d/%d", statuses, chunks)
	}
}

func TestTUIModelFooter(t *testing.T) {
	m := newTUIModel(TUIHeader{Scenario: "s", TotalCycles: 100, ChunkSize: 10})
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = mi.(tuiModel)

	if got := m.renderBottom(); !strings.Contains(got, "waiting for first chunk") {
		t.Fatalf("expected waiting footer, got %q", got)
	}

	mi, _ = m.Update(statusMsg{cosim.LinkStateSample{Cycle: 5, LinkUp: false, TotalFrames: 6, TotalCrcFails: 4}})
	m = mi.(tuiModel)
	mi, _ = m.Update(chunkMsg{cosim.ChunkSummary{ChunkIdx: 0, StartCycle: 0, EndCycle: 10}})
	m = mi.(tuiModel)

	got := m.renderBottom()
	if !strings.Contains(got, "LINK DOWN") {
		t.Fatalf("footer missing link status: %q", got)
	}
	if !strings.Contains(got, "chunk 0 [0, 10)") {
		t.Fatalf("footer missing chunk progress: %q", got)
	}
}

func TestTUIModelQuitKey(t *testing.T) {
	m := newTUIModel(TUIHeader{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("q must quit")
	}
}

func TestTUIModelScrollToggle(t *testing.T) {
	m := newTUIModel(TUIHeader{})
	mi, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = mi.(tuiModel)
	if m.autoscroll {
		t.Fatalf("autoscroll not toggled off")
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = mi.(tuiModel)
	if !m.autoscroll {
		t.Fatalf("autoscroll not toggled back on")
	}
}
