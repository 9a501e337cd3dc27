package record

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"photonlink-sim/internal/cosim"
)

// StdoutJSONWriter prints every row as one JSON line, suitable for piping.
type StdoutJSONWriter struct {
	out io.Writer
}

// NewStdoutJSONWriter writes to os.Stdout.
func NewStdoutJSONWriter() *StdoutJSONWriter {
	return &StdoutJSONWriter{out: os.Stdout}
}

// WriteChunk implements Writer.
func (w *StdoutJSONWriter) WriteChunk(summary cosim.ChunkSummary, samples []cosim.TimeSeriesSample, events []cosim.CrcEvent, states []cosim.LinkStateSample) error {
	enc := json.NewEncoder(w.out)
	for _, s := range samples {
		if err := enc.Encode(s); err != nil {
			return err
		}
	}
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}
	for _, st := range states {
		if err := enc.Encode(st); err != nil {
			return err
		}
	}
	return nil
}

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

// ColorStdoutWriter prints one human-friendly line per cycle with ANSI
// colors, plus a marker line on every link transition.
type ColorStdoutWriter struct {
	out        io.Writer
	lastLinkUp bool
	seenState  bool
}

// NewColorStdoutWriter writes to os.Stdout.
func NewColorStdoutWriter() *ColorStdoutWriter {
	return &ColorStdoutWriter{out: os.Stdout}
}

// WriteChunk implements Writer.
func (w *ColorStdoutWriter) WriteChunk(summary cosim.ChunkSummary, samples []cosim.TimeSeriesSample, events []cosim.CrcEvent, states []cosim.LinkStateSample) error {
	stateAt := make(map[int]cosim.LinkStateSample, len(states))
	for _, st := range states {
		stateAt[st.Cycle] = st
	}
	eventAt := make(map[int]cosim.CrcEvent, len(events))
	for _, ev := range events {
		eventAt[ev.Cycle] = ev
	}

	for _, s := range samples {
		lockColor := colorGreen
		lock := "locked"
		if !s.Locked {
			lockColor = colorRed
			lock = "unlocked"
		}
		fmt.Fprintf(w.out, "%scycle=%-6d%s %stemp=%.3f%s %sdetune=%+.4f%s %s%s%s %sp_fail=%.4f%s %sheater=%.3f%s %swork=%.3f%s",
			colorGray, s.Cycle, colorReset,
			colorCyan, s.TempC, colorReset,
			colorYellow, s.DetuneNm, colorReset,
			lockColor, lock, colorReset,
			colorMagenta, s.CrcFailProb, colorReset,
			colorBlue, s.HeaterDuty, colorReset,
			colorBlue, s.WorkloadFrac, colorReset,
		)
		if ev, ok := eventAt[s.Cycle]; ok {
			switch {
			case !ev.Valid:
				fmt.Fprintf(w.out, " %sidle%s", colorGray, colorReset)
			case ev.Failed:
				fmt.Fprintf(w.out, " %sCRC FAIL%s", colorRed, colorReset)
			default:
				fmt.Fprintf(w.out, " %scrc ok%s", colorGreen, colorReset)
			}
		}
		if st, ok := stateAt[s.Cycle]; ok {
			if w.seenState && st.LinkUp != w.lastLinkUp {
				transition := fmt.Sprintf("%sLINK DOWN%s", colorRed, colorReset)
				if st.LinkUp {
					transition = fmt.Sprintf("%sLINK UP%s", colorGreen, colorReset)
				}
				fmt.Fprintf(w.out, " %s", transition)
			}
			w.lastLinkUp = st.LinkUp
			w.seenState = true
		}
		fmt.Fprintln(w.out)
	}

	fmt.Fprintf(w.out, "%schunk %d done [%d, %d)%s\n",
		colorGray, summary.ChunkIdx, summary.StartCycle, summary.EndCycle, colorReset)
	return nil
}
