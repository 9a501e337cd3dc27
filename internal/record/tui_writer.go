package record

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"photonlink-sim/internal/cosim"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a rendered cycle line for the viewport.
type logMsg struct{ line string }

// eventMsg carries a rendered CRC event line.
type eventMsg struct{ line string }

// statusMsg carries the latest link state for the footer.
type statusMsg struct{ cosim.LinkStateSample }

// chunkMsg carries chunk progress for the footer.
type chunkMsg struct{ cosim.ChunkSummary }

const maxSectionHeightPct = 0.2

// TUIWriter renders the run live using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// TUIHeader describes the run shown in the header table.
type TUIHeader struct {
	Scenario    string
	TotalCycles int
	ChunkSize   int
	Seed        uint64
	Controller  string
	LinkEnabled bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(hdr TUIHeader) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	m := newTUIModel(hdr)
	p := tea.NewProgram(m, tea.WithAltScreen())
	w.program = p
	go func() {
		_ = p.Start()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// WriteChunk implements Writer.
func (w *TUIWriter) WriteChunk(summary cosim.ChunkSummary, samples []cosim.TimeSeriesSample, events []cosim.CrcEvent, states []cosim.LinkStateSample) error {
	for _, s := range samples {
		lockColor := colorGreen
		lock := "locked"
		if !s.Locked {
			lockColor = colorRed
			lock = "unlocked"
		}
		line := fmt.Sprintf("%scycle=%-6d%s %stemp=%.3f%s %sdetune=%+.4f%s %s%s%s %sp_fail=%.4f%s %sheater=%.3f%s %swork=%.3f%s",
			colorGray, s.Cycle, colorReset,
			colorCyan, s.TempC, colorReset,
			colorYellow, s.DetuneNm, colorReset,
			lockColor, lock, colorReset,
			colorMagenta, s.CrcFailProb, colorReset,
			colorBlue, s.HeaterDuty, colorReset,
			colorBlue, s.WorkloadFrac, colorReset,
		)
		w.program.Send(logMsg{line: line})
	}
	for _, ev := range events {
		if ev.Valid && !ev.Failed {
			continue
		}
		kind := fmt.Sprintf("%sCRC FAIL%s", colorRed, colorReset)
		if !ev.Valid {
			kind = fmt.Sprintf("%sidle%s", colorGray, colorReset)
		}
		line := fmt.Sprintf("%scycle=%-6d%s %s %sp=%.4f%s",
			colorGray, ev.Cycle, colorReset,
			kind,
			colorMagenta, ev.FailProb, colorReset)
		w.program.Send(eventMsg{line: line})
	}
	if len(states) > 0 {
		w.program.Send(statusMsg{states[len(states)-1]})
	}
	w.program.Send(chunkMsg{summary})
	return nil
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	hdr          TUIHeader
	table        table.Model
	vp           viewport.Model
	eventVP      viewport.Model
	logs         []string
	eventLogs    []string
	link         cosim.LinkStateSample
	haveLink     bool
	chunk        cosim.ChunkSummary
	haveChunk    bool
	wrap         bool
	autoscroll   bool
	header       string
	headerHeight int
	height       int
}

func newTUIModel(hdr TUIHeader) tuiModel {
	cols := []table.Column{
		{Title: "Config", Width: 16},
		{Title: "Value", Width: 24},
	}
	link := "disabled"
	if hdr.LinkEnabled {
		link = "enabled"
	}
	controller := hdr.Controller
	if controller == "" {
		controller = "none"
	}
	rows := []table.Row{
		{"Scenario", hdr.Scenario},
		{"Cycles", fmt.Sprintf("%d (chunks of %d)", hdr.TotalCycles, hdr.ChunkSize)},
		{"Seed", fmt.Sprintf("%d", hdr.Seed)},
		{"Controller", controller},
		{"Link Monitor", link},
	}
	t := table.New(table.WithColumns(cols), table.WithRows(rows), table.WithHeight(len(rows)+1))
	return tuiModel{
		hdr:        hdr,
		table:      t,
		vp:         viewport.New(0, 0),
		eventVP:    viewport.New(0, 0),
		autoscroll: true,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.eventVP.Width = msg.Width
		m.height = msg.Height
		m.header = m.table.View()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
		m.refreshViewport()
		m.refreshEvents()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
				m.eventVP.GotoBottom()
			}
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.vp.LineDown(1)
				m.eventVP.LineDown(1)
			case "k", "up":
				m.vp.LineUp(1)
				m.eventVP.LineUp(1)
			case "pgdown", "ctrl+n":
				m.vp.LineDown(10)
				m.eventVP.LineDown(10)
			case "pgup", "ctrl+p":
				m.vp.LineUp(10)
				m.eventVP.LineUp(10)
			default:
				var cmd tea.Cmd
				m.vp, cmd = m.vp.Update(msg)
				m.eventVP, _ = m.eventVP.Update(msg)
				return m, cmd
			}
			return m, nil
		}
		return m, nil
	case logMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > 1000 {
			m.logs = m.logs[len(m.logs)-1000:]
		}
		m.refreshViewport()
	case eventMsg:
		m.eventLogs = append(m.eventLogs, msg.line)
		if len(m.eventLogs) > 1000 {
			m.eventLogs = m.eventLogs[len(m.eventLogs)-1000:]
		}
		m.updateViewportHeight()
		m.refreshEvents()
		m.refreshViewport()
	case statusMsg:
		m.link = msg.LinkStateSample
		m.haveLink = true
	case chunkMsg:
		m.chunk = msg.ChunkSummary
		m.haveChunk = true
	}
	return m, nil
}

func (m *tuiModel) updateViewportHeight() {
	bottomHeight := lipgloss.Height(m.renderBottom())

	maxLines := int(float64(m.height) * maxSectionHeightPct)
	if maxLines < 1 {
		maxLines = 1
	}
	eventLines := len(m.eventLogs)
	if eventLines == 0 {
		eventLines = 1
	}
	if eventLines > maxLines {
		eventLines = maxLines
	}
	m.eventVP.Height = eventLines

	h := m.height - m.headerHeight - bottomHeight - m.eventVP.Height - 4
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
		m.eventVP.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.wrap {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshEvents() {
	content := "none"
	if len(m.eventLogs) > 0 {
		content = strings.Join(m.eventLogs, "\n")
	}
	m.eventVP.SetContent(content)
	if m.autoscroll {
		m.eventVP.GotoBottom()
	}
}

func (m tuiModel) View() string {
	divider := strings.Repeat("─", m.vp.Width)
	sections := []string{
		m.header,
		divider,
		m.vp.View(),
		divider,
		"CRC Events:",
		m.eventVP.View(),
		divider,
		m.renderBottom(),
	}
	return strings.Join(sections, "\n")
}

func (m tuiModel) renderBottom() string {
	linkIndicator := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("●")
	linkText := "link n/a"
	if m.haveLink {
		if m.link.LinkUp {
			linkIndicator = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("●")
			linkText = "LINK UP"
		} else {
			linkIndicator = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("●")
			linkText = "LINK DOWN"
		}
	}
	progress := "waiting for first chunk"
	if m.haveChunk {
		progress = fmt.Sprintf("chunk %d [%d, %d) of %d cycles",
			m.chunk.ChunkIdx, m.chunk.StartCycle, m.chunk.EndCycle, m.hdr.TotalCycles)
	}
	stats := ""
	if m.haveLink {
		stats = fmt.Sprintf(" %sframes=%d%s %sfails=%d%s",
			colorGreen, m.link.TotalFrames, colorReset,
			colorRed, m.link.TotalCrcFails, colorReset)
	}
	return fmt.Sprintf("%s %s | %s%s | q quit, w wrap, s scroll", linkIndicator, linkText, progress, stats)
}
