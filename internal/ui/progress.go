// Package ui renders directory-parse progress with Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"songsheet/internal/driver"
)

// maxRows bounds the song list; finished songs scroll out first.
const maxRows = 12

type songState uint8

const (
	stateQueued songState = iota
	stateLoading
	stateLexing
	stateParsing
	stateDone
	stateFailed
)

func (s songState) String() string {
	switch s {
	case stateLoading:
		return "loading"
	case stateLexing:
		return "lexing"
	case stateParsing:
		return "parsing"
	case stateDone:
		return "done"
	case stateFailed:
		return "error"
	default:
		return "queued"
	}
}

func (s songState) finished() bool { return s == stateDone || s == stateFailed }

// weight is the share of a song's work that is behind it.
func (s songState) weight() float64 {
	switch s {
	case stateLoading:
		return 0.1
	case stateLexing:
		return 0.3
	case stateParsing:
		return 0.5
	case stateDone, stateFailed:
		return 1
	default:
		return 0
	}
}

func (s songState) style() lipgloss.Style {
	switch s {
	case stateDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case stateFailed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case stateLoading, stateLexing, stateParsing:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

type songRow struct {
	path    string
	state   songState
	elapsed time.Duration
	err     error
}

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model
	songs   []songRow
	index   map[string]int
	phase   string // run-wide stage, e.g. "parsing"
	failed  int
	width   int
	done    bool
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that shows per-song status
// while ParseDir runs. It quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		songs:   make([]songRow, len(files)),
		index:   make(map[string]int, len(files)),
		width:   80,
	}
	for i, file := range files {
		m.songs[i] = songRow{path: file}
		m.index[file] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(driver.Event(msg)), m.waitEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.songs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")).Render(m.header()))
	b.WriteString("\n\n")

	nameWidth := max(m.width-24, 20)
	rows, hidden := m.visibleRows()
	for _, row := range rows {
		state := row.state.style().Render(fmt.Sprintf("%8s", row.state))
		line := fmt.Sprintf("  %s %s", state, truncate(row.path, nameWidth))
		if row.state.finished() && row.elapsed > 0 {
			line += "  " + row.elapsed.Round(time.Millisecond).String()
		}
		if row.err != nil {
			line += "  " + truncate(row.err.Error(), 40)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if hidden > 0 {
		fmt.Fprintf(&b, "  ... %d more\n", hidden)
	}

	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1.0))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	if m.failed > 0 {
		fmt.Fprintf(&b, "%d of %d songs failed\n", m.failed, len(m.songs))
	}
	return b.String()
}

func (m *progressModel) header() string {
	finished := 0
	for _, row := range m.songs {
		if row.state.finished() {
			finished++
		}
	}
	h := m.title
	if m.phase != "" {
		h += " (" + m.phase + ")"
	}
	h += fmt.Sprintf(" %d/%d", finished, len(m.songs))
	if m.done {
		return "done: " + h
	}
	return m.spinner.View() + " " + h
}

// visibleRows keeps failed and in-flight songs on screen and fills the rest
// in path order.
func (m *progressModel) visibleRows() ([]songRow, int) {
	if len(m.songs) <= maxRows {
		return m.songs, 0
	}
	rows := make([]songRow, 0, maxRows)
	for _, row := range m.songs {
		if len(rows) < maxRows && (row.state == stateFailed || (row.state != stateQueued && !row.state.finished())) {
			rows = append(rows, row)
		}
	}
	for _, row := range m.songs {
		if len(rows) < maxRows && (row.state == stateQueued || row.state == stateDone) {
			rows = append(rows, row)
		}
	}
	return rows, len(m.songs) - len(rows)
}

func (m *progressModel) waitEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	state, ok := stateOf(ev.Stage, ev.Status)
	if ev.File == "" {
		if ok && ev.Status == driver.StatusWorking {
			m.phase = state.String()
		}
		return nil
	}
	idx, known := m.index[ev.File]
	if !known || !ok {
		return nil
	}
	row := &m.songs[idx]
	if state == stateFailed && row.state != stateFailed {
		m.failed++
	}
	row.state = state
	if ev.Elapsed > 0 {
		row.elapsed = ev.Elapsed
	}
	if ev.Err != nil {
		row.err = ev.Err
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.songs) == 0 {
		return 0
	}
	total := 0.0
	for _, row := range m.songs {
		total += row.state.weight()
	}
	return total / float64(len(m.songs))
}

func stateOf(stage driver.Stage, status driver.Status) (songState, bool) {
	switch status {
	case driver.StatusQueued:
		return stateQueued, true
	case driver.StatusDone:
		return stateDone, true
	case driver.StatusError:
		return stateFailed, true
	case driver.StatusWorking:
		switch stage {
		case driver.StageLoad:
			return stateLoading, true
		case driver.StageLex:
			return stateLexing, true
		case driver.StageParse:
			return stateParsing, true
		}
	}
	return stateQueued, false
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
