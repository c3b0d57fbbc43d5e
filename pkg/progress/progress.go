// Package progress renders a live feed for sync runs with bubbletea.
package progress

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/tpsync/pkg/pattern"
)

// Event is one per-point result forwarded from the orchestrator.
type Event struct {
	Name    string
	Outcome string
	Status  string // a pattern.Row* value
	Detail  string
}

const recentMax = 5

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F56"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFBD2E"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// Run displays progress until the event channel closes. It blocks; run the
// orchestrator on another goroutine and forward its OnResult callback into
// the channel.
func Run(ctx context.Context, total int, events <-chan Event) error {
	program := tea.NewProgram(newModel(total, events), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type eventMsg Event
type doneMsg struct{}

type model struct {
	total    int
	done     int
	updated  int
	failed   int
	skipped  int
	events   <-chan Event
	bar      progress.Model
	spin     spinner.Model
	recent   []Event
	finished bool
}

func newModel(total int, events <-chan Event) model {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = successStyle
	return model{total: total, events: events, bar: bar, spin: sp}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.listen(), m.spin.Tick)
}

func (m model) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.finished {
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		w := msg.Width - 10
		if w > 60 {
			w = 60
		}
		if w < 10 {
			w = 10
		}
		m.bar.Width = w
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case eventMsg:
		m.done++
		switch msg.Status {
		case pattern.RowUpdated, pattern.RowSimulated:
			m.updated++
		case pattern.RowFailed:
			m.failed++
		case pattern.RowSkipped:
			m.skipped++
		}
		m.recent = append(m.recent, Event(msg))
		if len(m.recent) > recentMax {
			m.recent = m.recent[len(m.recent)-recentMax:]
		}
		return m, m.listen()
	case doneMsg:
		m.finished = true
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	var sb strings.Builder

	if m.finished {
		sb.WriteString(fmt.Sprintf("  done  %d/%d points\n", m.done, m.total))
	} else {
		sb.WriteString(fmt.Sprintf("%s syncing points  %d/%d\n", m.spin.View(), m.done, m.total))
	}
	sb.WriteString("  " + m.bar.ViewAs(m.percent()) + "\n")

	counts := []string{successStyle.Render(fmt.Sprintf("✓ %d updated", m.updated))}
	if m.failed > 0 {
		counts = append(counts, errorStyle.Render(fmt.Sprintf("✗ %d failed", m.failed)))
	}
	if m.skipped > 0 {
		counts = append(counts, warnStyle.Render(fmt.Sprintf("- %d skipped", m.skipped)))
	}
	sb.WriteString("  " + strings.Join(counts, "  ") + "\n")

	for _, ev := range m.recent {
		sb.WriteString("    " + eventLine(ev) + "\n")
	}
	return sb.String()
}

func (m model) percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

func eventLine(ev Event) string {
	var icon string
	var style lipgloss.Style
	switch ev.Status {
	case pattern.RowUpdated, pattern.RowSimulated:
		icon, style = "✓", successStyle
	case pattern.RowFailed:
		icon, style = "✗", errorStyle
	default:
		icon, style = "-", mutedStyle
	}
	line := icon + " " + ev.Name
	if ev.Outcome != "" {
		line += " -> " + ev.Outcome
	}
	if ev.Detail != "" {
		line += "  " + ev.Detail
	}
	return style.Render(line)
}
