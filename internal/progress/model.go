// internal/progress/model.go
// Package: progress
package progress

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/opsbench/internal/bench"
)

const (
	defaultBarWidth = 40
	minBarWidth     = 10
	maxBarWidth     = 60
)

var (
	nameStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// startedMsg is sent when the runner begins a workload.
type startedMsg struct {
	name    string
	samples int
}

// progressMsg carries one sampler notification.
type progressMsg bench.Progress

// finishedMsg is sent when the current workload has a result.
type finishedMsg struct{}

// model renders the workload currently being measured. It never returns a
// tea.Cmd: the spinner steps one frame per notification instead of ticking
// on a timer, so nothing runs between notifications.
type model struct {
	spinner spinner.Model
	bar     progress.Model

	// total is the number of workloads in the run.
	total int
	// index is the 1-based position of the current workload.
	index   int
	current string

	completed int
	samples   int
	fraction  float64
}

func newModel(total int) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultBarWidth))

	return &model{spinner: s, bar: bar, total: total}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = clamp(msg.Width-50, minBarWidth, maxBarWidth)

	case startedMsg:
		m.index++
		m.current = msg.name
		m.samples = msg.samples
		m.completed = 0
		m.fraction = 0

	case progressMsg:
		if msg.Workload != m.current {
			return m, nil
		}
		m.completed = msg.Completed
		m.samples = msg.Total
		m.fraction = msg.Fraction
		m.step()

	case finishedMsg:
		m.current = ""
		m.completed = 0
		m.fraction = 0
	}
	return m, nil
}

// step advances the spinner by one frame and discards the follow-up tick.
func (m *model) step() {
	m.spinner, _ = m.spinner.Update(spinner.TickMsg{})
}

func (m *model) View() string {
	if m.current == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(nameStyle.Render(m.current))
	if m.total > 0 {
		b.WriteString(countStyle.Render(fmt.Sprintf(" [%d/%d]", m.index, m.total)))
	}
	b.WriteString("  ")
	b.WriteString(m.bar.ViewAs(m.fraction))
	b.WriteString(countStyle.Render(fmt.Sprintf("  %d/%d samples", m.completed, m.samples)))
	b.WriteString("\n")
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
