// Package ui renders the opt-in progress dashboard for a run. The
// orchestrator stays in charge; this model only consumes its progress
// messages.
package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/mcao2/skipera/internal/run"
)

// maxFeed bounds the completion feed shown under the progress bar.
const maxFeed = 8

// Model is the bubbletea model for one run.
type Model struct {
	spinner  spinner.Model
	progress progress.Model
	styles   Styles
	width    int

	phase      run.Phase
	phaseTotal int
	phaseDone  int

	feed     []string
	failures []string

	report *run.Report
	done   bool
	copied bool
}

// NewModel creates the dashboard model.
func NewModel() Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
		styles:   DefaultStyles(),
		width:    80,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 4
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.done {
				return m, tea.Quit
			}
		case "c":
			if m.done && len(m.failures) > 0 {
				if err := clipboard.WriteAll(m.failureReport()); err == nil {
					m.copied = true
				}
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case run.PhaseStarted:
		m.phase = msg.Phase
		m.phaseTotal = msg.Total
		m.phaseDone = 0
		return m, nil

	case run.ItemFinished:
		m.phaseDone++
		name := runewidth.Truncate(msg.Outcome.Item.Name, m.width-8, "…")
		if msg.Outcome.Failed() {
			m.feed = append(m.feed, m.styles.Failure.Render("✗ "+name))
			m.failures = append(m.failures,
				fmt.Sprintf("%s: %v", msg.Outcome.Item.Name, msg.Outcome.Err))
		} else {
			m.feed = append(m.feed, m.styles.Success.Render("✓ "+name))
		}
		if len(m.feed) > maxFeed {
			m.feed = m.feed[len(m.feed)-maxFeed:]
		}
		return m, nil

	case run.RunFinished:
		report := msg.Report
		m.report = &report
		m.done = true
		return m, nil
	}

	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("skipera"))
	b.WriteString("\n\n")

	if m.done {
		b.WriteString(m.summaryView())
		return b.String()
	}

	b.WriteString(fmt.Sprintf("%s %s  %d/%d\n",
		m.spinner.View(),
		m.styles.Phase.Render(m.phase.String()),
		m.phaseDone, m.phaseTotal))

	if m.phaseTotal > 0 {
		b.WriteString(m.progress.ViewAs(float64(m.phaseDone)/float64(m.phaseTotal)))
		b.WriteString("\n")
	}

	if len(m.feed) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(m.feed, "\n"))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) summaryView() string {
	r := m.report
	lines := []string{
		fmt.Sprintf("videos       %d/%d", r.Videos.Succeeded, r.Videos.Attempted),
		fmt.Sprintf("readings     %d/%d", r.Readings.Succeeded, r.Readings.Attempted),
		fmt.Sprintf("assessments  %d/%d", r.Assessments.Succeeded, r.Assessments.Attempted),
	}
	if r.Dropped > 0 {
		lines = append(lines, m.styles.Muted.Render(fmt.Sprintf("skipped      %d", r.Dropped)))
	}
	if len(m.failures) > 0 {
		lines = append(lines, "", m.styles.Failure.Render(fmt.Sprintf("%d failed:", len(m.failures))))
		for _, f := range m.failures {
			lines = append(lines, m.styles.Failure.Render("  "+runewidth.Truncate(f, m.width-6, "…")))
		}
	}

	help := "q quit"
	if len(m.failures) > 0 {
		help += " • c copy failure report"
		if m.copied {
			help += " (copied)"
		}
	}

	return m.styles.Summary.Render(strings.Join(lines, "\n")) + "\n" + m.styles.Muted.Render(help) + "\n"
}

func (m Model) failureReport() string {
	return strings.Join(m.failures, "\n")
}
