// Package tui renders live progress for `tenvctl run --watch`: one line
// per environment, fed by runner events over a channel. The model stays
// inline (no alternate screen) so the final state remains in the terminal
// scrollback.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tenvctl/internal/color"
	"tenvctl/internal/runner"
	"tenvctl/pkg/logging"
)

type envStatus int

const (
	statusPending envStatus = iota
	statusRunning
	statusDone
)

type envState struct {
	status      envStatus
	lastCommand string
	result      *runner.EnvironmentResult
}

// eventMsg wraps a runner event for the update loop.
type eventMsg runner.Event

// eventsClosedMsg signals the runner finished and closed the channel.
type eventsClosedMsg struct{}

// logMsg wraps a log entry published in watch mode.
type logMsg logging.LogEntry

// logsClosedMsg signals the log channel was closed on shutdown.
type logsClosedMsg struct{}

// maxLogLines bounds the log tail rendered under the environment rows.
const maxLogLines = 6

// Model is the bubbletea model for the watch view.
type Model struct {
	events <-chan runner.Event
	logs   <-chan logging.LogEntry

	spinner  spinner.Model
	order    []string
	states   map[string]*envState
	suite    *runner.SuiteResult
	logLines []string
	width    int
}

// New creates a watch model draining the given event channel. logs may be
// nil when watch-mode logging is not wired.
func New(events <-chan runner.Event, logs <-chan logging.LogEntry) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(color.GetProfile().Info)

	return &Model{
		events:  events,
		logs:    logs,
		spinner: s,
		states:  make(map[string]*envState),
		width:   80,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent(), m.waitForLog())
}

// waitForEvent reads the next runner event off the channel.
func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(event)
	}
}

// waitForLog reads the next log entry off the watch channel.
func (m *Model) waitForLog() tea.Cmd {
	if m.logs == nil {
		return nil
	}
	return func() tea.Msg {
		entry, ok := <-m.logs
		if !ok {
			return logsClosedMsg{}
		}
		return logMsg(entry)
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		m.apply(runner.Event(msg))
		return m, m.waitForEvent()

	case eventsClosedMsg:
		return m, tea.Quit

	case logMsg:
		m.appendLog(logging.LogEntry(msg))
		return m, m.waitForLog()

	case logsClosedMsg:
		return m, nil
	}
	return m, nil
}

func (m *Model) appendLog(entry logging.LogEntry) {
	line := fmt.Sprintf("%s %s: %s", entry.Level, entry.Subsystem, entry.Message)
	if entry.Err != nil {
		line += ": " + entry.Err.Error()
	}
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
}

func (m *Model) apply(event runner.Event) {
	switch {
	case event.Start != nil:
		m.order = event.Start.Environments
		for _, name := range m.order {
			m.states[name] = &envState{status: statusPending}
		}

	case event.EnvironmentStart != nil:
		if state, ok := m.states[event.EnvironmentStart.Name]; ok {
			state.status = statusRunning
		}

	case event.CommandResult != nil:
		if state, ok := m.states[event.CommandResult.EnvName]; ok {
			state.lastCommand = strings.Join(event.CommandResult.Result.Argv, " ")
		}

	case event.EnvironmentResult != nil:
		if state, ok := m.states[event.EnvironmentResult.Name]; ok {
			state.status = statusDone
			result := *event.EnvironmentResult
			state.result = &result
		}

	case event.SuiteResult != nil:
		suite := *event.SuiteResult
		m.suite = &suite
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	for _, name := range m.order {
		state := m.states[name]
		b.WriteString(m.renderRow(name, state))
		b.WriteByte('\n')
	}

	if len(m.logLines) > 0 {
		b.WriteByte('\n')
		for _, line := range m.logLines {
			if m.width > 0 {
				line = runewidth.Truncate(line, m.width, "…")
			}
			b.WriteString(color.MutedStyle().Render(line))
			b.WriteByte('\n')
		}
	}

	if m.suite != nil {
		b.WriteByte('\n')
		b.WriteString(m.renderSummary(*m.suite))
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *Model) renderRow(name string, state *envState) string {
	var marker, detail string
	switch state.status {
	case statusPending:
		marker = color.MutedStyle().Render("·")
		detail = color.MutedStyle().Render("waiting")
	case statusRunning:
		marker = m.spinner.View()
		detail = state.lastCommand
	case statusDone:
		switch state.result.Result {
		case runner.ResultPassed:
			marker = color.SuccessStyle().Render("✔")
		case runner.ResultSkipped:
			marker = color.WarningStyle().Render("-")
		default:
			marker = color.FailureStyle().Render("✘")
		}
		detail = state.result.Duration.Round(time.Millisecond).String()
		if state.result.Error != "" {
			detail += "  " + color.FailureStyle().Render(state.result.Error)
		}
	}

	row := fmt.Sprintf("%s %-16s %s", marker, name, detail)
	if m.width > 0 {
		row = runewidth.Truncate(row, m.width, "…")
	}
	return row
}

func (m *Model) renderSummary(suite runner.SuiteResult) string {
	parts := []string{
		color.SuccessStyle().Render(fmt.Sprintf("%d passed", suite.PassedEnvironments)),
	}
	if suite.FailedEnvironments > 0 {
		parts = append(parts, color.FailureStyle().Render(fmt.Sprintf("%d failed", suite.FailedEnvironments)))
	}
	if suite.ErrorEnvironments > 0 {
		parts = append(parts, color.FailureStyle().Render(fmt.Sprintf("%d errored", suite.ErrorEnvironments)))
	}
	if suite.SkippedEnvs > 0 {
		parts = append(parts, color.WarningStyle().Render(fmt.Sprintf("%d skipped", suite.SkippedEnvs)))
	}
	return strings.Join(parts, ", ") + "  " + color.MutedStyle().Render(suite.Duration.Round(time.Millisecond).String())
}

// Run starts the watch view and blocks until the runner finishes or the
// user quits.
func Run(events <-chan runner.Event, logs <-chan logging.LogEntry) error {
	program := tea.NewProgram(New(events, logs))
	_, err := program.Run()
	return err
}
