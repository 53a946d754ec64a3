// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/YukiHonma/sakura/internal/capture"
	"github.com/YukiHonma/sakura/internal/sim"
	"github.com/YukiHonma/sakura/pkg/fets"
	"github.com/YukiHonma/sakura/pkg/underbody"
)

//////////////////////////////////////////////////////////////
// Model
//////////////////////////////////////////////////////////////

// monitorSession holds what the model drives. It is shared by every copy of
// the model bubbletea makes.
type monitorSession struct {
	name     string
	connInfo string
	fet      *fets.Fets
	chassis  *underbody.UnderBody
	bench    *sim.Bench // nil unless --sim
	period   time.Duration
	budget   int
	recorder *capture.Writer
}

type monitorEvent struct {
	timestamp time.Time
	message   string
	isError   bool
}

type monitorKeys struct {
	Command key.Binding
	Reset   key.Binding
	Toggle  key.Binding
	Quit    key.Binding
	Submit  key.Binding
	Cancel  key.Binding
}

func newMonitorKeys() monitorKeys {
	return monitorKeys{
		Command: key.NewBinding(key.WithKeys(":", "/"), key.WithHelp(":", "command")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset stats")),
		Toggle:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7"), key.WithHelp("1-7", "toggle sim input")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

type monitorModel struct {
	session monitorSession
	console *console

	telemetry  fets.Telemetry
	locked     bool
	drained    uint64 // bytes drained since the last record
	lastChange time.Time

	events        []monitorEvent
	maxLogEntries int

	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    monitorKeys

	width    int
	height   int
	quitting bool
	err      error
}

type monitorPollMsg time.Time

func initialMonitorModel(s monitorSession) monitorModel {
	ti := textinput.New()
	ti.Placeholder = "pwm out1 50%"
	ti.Prompt = "> "
	ti.CharLimit = 64
	ti.Width = 48

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	return monitorModel{
		session:       s,
		console:       &console{fet: s.fet, chassis: s.chassis},
		events:        make([]monitorEvent, 0),
		maxLogEntries: 100,
		input:         ti,
		spinner:       sp,
		help:          help.New(),
		keys:          newMonitorKeys(),
		width:         80,
		height:        24,
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(m.pollCmd(), m.spinner.Tick)
}

func (m monitorModel) pollCmd() tea.Cmd {
	return tea.Tick(m.session.period, func(t time.Time) tea.Msg {
		return monitorPollMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case monitorPollMsg:
		if err := m.poll(time.Time(msg)); err != nil {
			m.err = err
			m.quitting = true
			return m, tea.Quit
		}
		return m, m.pollCmd()

	case spinner.TickMsg:
		if m.locked {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m monitorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Command):
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Reset):
		m.session.fet.ResetStats()
		m.addLogEntry("Statistics reset", false)

	case key.Matches(msg, m.keys.Toggle):
		if m.session.bench == nil {
			m.addLogEntry("Input toggles need --sim", true)
			break
		}
		port := fets.Separator + fets.Port(msg.String()[0]-'0')
		if err := m.session.bench.Device.ToggleInput(port); err != nil {
			m.addLogEntry(err.Error(), true)
		}
	}
	return m, nil
}

func (m monitorModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.input.Blur()
		m.input.SetValue("")
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		line := strings.TrimSpace(m.input.Value())
		m.input.SetValue("")
		if line == "" {
			m.input.Blur()
			return m, nil
		}
		result, err := m.console.Run(line)
		if err != nil {
			m.addLogEntry(err.Error(), true)
		} else if result != "" {
			m.addLogEntry(result, false)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// poll drains the bus once and logs changes of the decoded state
func (m *monitorModel) poll(now time.Time) error {
	n, err := m.session.fet.RecvData()
	m.drained += uint64(n)
	if err != nil {
		return err
	}

	stats := m.session.fet.Stats()
	if !stats.Locked() {
		return nil
	}
	t := m.session.fet.Telemetry()
	if m.locked && t == m.telemetry {
		return nil
	}

	if !m.locked {
		m.locked = true
		m.addLogEntry(fmt.Sprintf("Locked after %d bytes: %s", stats.BytesDrained, fets.FormatTelemetry(t)), false)
	} else {
		m.addLogEntry(describeChange(m.telemetry, t), false)
	}
	m.telemetry = t
	m.lastChange = now

	if m.session.recorder != nil {
		rec := capture.Record{
			Time:    now,
			Device:  m.session.name,
			Address: m.session.fet.Address(),
			Output:  t.Output,
			Input:   t.Input,
			Drained: m.drained,
		}
		if err := m.session.recorder.Write(rec); err != nil {
			return err
		}
	}
	m.drained = 0
	return nil
}

func (m *monitorModel) addLogEntry(message string, isError bool) {
	m.events = append(m.events, monitorEvent{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})

	// Keep only last N entries
	if len(m.events) > m.maxLogEntries {
		m.events = m.events[len(m.events)-m.maxLogEntries:]
	}
}

// describeChange lists the ports whose bit differs between two snapshots
func describeChange(prev, cur fets.Telemetry) string {
	var parts []string
	for p := fets.Out1; p <= fets.Out7; p++ {
		if prev.OutputBit(p) != cur.OutputBit(p) {
			parts = append(parts, fmt.Sprintf("%v=%d", p, cur.OutputBit(p)))
		}
	}
	for p := fets.In1; p <= fets.In7; p++ {
		if prev.InputBit(p) != cur.InputBit(p) {
			parts = append(parts, fmt.Sprintf("%v=%d", p, cur.InputBit(p)))
		}
	}
	if len(parts) == 0 {
		return fets.FormatTelemetry(cur)
	}
	return strings.Join(parts, " ")
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

var (
	monTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	monHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	monLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	monValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	monErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	monOnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("10")).
			Padding(0, 1)

	monOffStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	monBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder
	s.WriteString(monTitleStyle.Render("SAKURA - FET MONITOR"))
	s.WriteString("\n")
	s.WriteString(monHeaderStyle.Render(fmt.Sprintf("%s | %s @ 0x%02X | poll %v | budget %d frames/period",
		m.session.connInfo, m.session.name, m.session.fet.Address(), m.session.period, m.session.budget)))
	s.WriteString("\n\n")

	if !m.locked {
		s.WriteString(m.spinner.View())
		s.WriteString(" Waiting for telemetry...")
	} else {
		s.WriteString(monValueStyle.Render("✓ Locked"))
		s.WriteString(monHeaderStyle.Render(fmt.Sprintf(" (last change %s ago)", time.Since(m.lastChange).Truncate(time.Millisecond))))
	}
	s.WriteString("\n\n")

	// Port grid
	var grid strings.Builder
	grid.WriteString(monLabelStyle.Render("Out ") + " ")
	for p := fets.Out1; p <= fets.Out7; p++ {
		grid.WriteString(portCell(p, m.telemetry.OutputBit(p)))
	}
	grid.WriteString("\n")
	grid.WriteString(monLabelStyle.Render("In  ") + " ")
	for p := fets.In1; p <= fets.In7; p++ {
		grid.WriteString(portCell(p, m.telemetry.InputBit(p)))
	}
	s.WriteString(monBoxStyle.Render(grid.String()))
	s.WriteString("\n")

	// Statistics
	stats := m.session.fet.Stats()
	stats.CalculateRates(time.Now())
	s.WriteString(monBoxStyle.Render(fmt.Sprintf("%s %s   %s %s   %s %s\n%s %s   %s %s",
		monLabelStyle.Render("Polls:"), monValueStyle.Render(fmt.Sprintf("%d", stats.Polls)),
		monLabelStyle.Render("Bytes:"), monValueStyle.Render(fmt.Sprintf("%d", stats.BytesDrained)),
		monLabelStyle.Render("Frames:"), monValueStyle.Render(fmt.Sprintf("%d", stats.FramesMatched)),
		monLabelStyle.Render("Byte Rate:"), monValueStyle.Render(fmt.Sprintf("%.1f B/s", stats.ByteRate)),
		monLabelStyle.Render("Frame Rate:"), monValueStyle.Render(fmt.Sprintf("%.1f frames/s", stats.FrameRate)),
	)))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(monLabelStyle.Render("Recent Events:"))
	s.WriteString("\n")
	logHeight := m.height - 19
	if logHeight < 3 {
		logHeight = 3
	}
	start := len(m.events) - logHeight
	if start < 0 {
		start = 0
	}
	for _, e := range m.events[start:] {
		line := fmt.Sprintf("%s %s", e.timestamp.Format("15:04:05.000"), e.message)
		if e.isError {
			line = monErrorStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}
	s.WriteString("\n")

	if m.input.Focused() {
		s.WriteString(m.input.View())
		s.WriteString("\n")
		s.WriteString(monHeaderStyle.Render(consoleHelp))
		s.WriteString("\n")
		s.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.Submit, m.keys.Cancel}))
	} else {
		bindings := []key.Binding{m.keys.Command, m.keys.Reset, m.keys.Quit}
		if m.session.bench != nil {
			bindings = append(bindings, m.keys.Toggle)
		}
		s.WriteString(m.help.ShortHelpView(bindings))
	}
	s.WriteString("\n")
	return s.String()
}

func portCell(p fets.Port, level uint8) string {
	if level != 0 {
		return monOnStyle.Render(p.String()) + " "
	}
	return monOffStyle.Render(p.String()) + " "
}
