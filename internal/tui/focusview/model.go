// Package focusview is the full-screen focus timer shown by `tick focus`
// on a terminal.
package focusview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tick/internal/focus"
)

const defaultBarWidth = 40

var (
	modeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	activeStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	clockStyle  = lipgloss.NewStyle().Bold(true).Padding(1, 0)
	statusStyle = lipgloss.NewStyle().Faint(true)
	helpStyle   = lipgloss.NewStyle().Faint(true).MarginTop(1)
	frameStyle  = lipgloss.NewStyle().Padding(1, 2)
)

// stateMsg carries a driver snapshot into the update loop.
type stateMsg focus.State

// closedMsg is sent once the driver's subscription is closed.
type closedMsg struct{}

// Model renders a focus.Driver and forwards keys to it.
type Model struct {
	driver *focus.Driver
	states <-chan focus.State
	cancel func()
	state  focus.State
	bar    progress.Model
}

// New subscribes to d. The subscription ends when the model quits.
func New(d *focus.Driver) *Model {
	states, cancel := d.Subscribe()
	return &Model{
		driver: d,
		states: states,
		cancel: cancel,
		state:  d.State(),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultBarWidth)),
	}
}

func (m *Model) wait() tea.Msg {
	st, ok := <-m.states
	if !ok {
		return closedMsg{}
	}
	return stateMsg(st)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return m.wait }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = focus.State(msg)
		return m, m.wait
	case closedMsg:
		return m, tea.Quit
	case tea.WindowSizeMsg:
		w := msg.Width - 4
		if w > defaultBarWidth {
			w = defaultBarWidth
		}
		if w > 0 {
			m.bar.Width = w
		}
		return m, nil
	case tea.KeyMsg:
		return m, m.key(msg.String())
	}
	return m, nil
}

func (m *Model) key(k string) tea.Cmd {
	switch k {
	case " ", "enter":
		m.driver.Toggle()
	case "r":
		m.driver.Reset()
	case "1":
		m.driver.ChangeMode(focus.ModeFocus)
	case "2":
		m.driver.ChangeMode(focus.ModeShortBreak)
	case "3":
		m.driver.ChangeMode(focus.ModeLongBreak)
	case "q", "esc", "ctrl+c":
		m.cancel()
		return tea.Quit
	}
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	st := m.state

	tabs := make([]string, 0, len(focus.Modes))
	for i, mode := range focus.Modes {
		label := fmt.Sprintf("%d %s", i+1, mode.Label())
		if mode == st.Mode {
			label = activeStyle.Render(label)
		}
		tabs = append(tabs, label)
	}

	status := "paused"
	switch {
	case st.Completed():
		status = "done"
	case st.Running:
		status = "running"
	}

	var b strings.Builder
	b.WriteString(modeStyle.Render(st.Mode.Label()))
	b.WriteString("\n")
	b.WriteString(strings.Join(tabs, "   "))
	b.WriteString("\n")
	b.WriteString(clockStyle.Render(st.Clock()))
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(st.Progress()))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(status))
	b.WriteString(helpStyle.Render("space start/pause  r reset  1-3 mode  q quit"))
	return frameStyle.Render(b.String())
}

// Run shows the timer until the user quits or ctx ends.
func Run(ctx context.Context, d *focus.Driver, in io.Reader, out io.Writer) error {
	m := New(d)
	defer m.cancel()

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
