package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/pulse/internal/aggregate"
	"github.com/Iron-Ham/pulse/internal/errors"
	"github.com/Iron-Ham/pulse/internal/tui/styles"
)

// Model holds the dashboard state.
type Model struct {
	input  textinput.Model
	styles styles.Styles
	submit func(raw string) error

	snapshot aggregate.Snapshot
	status   StatusMsg
	width    int
	quitting bool
}

// NewModel creates a dashboard model. submit is called off the event loop
// for every entered search.
func NewModel(theme string, submit func(raw string) error) Model {
	ti := textinput.New()
	ti.Placeholder = "cats, ca*, 5, 2-8"
	ti.Prompt = "search> "
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 40

	s := styles.ForTheme(theme)
	ti.PromptStyle = s.Prompt

	return Model{
		input:  ti,
		styles: s,
		submit: submit,
	}
}

// Snapshot returns the last snapshot the model received.
func (m Model) Snapshot() aggregate.Snapshot { return m.snapshot }

// Status returns the current status line.
func (m Model) Status() StatusMsg { return m.status }

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeypress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(10, msg.Width-len(m.input.Prompt)-6)
		return m, nil

	case SnapshotMsg:
		m.snapshot = msg.Snapshot
		return m, nil

	case StatusMsg:
		m.status = msg
		return m, nil

	case submitDoneMsg:
		// Rejections arrive on the bus; only surface other failures here
		if msg.err != nil && !errors.IsUserFacing(msg.err) {
			m.status = StatusMsg{Kind: StatusError, Text: msg.err.Error()}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEnter:
		return m, m.submitCmd(m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitCmd runs the submission outside Update. Submitting publishes bus
// events that are forwarded back into the program, so it must not block
// the event loop.
func (m Model) submitCmd(raw string) tea.Cmd {
	if m.submit == nil {
		return nil
	}
	submit := m.submit
	return func() tea.Msg {
		return submitDoneMsg{err: submit(raw)}
	}
}
