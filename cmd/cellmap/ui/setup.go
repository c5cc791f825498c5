package ui

import (
	"strconv"
	"strings"

	"cellmapper/internal/mapping"
	"cellmapper/internal/session"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// CreateGridMsg asks the app to configure a new grid from the setup fields.
type CreateGridMsg struct {
	Ns, Np, Rows, Cols string
}

var setupLabels = []string{"Cells in series (Ns)", "Cells in parallel (Np)", "Rows", "Columns"}

// SetupModel is the dimension form shown before a grid exists.
type SetupModel struct {
	width  int
	inputs []textinput.Model
	focus  int
	notice *session.Notice
	styles Styles
}

// NewSetupModel creates the form, prefilled from pack where set.
func NewSetupModel(styles Styles, pack mapping.PackConfig) SetupModel {
	values := []int{pack.Ns, pack.Np, pack.Rows, pack.Cols}
	inputs := make([]textinput.Model, len(setupLabels))
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = "0"
		ti.CharLimit = 9
		ti.Width = 10
		ti.Prompt = "│ "
		ti.PromptStyle = styles.Prompt
		ti.TextStyle = styles.UserInput
		if values[i] > 0 {
			ti.SetValue(strconv.Itoa(values[i]))
			ti.CursorEnd()
		}
		inputs[i] = ti
	}
	inputs[0].Focus()

	return SetupModel{
		inputs: inputs,
		styles: styles,
	}
}

// Init initializes the model.
func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m SetupModel) Update(msg tea.Msg) (SetupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			return m, m.setFocus(m.focus + 1)
		case "shift+tab", "up":
			return m, m.setFocus(m.focus - 1)
		case "enter":
			v := m.Values()
			return m, func() tea.Msg {
				return CreateGridMsg{Ns: v[0], Np: v[1], Rows: v[2], Cols: v[3]}
			}
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *SetupModel) setFocus(i int) tea.Cmd {
	n := len(m.inputs)
	m.inputs[m.focus].Blur()
	m.focus = (i%n + n) % n
	return m.inputs[m.focus].Focus()
}

// Reset moves focus back to the first field and clears the notice.
func (m *SetupModel) Reset() tea.Cmd {
	m.notice = nil
	return m.setFocus(0)
}

// SetNotice shows n under the form. nil clears it.
func (m *SetupModel) SetNotice(n *session.Notice) {
	m.notice = n
}

// Notice returns the notice currently shown, if any.
func (m SetupModel) Notice() *session.Notice {
	return m.notice
}

// Focused returns the index of the focused field.
func (m SetupModel) Focused() int {
	return m.focus
}

// Values returns the raw text of the four fields: Ns, Np, rows, columns.
func (m SetupModel) Values() [4]string {
	var v [4]string
	for i := range m.inputs {
		v[i] = m.inputs[i].Value()
	}
	return v
}

// View renders the form.
func (m SetupModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Battery pack layout"))
	sb.WriteString("\n")

	for i, label := range setupLabels {
		style := m.styles.Muted
		if i == m.focus {
			style = m.styles.FocusedLabel
		}
		sb.WriteString(style.Render(label))
		sb.WriteString("\n")
		sb.WriteString(m.inputs[i].View())
		sb.WriteString("\n\n")
	}

	sb.WriteString(m.styles.Badge.Render("Create Grid"))
	sb.WriteString(" ")
	sb.WriteString(m.styles.Muted.Render("enter"))
	sb.WriteString("\n")

	if m.notice != nil {
		sb.WriteString("\n")
		sb.WriteString(renderNotice(m.styles, m.notice))
		sb.WriteString("\n")
	}

	return sb.String()
}

func renderNotice(s Styles, n *session.Notice) string {
	switch n.Level {
	case session.LevelError:
		return s.Error.Render(n.Title+": ") + s.Body.Render(n.Message)
	case session.LevelInfo:
		return s.Info.Render(n.Title+": ") + s.Body.Render(n.Message)
	}
	return s.Success.Render(n.Message)
}
