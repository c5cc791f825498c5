package ui

import (
	"fmt"
	"strconv"
	"strings"

	"cellmapper/internal/logging"
	"cellmapper/internal/session"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

// BackToSetupMsg asks the app to show the setup form again.
type BackToSetupMsg struct{}

// Rows of the grid page drawn above the grid viewport.
const gridHeaderLines = 1

// Lines reserved below the grid: divider, group field, output label, notice, help.
const gridFooterLines = 6

// GridModel is the clickable cell grid with the Parallel Group field and the
// array output.
type GridModel struct {
	width  int
	height int

	sess      *session.Session
	cellWidth int
	cursorRow int
	cursorCol int

	grid   viewport.Model
	output viewport.Model
	group  textinput.Model

	groupFocused bool
	showHelp     bool
	showTable    bool
	notice       *session.Notice
	status       string

	styles Styles
}

// NewGridModel creates the grid page for sess.
func NewGridModel(sess *session.Session, styles Styles, cellWidth, outputHeight int) GridModel {
	if cellWidth < 3 {
		cellWidth = 3
	}
	if outputHeight < 1 {
		outputHeight = 1
	}

	gi := textinput.New()
	gi.Prompt = "Parallel Group: "
	gi.CharLimit = 12
	gi.Width = 12
	gi.PromptStyle = styles.Muted
	gi.TextStyle = styles.UserInput
	gi.SetValue(sess.ParallelGroup())
	gi.CursorEnd()

	m := GridModel{
		sess:      sess,
		cellWidth: cellWidth,
		grid:      viewport.New(80, 10),
		output:    viewport.New(80, outputHeight),
		group:     gi,
		styles:    styles,
	}
	m.refresh()
	return m
}

// Init initializes the model.
func (m GridModel) Init() tea.Cmd {
	return nil
}

// Reset puts the cursor at the origin and shows n. Call after reconfiguring.
func (m *GridModel) Reset(n *session.Notice) {
	m.cursorRow, m.cursorCol = 0, 0
	m.notice = n
	m.status = ""
	m.grid.GotoTop()
	m.refresh()
}

// SetSize lays the page out for a terminal of the given size.
func (m *GridModel) SetSize(width, height int) {
	m.width = width
	m.height = height

	gridHeight := height - gridHeaderLines - gridFooterLines - m.output.Height
	if rows := m.sess.Pack().Rows; rows > 0 && gridHeight > rows {
		gridHeight = rows
	}
	if gridHeight < 1 {
		gridHeight = 1
	}
	m.grid.Width = width
	m.grid.Height = gridHeight
	m.output.Width = width
	m.refresh()
}

// Update handles messages.
func (m GridModel) Update(msg tea.Msg) (GridModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.groupFocused {
			return m.updateGroupField(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m GridModel) updateGroupField(msg tea.KeyMsg) (GridModel, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", "tab":
		m.groupFocused = false
		m.group.Blur()
		m.sess.SetParallelGroup(m.group.Value())
		return m, nil
	}

	var cmd tea.Cmd
	m.group, cmd = m.group.Update(msg)
	m.sess.SetParallelGroup(m.group.Value())
	return m, cmd
}

func (m GridModel) handleKey(msg tea.KeyMsg) (GridModel, tea.Cmd) {
	pack := m.sess.Pack()

	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1, 0)
	case "down", "j":
		m.moveCursor(1, 0)
	case "left", "h":
		m.moveCursor(0, -1)
	case "right", "l":
		m.moveCursor(0, 1)
	case "home", "g":
		m.cursorRow, m.cursorCol = 0, 0
		m.refresh()
	case "end", "G":
		m.cursorRow, m.cursorCol = pack.Rows-1, pack.Cols-1
		m.refresh()
	case "enter", " ":
		m.click(m.cursorRow, m.cursorCol)
	case "p", "tab":
		m.groupFocused = true
		return m, m.group.Focus()
	case "y", "c":
		m.copyOutput()
	case "n":
		return m, func() tea.Msg { return BackToSetupMsg{} }
	case "t":
		m.showTable = !m.showTable
	case "?":
		m.showHelp = !m.showHelp
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m GridModel) handleMouse(msg tea.MouseMsg) (GridModel, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonLeft:
		if row, col, ok := m.cellAt(msg.X, msg.Y); ok {
			m.cursorRow, m.cursorCol = row, col
			m.click(row, col)
		}
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		return m, cmd
	}
	return m, nil
}

// cellAt maps a position within the page view to a grid cell.
func (m GridModel) cellAt(x, y int) (int, int, bool) {
	line := y - gridHeaderLines
	if line < 0 || line >= m.grid.Height || x < 0 {
		return 0, 0, false
	}
	row := line + m.grid.YOffset
	col := x / m.cellWidth
	pack := m.sess.Pack()
	if row >= pack.Rows || col >= pack.Cols {
		return 0, 0, false
	}
	return row, col, true
}

func (m *GridModel) moveCursor(dr, dc int) {
	pack := m.sess.Pack()
	m.cursorRow = clamp(m.cursorRow+dr, 0, pack.Rows-1)
	m.cursorCol = clamp(m.cursorCol+dc, 0, pack.Cols-1)

	if m.cursorRow < m.grid.YOffset {
		m.grid.SetYOffset(m.cursorRow)
	} else if m.cursorRow >= m.grid.YOffset+m.grid.Height {
		m.grid.SetYOffset(m.cursorRow - m.grid.Height + 1)
	}
	m.refresh()
}

func (m *GridModel) click(row, col int) {
	n := m.sess.Click(row, col)
	m.notice = &n
	m.status = ""
	logging.UIDebug("click (%d,%d) -> %s %q", row, col, n.Level, n.Message)
	m.refresh()
}

func (m *GridModel) copyOutput() {
	if err := clipboardWriteAll(m.sess.Output()); err != nil {
		m.status = m.styles.Error.Render("Clipboard unavailable: " + err.Error())
		return
	}
	m.status = m.styles.Success.Render("Copied output to clipboard")
}

func (m *GridModel) refresh() {
	offset := m.grid.YOffset
	m.grid.SetContent(m.renderCells())
	m.grid.SetYOffset(offset)

	out := m.sess.Output()
	if m.output.Width > 0 {
		out = lipgloss.NewStyle().Width(m.output.Width).Render(out)
	}
	m.output.SetContent(out)
}

func (m GridModel) renderCells() string {
	pack := m.sess.Pack()
	if pack.Rows <= 0 || pack.Cols <= 0 {
		return m.styles.Muted.Render("No grid")
	}

	lines := make([]string, pack.Rows)
	var row strings.Builder
	for r := 0; r < pack.Rows; r++ {
		row.Reset()
		for c := 0; c < pack.Cols; c++ {
			row.WriteString(m.renderCell(r, c))
		}
		lines[r] = row.String()
	}
	return strings.Join(lines, "\n")
}

func (m GridModel) renderCell(r, c int) string {
	label := "+"
	style := m.styles.CellEmpty
	if e, ok := m.sess.Cell(r, c); ok {
		label = strconv.Itoa(e.Series)
		style = m.styles.CellFresh
		if m.sess.Mark(r, c) == session.MarkRevisited {
			style = m.styles.CellRevisited
		}
	}
	if r == m.cursorRow && c == m.cursorCol && !m.groupFocused {
		style = style.Inherit(m.styles.Cursor)
	}
	return style.Width(m.cellWidth).Render(label)
}

// Cursor returns the highlighted cell.
func (m GridModel) Cursor() (int, int) {
	return m.cursorRow, m.cursorCol
}

// TableShown reports whether the mapped-cells table is visible.
func (m GridModel) TableShown() bool {
	return m.showTable
}

// GroupFocused reports whether the Parallel Group field has focus.
func (m GridModel) GroupFocused() bool {
	return m.groupFocused
}

// Notice returns the outcome of the last click, if any.
func (m GridModel) Notice() *session.Notice {
	return m.notice
}

// Status returns the transient status line (clipboard feedback).
func (m GridModel) Status() string {
	return m.status
}

// View renders the page.
func (m GridModel) View() string {
	var sb strings.Builder

	placed, capacity := m.sess.Progress()
	pack := m.sess.Pack()
	sb.WriteString(m.styles.Bold.Render(fmt.Sprintf("%ds%dp", pack.Ns, pack.Np)))
	sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("  %d/%d placed  row %d col %d", placed, capacity, m.cursorRow, m.cursorCol)))
	sb.WriteString("\n")

	sb.WriteString(m.grid.View())
	sb.WriteString("\n")
	sb.WriteString(m.styles.RenderDivider(m.width))
	sb.WriteString("\n")

	sb.WriteString(m.group.View())
	sb.WriteString("\n")

	sb.WriteString(m.styles.Muted.Render("Output"))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Output.Render(m.output.View()))
	sb.WriteString("\n")

	if m.showTable {
		if table := EntriesTable(m.sess.Entries()).View(m.styles); table != "" {
			sb.WriteString(table)
		} else {
			sb.WriteString(m.styles.Muted.Render("No cells mapped yet"))
			sb.WriteString("\n")
		}
	}

	switch {
	case m.status != "":
		sb.WriteString(m.status)
	case m.notice != nil:
		sb.WriteString(renderNotice(m.styles, m.notice))
	}
	sb.WriteString("\n")

	if m.showHelp {
		sb.WriteString(m.styles.Footer.Render(gridHelp))
	} else {
		sb.WriteString(m.styles.Footer.Render("? help • q quit"))
	}

	return sb.String()
}

const gridHelp = "←↑↓→/hjkl move • enter/space assign • p group • t table • y copy • n new grid • q quit"

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
