package ui

import (
	"cellmapper/internal/logging"
	"cellmapper/internal/mapping"
	"cellmapper/internal/session"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Page identifies the visible screen.
type Page int

const (
	PageSetup Page = iota
	PageGrid
)

// Options configures the interactive app.
type Options struct {
	// Pack prefills the setup form.
	Pack mapping.PackConfig
	// AutoCreate skips the form when Pack is valid.
	AutoCreate   bool
	Styles       Styles
	CellWidth    int
	OutputHeight int
}

// Lines drawn by the app above the active page.
const appHeaderLines = 2

// App is the root bubbletea model.
type App struct {
	width  int
	height int

	sess  *session.Session
	page  Page
	setup SetupModel
	grid  GridModel

	styles   Styles
	quitting bool
}

// NewApp builds the interactive app around sess.
func NewApp(sess *session.Session, opts Options) App {
	a := App{
		sess:   sess,
		page:   PageSetup,
		setup:  NewSetupModel(opts.Styles, opts.Pack),
		grid:   NewGridModel(sess, opts.Styles, opts.CellWidth, opts.OutputHeight),
		styles: opts.Styles,
	}

	if opts.AutoCreate && opts.Pack.Validate() == nil {
		n := sess.ConfigurePack(opts.Pack)
		if n.IsError() {
			a.setup.SetNotice(&n)
		} else {
			a.grid.Reset(&n)
			a.page = PageGrid
		}
	}
	return a
}

// Init initializes the model.
func (a App) Init() tea.Cmd {
	return textinput.Blink
}

// Page returns the visible screen.
func (a App) Page() Page { return a.page }

// Session returns the session the app drives.
func (a App) Session() *session.Session { return a.sess }

// Setup returns the setup form model.
func (a App) Setup() SetupModel { return a.setup }

// Grid returns the grid page model.
func (a App) Grid() GridModel { return a.grid }

// Update handles messages.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		pageMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - appHeaderLines}
		a.setup, _ = a.setup.Update(pageMsg)
		a.grid, _ = a.grid.Update(pageMsg)
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			a.quitting = true
			return a, tea.Quit
		case "q":
			if a.page == PageGrid && !a.grid.GroupFocused() {
				a.quitting = true
				return a, tea.Quit
			}
		case "esc":
			if a.page == PageSetup && a.sess.Configured() {
				a.page = PageGrid
				return a, nil
			}
		}

	case tea.MouseMsg:
		if a.page != PageGrid {
			return a, nil
		}
		msg.Y -= appHeaderLines
		a.grid, cmd = a.grid.Update(msg)
		return a, cmd

	case CreateGridMsg:
		n := a.sess.Configure(msg.Ns, msg.Np, msg.Rows, msg.Cols)
		if n.IsError() {
			logging.UIDebug("create grid rejected: %v", n.Err)
			a.setup.SetNotice(&n)
			return a, nil
		}
		a.grid.Reset(&n)
		if a.width > 0 {
			a.grid.SetSize(a.width, a.height-appHeaderLines)
		}
		a.page = PageGrid
		return a, nil

	case BackToSetupMsg:
		a.page = PageSetup
		return a, a.setup.Reset()
	}

	switch a.page {
	case PageSetup:
		a.setup, cmd = a.setup.Update(msg)
	case PageGrid:
		a.grid, cmd = a.grid.Update(msg)
	}
	return a, cmd
}

// View renders the app.
func (a App) View() string {
	if a.quitting {
		return ""
	}

	header := a.styles.Header.Render("cellmap")
	if id := a.sess.ID(); len(id) >= 8 {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, a.styles.Muted.Render("  session "+id[:8]))
	}

	var body string
	switch a.page {
	case PageGrid:
		body = a.grid.View()
	default:
		body = a.setup.View()
	}

	return header + "\n\n" + body
}
