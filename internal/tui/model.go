package tui

import (
	"fmt"
	"path/filepath"

	"imgview/internal/config"
	"imgview/internal/controller"
	"imgview/internal/display"
	"imgview/internal/errors"
	"imgview/internal/log"
	"imgview/internal/prefetch"
	"imgview/internal/tui/components"
	"imgview/internal/tui/messages"
	"imgview/internal/tui/styles"
	"imgview/internal/tui/views"
	"imgview/pkg/types"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// chrome is the number of lines used by the title, overlays and status bar.
const chrome = 4

type Model struct {
	ctrl  *controller.Controller
	keys  types.KeyMap
	theme styles.Theme

	help     help.Model
	viewport viewport.Model
	status   *components.StatusBar

	width    int
	height   int
	showHelp bool
	errMsg   string

	frame prefetch.Frame
	st    controller.Status
	body  string
}

// New creates the terminal viewer for ctrl.
func New(ctrl *controller.Controller, cfg *config.Config) *Model {
	theme := styles.NewTheme(cfg.Display.Theme)

	vp := viewport.New(80, 20)
	vp.KeyMap = viewport.KeyMap{
		Up:   key.NewBinding(key.WithKeys("k")),
		Down: key.NewBinding(key.WithKeys("j")),
	}

	m := &Model{
		ctrl:     ctrl,
		keys:     types.DefaultKeyMap(),
		theme:    theme,
		help:     help.New(),
		viewport: vp,
		status:   components.NewStatusBar(theme.Status),
		width:    80,
		height:   24,
	}
	m.refresh()
	return m
}

// Run starts the bubbletea program and blocks until the viewer quits.
func Run(ctrl *controller.Controller, cfg *config.Config) error {
	m := New(ctrl, cfg)
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("terminal viewer failed: %w", err)
	}
	if fm, ok := final.(*Model); ok {
		return fm.Err()
	}
	return nil
}

// Err returns why the session ended, if it ended abnormally.
func (m *Model) Err() error {
	return m.ctrl.Err()
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitForRedraw(m.ctrl), m.status.Tick())
}

// waitForRedraw turns the controller's redraw signal into a message.
func waitForRedraw(ctrl *controller.Controller) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctrl.Redraw():
			return messages.RedrawMsg{}
		case <-ctrl.Done():
			return messages.SessionEndedMsg{Err: ctrl.Err()}
		}
	}
}

// View implements tea.Model
func (m *Model) View() string {
	return views.RenderMainView(m)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case messages.RedrawMsg:
		m.refresh()
		return m, waitForRedraw(m.ctrl)

	case messages.SessionEndedMsg:
		if msg.Err != nil {
			log.LogWithError(msg.Err).Error("Viewer stopped")
		}
		return m, tea.Quit

	case messages.ErrorMsg:
		m.errMsg = msg.Err.Error()
		return m, nil
	}

	return m, m.status.Update(msg)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "?" {
		m.showHelp = !m.showHelp
		m.refresh()
		return m, nil
	}

	action := m.keys.Resolve(msg, m.st.PageSelect)
	// Text is scrolled with the move keys; images are always fitted here.
	if action == types.None || action.AdjustsDrawing() {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.refresh()
		return m, cmd
	}

	m.errMsg = ""
	err := m.ctrl.Do(action, msg.String())
	switch {
	case action == types.QuitApp:
		return m, tea.Quit
	case errors.Is(err, errors.ErrNavigationExhausted):
		return m, tea.Quit
	case err != nil && !errors.Is(err, errors.ErrControllerUnavailable):
		m.errMsg = err.Error()
	}
	m.refresh()
	return m, nil
}

// refresh pulls the current frame and status from the controller.
func (m *Model) refresh() {
	prev := m.frame.Path
	m.frame = m.ctrl.Frame()
	m.st = m.ctrl.Status()

	m.status.SetLoading(m.frame.Loading)
	m.status.SetText(m.frame.Path)
	m.help.Width = m.width

	cols, rows := m.width, m.height-chrome
	if m.showHelp {
		rows -= 4
	}
	rows = max(rows, 1)
	m.viewport.Width, m.viewport.Height = cols, rows

	m.body = m.render(m.frame.Shown, cols, rows, prev != m.frame.Path)
}

func (m *Model) render(d *display.Displayable, cols, rows int, moved bool) string {
	switch {
	case d == nil:
		return ""
	case d.HasPixels():
		return components.RenderImage(d.Image, cols, rows)
	case d.Kind == display.KindMessage:
		return m.theme.Error.Render(d.Text)
	default:
		m.viewport.SetContent(components.RenderText(d.Text, cols))
		if moved {
			m.viewport.GotoTop()
		}
		return m.viewport.View()
	}
}

// ModelReader implementation

func (m *Model) Title() string {
	if m.st.Path == "" {
		return "imgview"
	}
	return "imgview - " + filepath.Base(m.st.Path)
}

func (m *Model) Body() string       { return m.body }
func (m *Model) InfoLine() string   { return m.st.InfoLine }
func (m *Model) StatusLine() string { return m.status.View() }
func (m *Model) ErrorLine() string  { return m.errMsg }
func (m *Model) Theme() styles.Theme {
	return m.theme
}

func (m *Model) PageLine() string {
	if !m.st.PageSelect {
		return ""
	}
	return m.st.PageLine()
}

func (m *Model) HelpView() string {
	if m.showHelp {
		return m.help.FullHelpView(m.keys.FullHelp())
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}
