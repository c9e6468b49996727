//go:build !nogui

package gui

import (
	"image/color"
	"path/filepath"
	"sync"
	"sync/atomic"

	"imgview/internal/config"
	"imgview/internal/controller"
	"imgview/internal/display"
	"imgview/internal/errors"
	"imgview/internal/log"
	"imgview/pkg/types"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// App is the GUI viewer window
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	cfg        *config.Config
	ctrl       *controller.Controller
	keys       types.KeyMap

	// Drawn content; only one of image and text is visible at a time
	image   *canvas.Image
	surface *surface
	text    *widget.Label
	scroll  *container.Scroll
	loading *canvas.Text

	// Overlays
	infoText *canvas.Text
	pageText *canvas.Text
	// notice replaces the info line until the next key press
	notice atomic.Pointer[string]

	accentColor color.NRGBA
	bgColor     color.NRGBA

	stop     chan struct{}
	stopOnce sync.Once
}

// NewApp creates the viewer on top of fyneApp. A nil fyneApp creates a
// desktop application.
func NewApp(fyneApp fyne.App, cfg *config.Config, ctrl *controller.Controller) *App {
	if fyneApp == nil {
		fyneApp = app.NewWithID("io.github.imgview")
	}

	a := &App{
		fyneApp:     fyneApp,
		cfg:         cfg,
		ctrl:        ctrl,
		keys:        types.DefaultKeyMap(),
		accentColor: color.NRGBA{R: 255, G: 255, B: 255, A: 180},
		bgColor:     color.NRGBA{R: 0, G: 0, B: 0, A: 128},
		stop:        make(chan struct{}),
	}
	a.mainWindow = a.fyneApp.NewWindow("imgview")
	a.setupMainWindow()
	return a
}

// GetMainWindow returns the main window instance
func (a *App) GetMainWindow() fyne.Window {
	return a.mainWindow
}

// Run shows the window and blocks until it is closed or the session ends.
func (a *App) Run() {
	go a.redrawLoop()
	a.render()
	a.mainWindow.Show()
	a.fyneApp.Run()
	a.shutdown()
}

// ShowError writes err to the log and to the overlay.
func (a *App) ShowError(title string, err error) {
	log.LogWithError(err).Error(title)
	a.infoText.Text = title + ": " + err.Error()
	a.infoText.Refresh()
}

// ShowInfo shows message in the overlay until the next redraw.
func (a *App) ShowInfo(message string) {
	a.infoText.Text = message
	a.infoText.Refresh()
}

func (a *App) setupMainWindow() {
	a.image = canvas.NewImageFromImage(nil)
	a.image.ScaleMode = canvas.ImageScaleSmooth
	a.surface = newSurface(a.image, a.tapped)

	a.text = widget.NewLabel("")
	a.text.Wrapping = fyne.TextWrapWord
	a.scroll = container.NewVScroll(a.text)
	a.scroll.Hide()

	a.loading = canvas.NewText("loading...", a.accentColor)
	a.loading.TextSize = float32(a.cfg.Display.FontSize)
	a.loading.Alignment = fyne.TextAlignCenter
	a.loading.Hide()

	a.infoText = a.overlayText()
	a.pageText = a.overlayText()

	background := canvas.NewRectangle(color.Black)
	overlay := container.NewBorder(nil,
		container.NewVBox(
			container.NewStack(canvas.NewRectangle(a.bgColor), a.pageText),
			container.NewStack(canvas.NewRectangle(a.bgColor), a.infoText),
		),
		nil, nil)

	a.mainWindow.SetContent(container.NewStack(
		background,
		a.surface,
		a.scroll,
		container.NewCenter(a.loading),
		overlay,
	))
	a.mainWindow.Resize(fyne.NewSize(1024, 768))

	a.mainWindow.Canvas().SetOnTypedKey(a.handleKey)
	a.mainWindow.SetOnClosed(func() {
		if err := a.ctrl.Close(); err != nil {
			log.LogWithError(err).Warn("Failed to close viewer")
		}
	})
}

func (a *App) overlayText() *canvas.Text {
	t := canvas.NewText("", a.accentColor)
	t.TextSize = float32(a.cfg.Display.FontSize)
	t.TextStyle.Monospace = true
	return t
}

// handleKey resolves a key press and applies it.
func (a *App) handleKey(ke *fyne.KeyEvent) {
	name, ok := keyName(ke.Name)
	if !ok {
		return
	}
	a.notice.Store(nil)
	action := a.keys.Resolve(types.Key(name), a.ctrl.Status().PageSelect)
	switch {
	case action == types.None:
		return
	case action.AdjustsDrawing():
		a.surface.apply(action, name)
		return
	}
	if err := a.ctrl.Do(action, name); err != nil {
		if errors.IsInvalidInputError(err) {
			msg := err.Error()
			a.notice.Store(&msg)
			a.ShowInfo(msg)
			return
		}
		log.LogWithError(err).Debug("Action rejected")
	}
}

// tapped turns a click without movement into the next page.
func (a *App) tapped() {
	if err := a.ctrl.Do(types.NextPage, ""); err != nil {
		log.LogWithError(err).Debug("Action rejected")
	}
}

// redrawLoop repaints once per pending redraw request and quits the
// application when the session ends.
func (a *App) redrawLoop() {
	for {
		select {
		case <-a.ctrl.Redraw():
			a.render()
		case <-a.ctrl.Done():
			if err := a.ctrl.Err(); err != nil {
				log.LogWithError(err).Error("Viewer stopped")
			}
			a.fyneApp.Quit()
			return
		case <-a.stop:
			return
		}
	}
}

func (a *App) shutdown() {
	a.stopOnce.Do(func() { close(a.stop) })
}

// render copies the controller state into the widgets.
func (a *App) render() {
	frame := a.ctrl.Frame()
	status := a.ctrl.Status()

	if frame.Path != "" {
		a.mainWindow.SetTitle("imgview - " + filepath.Base(frame.Path))
	}

	a.show(frame.Shown)
	if frame.Loading {
		a.loading.Show()
	} else {
		a.loading.Hide()
	}

	a.infoText.Text = status.InfoLine
	if n := a.notice.Load(); n != nil {
		a.infoText.Text = *n
	}
	a.infoText.Refresh()
	if status.PageSelect {
		a.pageText.Text = status.PageLine()
	} else {
		a.pageText.Text = ""
	}
	a.pageText.Refresh()
}

func (a *App) show(d *display.Displayable) {
	switch {
	case d == nil:
		a.image.Image = nil
		a.surface.setNatural(0, 0)
		a.scroll.Hide()
	case d.HasPixels():
		a.image.Image = d.Image
		a.surface.setNatural(d.NaturalSize())
		a.image.Show()
		a.scroll.Hide()
	default:
		a.image.Hide()
		a.surface.setNatural(0, 0)
		a.text.SetText(d.Text)
		a.scroll.Show()
	}
}
