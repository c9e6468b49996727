//go:build !nogui

package gui

import (
	"sync"

	"imgview/pkg/types"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// surface draws the current image at its drawState. Dragging pans, the wheel
// zooms around the pointer and a tap without movement calls onTap.
type surface struct {
	widget.BaseWidget

	image *canvas.Image
	onTap func()

	mu      sync.Mutex
	draw    drawState
	natural fyne.Size
}

func newSurface(img *canvas.Image, onTap func()) *surface {
	img.FillMode = canvas.ImageFillStretch
	s := &surface{image: img, onTap: onTap}
	s.ExtendBaseWidget(s)
	return s
}

// setNatural records the pixel size of the shown image. Zero means nothing
// is drawn.
func (s *surface) setNatural(w, h int) {
	s.mu.Lock()
	s.natural = fyne.NewSize(float32(w), float32(h))
	s.mu.Unlock()
	s.Refresh()
}

// apply changes the drawing state for a key action.
func (s *surface) apply(action types.Action, key string) {
	size := s.Size()
	s.mu.Lock()
	switch action {
	case types.MoveDrawPos:
		s.draw.move(key)
	case types.ResetDrawPos:
		s.draw.reset()
	case types.FitWidth, types.FitHeight:
		s.draw.fit(action == types.FitWidth, size, s.natural)
	}
	s.mu.Unlock()
	s.Refresh()
}

func (s *surface) state() drawState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draw
}

// Resize resets the drawing state when the window size changes.
func (s *surface) Resize(size fyne.Size) {
	if size != s.Size() {
		s.mu.Lock()
		s.draw.reset()
		s.mu.Unlock()
	}
	s.BaseWidget.Resize(size)
}

func (s *surface) Tapped(*fyne.PointEvent) {
	if s.onTap != nil {
		s.onTap()
	}
}

func (s *surface) Dragged(e *fyne.DragEvent) {
	s.mu.Lock()
	s.draw.pan(e.Dragged.DX, e.Dragged.DY)
	s.mu.Unlock()
	s.Refresh()
}

func (s *surface) DragEnd() {}

func (s *surface) Scrolled(e *fyne.ScrollEvent) {
	size := s.Size()
	s.mu.Lock()
	if s.natural.Width > 0 && s.natural.Height > 0 {
		s.draw.zoom(e.Scrolled.DY*scrollZoomRate, e.Position, size, s.natural)
	}
	s.mu.Unlock()
	s.Refresh()
}

func (s *surface) CreateRenderer() fyne.WidgetRenderer {
	return &surfaceRenderer{s: s}
}

var (
	_ fyne.Tappable   = (*surface)(nil)
	_ fyne.Draggable  = (*surface)(nil)
	_ fyne.Scrollable = (*surface)(nil)
)

type surfaceRenderer struct {
	s *surface
}

func (r *surfaceRenderer) Layout(size fyne.Size) {
	r.s.mu.Lock()
	draw, natural := r.s.draw, r.s.natural
	r.s.mu.Unlock()

	if natural.Width <= 0 || natural.Height <= 0 {
		r.s.image.Move(fyne.NewPos(0, 0))
		r.s.image.Resize(size)
		return
	}
	pos, area := draw.area(size, natural)
	r.s.image.Move(pos)
	r.s.image.Resize(area)
}

func (r *surfaceRenderer) MinSize() fyne.Size {
	return fyne.NewSize(0, 0)
}

func (r *surfaceRenderer) Refresh() {
	r.Layout(r.s.Size())
	canvas.Refresh(r.s.image)
}

func (r *surfaceRenderer) Objects() []fyne.CanvasObject { return []fyne.CanvasObject{r.s.image} }
func (r *surfaceRenderer) Destroy()                     {}
