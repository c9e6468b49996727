//go:build !nogui

package gui

import "fyne.io/fyne/v2"

const (
	moveStep = 60

	// A wheel notch is about 40 units of DY.
	scrollZoomRate = 0.00025
)

// drawState is the pan and zoom applied on top of the fitted image. scale is
// the growth beyond the fitted size, as a fraction of the natural size.
type drawState struct {
	offset fyne.Position
	scale  float32
}

func (d *drawState) reset() {
	*d = drawState{}
}

// move shifts the image one step for the h, j, k and l keys.
func (d *drawState) move(key string) {
	switch key {
	case "h":
		d.offset.X -= moveStep
	case "l":
		d.offset.X += moveStep
	case "k":
		d.offset.Y -= moveStep
	case "j":
		d.offset.Y += moveStep
	}
}

func (d *drawState) pan(dx, dy float32) {
	d.offset = d.offset.AddXY(dx, dy)
}

// fitRect centres a w x h image inside area, keeping its aspect ratio.
func fitRect(area fyne.Size, w, h float32) (fyne.Position, fyne.Size) {
	if w <= 0 || h <= 0 || area.Width <= 0 || area.Height <= 0 {
		return fyne.NewPos(0, 0), fyne.NewSize(0, 0)
	}
	s := min(area.Width/w, area.Height/h)
	size := fyne.NewSize(w*s, h*s)
	return fyne.NewPos((area.Width-size.Width)/2, (area.Height-size.Height)/2), size
}

// area returns where an image of the natural size is drawn inside win.
func (d drawState) area(win, natural fyne.Size) (fyne.Position, fyne.Size) {
	pos, size := fitRect(win, natural.Width, natural.Height)
	ex, ey := natural.Width*d.scale/2, natural.Height*d.scale/2
	return pos.AddXY(d.offset.X-ex, d.offset.Y-ey), fyne.NewSize(size.Width+2*ex, size.Height+2*ey)
}

// fit resets the position and scales the image so its width, or its height,
// fills win.
func (d *drawState) fit(width bool, win, natural fyne.Size) {
	d.reset()
	if natural.Width <= 0 || natural.Height <= 0 {
		return
	}
	_, size := fitRect(win, natural.Width, natural.Height)
	if width {
		d.scale = (win.Width - size.Width) / natural.Width
	} else {
		d.scale = (win.Height - size.Height) / natural.Height
	}
}

// zoom grows the image by value times its natural size while the point under
// origin stays where it is. Zooming that would collapse the image is ignored.
func (d *drawState) zoom(value float32, origin fyne.Position, win, natural fyne.Size) {
	pos, size := d.area(win, natural)
	dw, dh := natural.Width*value, natural.Height*value
	if size.Width <= 0 || size.Height <= 0 || size.Width+dw < 1 || size.Height+dh < 1 {
		return
	}
	cx, cy := pos.X+size.Width/2, pos.Y+size.Height/2
	d.offset.X += (cx - origin.X) / size.Width * dw
	d.offset.Y += (cy - origin.Y) / size.Height * dh
	d.scale += value
}
