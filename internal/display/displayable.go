// Package display turns files into things a front-end can show.
package display

import (
	"image"
)

// Kind tells a front-end how to present a Displayable.
type Kind int

const (
	KindImage Kind = iota
	KindText
	KindComposite
	KindMessage
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindText:
		return "text"
	case KindComposite:
		return "composite"
	case KindMessage:
		return "message"
	}
	return "unknown"
}

// Displayable is a decoded entry. Image and Composite carry pixels, Text and
// Message carry a string.
type Displayable struct {
	Kind   Kind
	Image  image.Image
	Text   string
	Format string
	Layers int
}

func NewImage(img image.Image, format string) *Displayable {
	return &Displayable{Kind: KindImage, Image: img, Format: format}
}

func NewText(text string) *Displayable {
	return &Displayable{Kind: KindText, Text: text, Format: "text"}
}

func NewComposite(img image.Image, layers int) *Displayable {
	return &Displayable{Kind: KindComposite, Image: img, Format: "layer", Layers: layers}
}

// NewMessage wraps a placeholder shown instead of an entry, such as a decode
// failure or "loading...".
func NewMessage(msg string) *Displayable {
	return &Displayable{Kind: KindMessage, Text: msg}
}

// HasPixels reports whether the displayable is drawn as an image.
func (d *Displayable) HasPixels() bool {
	return d != nil && d.Image != nil && (d.Kind == KindImage || d.Kind == KindComposite)
}

// NaturalSize returns the pixel size, or zero for text.
func (d *Displayable) NaturalSize() (int, int) {
	if !d.HasPixels() {
		return 0, 0
	}
	b := d.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Decoder produces a Displayable from a path. Implementations must be safe
// for concurrent use.
type Decoder interface {
	Decode(path string) (*Displayable, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(path string) (*Displayable, error)

func (f DecoderFunc) Decode(path string) (*Displayable, error) {
	return f(path)
}
