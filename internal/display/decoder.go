package display

import (
	"bufio"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"imgview/internal/errors"

	_ "github.com/gen2brain/avif"
	_ "github.com/gen2brain/jpegxl"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const layerMagic = "layer0"

// FileDecoder decodes displayables from the local filesystem.
type FileDecoder struct {
	maxDimension int
}

// DecoderOption configures a FileDecoder.
type DecoderOption func(*FileDecoder)

// WithMaxDimension downscales images whose width or height exceeds n.
// Zero disables scaling.
func WithMaxDimension(n int) DecoderOption {
	return func(d *FileDecoder) {
		if n >= 0 {
			d.maxDimension = n
		}
	}
}

func NewFileDecoder(opts ...DecoderOption) *FileDecoder {
	d := &FileDecoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode dispatches on the file extension.
func (d *FileDecoder) Decode(path string) (*Displayable, error) {
	switch filepath.Ext(path) {
	case ".txt":
		return d.decodeText(path)
	case ".layer":
		return d.decodeComposite(path)
	}

	img, format, err := decodeImage(path)
	if err != nil {
		return nil, err
	}
	return NewImage(d.scale(img), format), nil
}

func (d *FileDecoder) decodeText(path string) (*Displayable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewDecodeError("cannot read text", path, "text", errors.DecodeFailed, err)
	}
	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	return NewText(text), nil
}

func decodeImage(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", errors.NewDecodeError("cannot open image", path, "", errors.DecodeFailed, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", errors.NewDecodeError("unsupported format", path, "", errors.UnsupportedFormat, err)
		}
		return nil, "", errors.NewDecodeError("cannot decode image", path, format, errors.DecodeFailed, err)
	}
	return img, format, nil
}

// decodeComposite reads a layer script: the magic line followed by one image
// path per line, relative to the script. Layers are drawn over the first in
// order and must all share its size.
func (d *FileDecoder) decodeComposite(path string) (*Displayable, error) {
	layers, err := readLayerScript(path)
	if err != nil {
		return nil, err
	}

	var canvas *image.RGBA
	for i, layer := range layers {
		img, _, err := decodeImage(layer)
		if err != nil {
			return nil, errors.NewDecodeError("cannot decode layer", path, "layer", errors.DecodeFailed, err)
		}
		b := img.Bounds()
		if i == 0 {
			canvas = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
			draw.Draw(canvas, canvas.Bounds(), img, b.Min, draw.Src)
			continue
		}
		if b.Dx() != canvas.Bounds().Dx() || b.Dy() != canvas.Bounds().Dy() {
			return nil, errors.NewDecodeError("overlay size mismatched", path, "layer", errors.DecodeFailed,
				errors.Newf("%s is %dx%d, expected %dx%d", filepath.Base(layer), b.Dx(), b.Dy(), canvas.Bounds().Dx(), canvas.Bounds().Dy()))
		}
		draw.Draw(canvas, canvas.Bounds(), img, b.Min, draw.Over)
	}
	return NewComposite(d.scale(canvas), len(layers)), nil
}

func readLayerScript(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDecodeError("cannot open layer script", path, "layer", errors.DecodeFailed, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() || strings.TrimRight(scanner.Text(), "\r") != layerMagic {
		return nil, errors.NewDecodeError("unsupported layer script magic", path, "layer", errors.UnsupportedFormat, nil)
	}

	base := filepath.Dir(path)
	var layers []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		layers = append(layers, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewDecodeError("cannot read layer script", path, "layer", errors.DecodeFailed, err)
	}
	if len(layers) == 0 {
		return nil, errors.NewDecodeError("no layers", path, "layer", errors.DecodeFailed, nil)
	}
	return layers, nil
}

func (d *FileDecoder) scale(img image.Image) image.Image {
	if d.maxDimension <= 0 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= d.maxDimension && h <= d.maxDimension {
		return img
	}
	if w >= h {
		h = max(1, h*d.maxDimension/w)
		w = d.maxDimension
	} else {
		w = max(1, w*d.maxDimension/h)
		h = d.maxDimension
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
