package fields

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strings"
)

// Canvas is the drawing surface behind a signature field.
type Canvas interface {
	// Size is the backing resolution in pixels.
	Size() (width, height int)
	BeginStroke(x, y float64)
	ExtendStroke(x, y float64)
	EndStroke()
	Clear()
	HasNonBackgroundPixel() bool
	// Snapshot encodes the surface as a base64 PNG data URL.
	Snapshot() (string, error)
}

// Loader is implemented by canvases that can paint a previously captured
// snapshot back onto the surface.
type Loader interface {
	Load(dataURL string) error
}

type CanvasFactory func(width, height int) (Canvas, error)

var ErrCanvasUnavailable = errors.New("drawing surface unavailable")

const pngDataPrefix = "data:image/png;base64,"

var (
	canvasBackground = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	canvasInk        = color.RGBA{A: 255}
)

// RasterCanvas draws strokes onto an in-memory RGBA image with a white
// background and a square brush.
type RasterCanvas struct {
	img    *image.RGBA
	brush  int
	active bool
	lastX  int
	lastY  int
}

func NewRasterCanvas(width, height int) (Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrCanvasUnavailable, width, height)
	}
	c := &RasterCanvas{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		brush: 2,
	}
	c.Clear()
	return c, nil
}

func (c *RasterCanvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *RasterCanvas) BeginStroke(x, y float64) {
	px, py, ok := c.pixel(x, y)
	if !ok {
		return
	}
	c.active = true
	c.lastX, c.lastY = px, py
}

// ExtendStroke paints from the previous point; a point that lands on the
// same pixel paints nothing.
func (c *RasterCanvas) ExtendStroke(x, y float64) {
	if !c.active {
		return
	}
	nx, ny, ok := c.pixel(x, y)
	if !ok || (nx == c.lastX && ny == c.lastY) {
		return
	}
	c.line(c.lastX, c.lastY, nx, ny)
	c.lastX, c.lastY = nx, ny
}

func (c *RasterCanvas) EndStroke() {
	c.active = false
}

func (c *RasterCanvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{C: canvasBackground}, image.Point{}, draw.Src)
	c.active = false
}

func (c *RasterCanvas) HasNonBackgroundPixel() bool {
	p := c.img.Pix
	for i := 0; i+3 < len(p); i += 4 {
		if p[i] != canvasBackground.R || p[i+1] != canvasBackground.G ||
			p[i+2] != canvasBackground.B || p[i+3] != canvasBackground.A {
			return true
		}
	}
	return false
}

func (c *RasterCanvas) Snapshot() (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return "", fmt.Errorf("failed to encode signature: %w", err)
	}
	return pngDataPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (c *RasterCanvas) Load(dataURL string) error {
	if !strings.HasPrefix(dataURL, pngDataPrefix) {
		return fmt.Errorf("signature is not a PNG data URL")
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, pngDataPrefix))
	if err != nil {
		return fmt.Errorf("failed to decode signature: %w", err)
	}
	src, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to decode signature: %w", err)
	}
	c.Clear()
	draw.Draw(c.img, c.img.Bounds(), src, src.Bounds().Min, draw.Over)
	return nil
}

// line walks from (x0,y0) to (x1,y1) with Bresenham's algorithm.
func (c *RasterCanvas) line(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.dab(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (c *RasterCanvas) dab(x, y int) {
	for by := y - c.brush + 1; by <= y+c.brush-1; by++ {
		for bx := x - c.brush + 1; bx <= x+c.brush-1; bx++ {
			if image.Pt(bx, by).In(c.img.Bounds()) {
				c.img.SetRGBA(bx, by, canvasInk)
			}
		}
	}
}

// pixel rounds a point to the nearest pixel inside the image. Non-finite
// points have no pixel.
func (c *RasterCanvas) pixel(x, y float64) (int, int, bool) {
	if !finite(x) || !finite(y) {
		return 0, 0, false
	}
	b := c.img.Bounds()
	x = clampFloat(x, float64(b.Min.X), float64(b.Max.X-1))
	y = clampFloat(y, float64(b.Min.Y), float64(b.Max.Y-1))
	return int(math.Round(x)), int(math.Round(y)), true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
