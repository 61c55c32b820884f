package backdrop

import (
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"
)

// Canvas is a Surface drawn in software by gg.
type Canvas struct {
	dc *gg.Context
}

// NewCanvas allocates a width×height canvas.
func NewCanvas(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	return &Canvas{dc: gg.NewContext(width, height)}, nil
}

func (c *Canvas) Width() int  { return c.dc.Width() }
func (c *Canvas) Height() int { return c.dc.Height() }

func (c *Canvas) Resize(width, height int) error {
	return c.dc.Resize(width, height)
}

func (c *Canvas) Clear() {
	c.dc.Clear()
}

func (c *Canvas) StrokeLine(x1, y1, x2, y2, width float64, col gg.RGBA) error {
	c.dc.SetStrokeBrush(gg.Solid(col))
	c.dc.SetLineWidth(width)
	c.dc.DrawLine(x1, y1, x2, y2)
	return c.dc.Stroke()
}

func (c *Canvas) StrokeGradient(x1, y1, x2, y2, width float64, col gg.RGBA) error {
	grad := gg.NewLinearGradientBrush(x1, y1, x2, y2).
		AddColorStop(0, col).
		AddColorStop(1, withAlpha(col, 0))
	c.dc.SetStrokeBrush(grad)
	c.dc.SetLineWidth(width)
	c.dc.DrawLine(x1, y1, x2, y2)
	return c.dc.Stroke()
}

func (c *Canvas) FillGlow(x, y, radius float64, col gg.RGBA) error {
	if radius <= 0 {
		return nil
	}
	grad := gg.NewRadialGradientBrush(x, y, 0, radius).
		AddColorStop(0, col).
		AddColorStop(1, withAlpha(col, 0))
	c.dc.SetFillBrush(grad)
	c.dc.DrawCircle(x, y, radius)
	return c.dc.Fill()
}

// Image returns the current pixels.
func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

// EncodePNG writes the current frame as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return c.dc.EncodePNG(w)
}

// Close releases the underlying context.
func (c *Canvas) Close() error {
	return c.dc.Close()
}
