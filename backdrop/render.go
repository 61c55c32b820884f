package backdrop

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"
)

// Surface is the drawing target of an engine. Canvas is the gg-backed
// implementation; anything that can stroke gradient lines and fill radial
// glows will do.
type Surface interface {
	Width() int
	Height() int
	Resize(width, height int) error
	Clear()
	// StrokeLine strokes a solid line.
	StrokeLine(x1, y1, x2, y2, width float64, c gg.RGBA) error
	// StrokeGradient strokes a line fading from c at (x1,y1) to transparent at (x2,y2).
	StrokeGradient(x1, y1, x2, y2, width float64, c gg.RGBA) error
	// FillGlow fills a disc fading from c at the center to transparent at radius.
	FillGlow(x, y, radius float64, c gg.RGBA) error
}

const (
	connectOpacity = 0.2
	connectWidth   = 0.5
)

func lineWidth(o Origin) float64 {
	switch o {
	case OriginBurst:
		return 2.5
	case OriginPointer:
		return 1.5
	default:
		return 1
	}
}

func glowRadius(p *Particle) float64 {
	if p.Origin == OriginBurst {
		return p.Radius * 4
	}
	return p.Radius * 3
}

// Render repaints the whole surface: particle edges first, then lines, then
// particles on top.
func (e *Engine) Render() error {
	col := e.color.AmbientColor()
	e.surface.Clear()

	if err := e.renderConnections(col); err != nil {
		return err
	}

	for i := range e.lines {
		l := &e.lines[i]
		if err := e.surface.StrokeGradient(l.X1, l.Y1, l.X2, l.Y2, lineWidth(l.Origin), withAlpha(col, l.Opacity)); err != nil {
			return fmt.Errorf("stroke line: %w", err)
		}
	}

	for i := range e.particles {
		p := &e.particles[i]
		if err := e.surface.FillGlow(p.X, p.Y, glowRadius(p), withAlpha(col, p.Opacity)); err != nil {
			return fmt.Errorf("fill particle: %w", err)
		}
	}
	return nil
}

// renderConnections draws an edge between every particle pair closer than
// ConnectDistance. Quadratic in the pool size, which Config caps.
func (e *Engine) renderConnections(col gg.RGBA) error {
	for i := 0; i < len(e.particles); i++ {
		a := &e.particles[i]
		for j := i + 1; j < len(e.particles); j++ {
			b := &e.particles[j]
			d := math.Hypot(a.X-b.X, a.Y-b.Y)
			if d >= ConnectDistance {
				continue
			}
			alpha := (1 - d/ConnectDistance) * connectOpacity
			if err := e.surface.StrokeLine(a.X, a.Y, b.X, b.Y, connectWidth, withAlpha(col, alpha)); err != nil {
				return fmt.Errorf("stroke connection: %w", err)
			}
		}
	}
	return nil
}
