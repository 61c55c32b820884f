package backdrop

import (
	"sync/atomic"

	"github.com/gogpu/gg"
)

// ColorSource supplies the ambient RGB color. Render queries it once per
// call; the alpha component is ignored.
type ColorSource interface {
	AmbientColor() gg.RGBA
}

// ThemeColor is a ColorSource the page can swap at any time, from any
// goroutine.
type ThemeColor struct {
	color atomic.Pointer[gg.RGBA]
}

func NewThemeColor(c gg.RGBA) *ThemeColor {
	t := &ThemeColor{}
	t.Set(c)
	return t
}

func (t *ThemeColor) Set(c gg.RGBA) {
	c.A = 1
	t.color.Store(&c)
}

func (t *ThemeColor) AmbientColor() gg.RGBA {
	if c := t.color.Load(); c != nil {
		return *c
	}
	return gg.RGB(1, 1, 1)
}

// withAlpha returns c with its alpha replaced by a, clamped to [0,1].
func withAlpha(c gg.RGBA, a float64) gg.RGBA {
	switch {
	case a < 0:
		a = 0
	case a > 1:
		a = 1
	}
	c.A = a
	return c
}
