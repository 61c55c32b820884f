package backdrop

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

type EventKind uint8

const (
	EventResize EventKind = iota + 1
	EventMove
	EventClick
	EventPreset
)

func (k EventKind) String() string {
	switch k {
	case EventResize:
		return "resize"
	case EventMove:
		return "move"
	case EventClick:
		return "click"
	case EventPreset:
		return "preset"
	default:
		return fmt.Sprintf("event(%d)", uint8(k))
	}
}

// Event is one input signal. X/Y are used by move and click, Width/Height
// by resize, Config by preset.
type Event struct {
	Kind   EventKind
	X, Y   float64
	Width  int
	Height int
	Config *Config
}

// Handle applies ev to the engine.
func (e *Engine) Handle(ev Event) error {
	switch ev.Kind {
	case EventResize:
		return e.Resize(ev.Width, ev.Height)
	case EventMove:
		e.PointerMove(ev.X, ev.Y)
	case EventClick:
		e.Click(ev.X, ev.Y)
	case EventPreset:
		if ev.Config == nil {
			return fmt.Errorf("%w: preset event without config", ErrInvalidConfig)
		}
		return e.ApplyConfig(*ev.Config)
	default:
		return fmt.Errorf("unknown event kind %v", ev.Kind)
	}
	return nil
}

// Resize resizes the surface and regenerates the ambient lines for the new
// viewport. Particles are left alone; they wrap into the new bounds.
func (e *Engine) Resize(width, height int) error {
	if err := e.surface.Resize(width, height); err != nil {
		return fmt.Errorf("resize surface: %w", err)
	}
	e.viewport = Viewport{Width: float64(width), Height: float64(height)}
	e.regenerateAmbientLines()

	e.log.WithFields(logrus.Fields{
		"width":  width,
		"height": height,
	}).Debug("backdrop resized")
	return nil
}

// PointerMove records the pointer position and trails a line from it.
func (e *Engine) PointerMove(x, y float64) {
	e.pointer = Pointer{X: x, Y: y, Active: true}
	e.SpawnPointerLine()
}

func (e *Engine) Click(x, y float64) {
	e.SpawnClickBurst(x, y)
}
