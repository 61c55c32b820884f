package backdrop

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/gogpu/gg"
	"github.com/sirupsen/logrus"
)

var ErrNilSurface = errors.New("backdrop: nil drawing surface")

// Engine is one running background animation. Construct it with New and
// either call Update/Render yourself or hand it to Start.
type Engine struct {
	cfg     Config
	surface Surface
	color   ColorSource
	rng     *rand.Rand
	log     logrus.FieldLogger

	viewport  Viewport
	pointer   Pointer
	lines     []LineSegment
	particles []Particle
}

type Option func(*Engine)

// WithRand sets the random source used for every spawn.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithSeed seeds a private PCG source, making spawns reproducible.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// WithColor sets where Render reads the ambient color from.
func WithColor(src ColorSource) Option {
	return func(e *Engine) {
		if src != nil {
			e.color = src
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New builds an engine drawing on surface, with ambient lines and the
// particle pool already spawned. A nil or zero-sized surface is an error.
func New(surface Surface, cfg Config, opts ...Option) (*Engine, error) {
	if surface == nil {
		return nil, ErrNilSurface
	}
	w, h := surface.Width(), surface.Height()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrNilSurface, w, h)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	e := &Engine{
		cfg:      cfg,
		surface:  surface,
		color:    NewThemeColor(gg.RGB(1, 1, 1)),
		log:      quiet,
		viewport: Viewport{Width: float64(w), Height: float64(h)},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed := uint64(time.Now().UnixNano())
		e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}

	e.lines = make([]LineSegment, 0, cfg.MaxLines+BurstLineCount)
	e.particles = make([]Particle, 0, cfg.AmbientParticles+BurstParticleCount)
	e.SpawnAmbientLines(cfg.AmbientLines)
	e.SpawnAmbientParticles(cfg.AmbientParticles)

	e.log.WithFields(logrus.Fields{
		"width":     w,
		"height":    h,
		"lines":     cfg.AmbientLines,
		"particles": cfg.AmbientParticles,
	}).Debug("backdrop engine created")
	return e, nil
}

func (e *Engine) Config() Config     { return e.cfg }
func (e *Engine) Viewport() Viewport { return e.viewport }
func (e *Engine) Pointer() Pointer   { return e.pointer }
func (e *Engine) Surface() Surface   { return e.surface }

// Lines returns a copy of the live line segments.
func (e *Engine) Lines() []LineSegment {
	out := make([]LineSegment, len(e.lines))
	copy(out, e.lines)
	return out
}

// Particles returns a copy of the live particles.
func (e *Engine) Particles() []Particle {
	out := make([]Particle, len(e.particles))
	copy(out, e.particles)
	return out
}

func (e *Engine) Stats() Stats {
	var s Stats
	for i := range e.lines {
		switch e.lines[i].Origin {
		case OriginAmbient:
			s.AmbientLines++
		case OriginPointer:
			s.PointerLines++
		case OriginBurst:
			s.BurstLines++
		}
	}
	for i := range e.particles {
		if e.particles[i].Origin == OriginBurst {
			s.BurstParticles++
		} else {
			s.AmbientParticles++
		}
	}
	return s
}

// Step runs one update followed by one render.
func (e *Engine) Step() error {
	e.Update()
	return e.Render()
}

// ApplyConfig switches the engine to cfg. Ambient lines are regenerated when
// their count or speed changes; the particle pool is rebuilt only when its
// size changes.
func (e *Engine) ApplyConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	old := e.cfg
	e.cfg = cfg

	if cfg.AmbientLines != old.AmbientLines || cfg.SpeedScale != old.SpeedScale {
		e.regenerateAmbientLines()
	}
	if cfg.AmbientParticles != old.AmbientParticles {
		kept := e.particles[:0]
		for _, p := range e.particles {
			if p.Origin != OriginAmbient {
				kept = append(kept, p)
			}
		}
		e.particles = kept
		e.SpawnAmbientParticles(cfg.AmbientParticles)
	}

	e.log.WithFields(logrus.Fields{
		"lines":     cfg.AmbientLines,
		"max_lines": cfg.MaxLines,
		"particles": cfg.AmbientParticles,
	}).Debug("backdrop config applied")
	return nil
}

// regenerateAmbientLines drops every ambient line and spawns a fresh set.
// Pointer and burst lines are left to expire on their own.
func (e *Engine) regenerateAmbientLines() {
	kept := e.lines[:0]
	for _, l := range e.lines {
		if l.Origin != OriginAmbient {
			kept = append(kept, l)
		}
	}
	e.lines = kept
	e.SpawnAmbientLines(e.cfg.AmbientLines)
}
