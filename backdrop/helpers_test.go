package backdrop

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/require"
)

// drawCall records one Surface call.
type drawCall struct {
	op    string
	x, y  float64
	width float64
	color gg.RGBA
}

type recordingSurface struct {
	mu      sync.Mutex
	w, h    int
	calls   []drawCall
	failOn  string
	resizes int
}

func newRecordingSurface(w, h int) *recordingSurface {
	return &recordingSurface{w: w, h: h}
}

func (s *recordingSurface) Width() int  { return s.w }
func (s *recordingSurface) Height() int { return s.h }

func (s *recordingSurface) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return errors.New("bad size")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w, s.h = w, h
	s.resizes++
	return nil
}

func (s *recordingSurface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, drawCall{op: "clear"})
}

func (s *recordingSurface) record(op string, x, y, width float64, c gg.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, drawCall{op: op, x: x, y: y, width: width, color: c})
	if s.failOn == op {
		return errors.New("draw failed")
	}
	return nil
}

func (s *recordingSurface) StrokeLine(x1, y1, _, _, width float64, c gg.RGBA) error {
	return s.record("edge", x1, y1, width, c)
}

func (s *recordingSurface) StrokeGradient(x1, y1, _, _, width float64, c gg.RGBA) error {
	return s.record("line", x1, y1, width, c)
}

func (s *recordingSurface) FillGlow(x, y, _ float64, c gg.RGBA) error {
	return s.record("particle", x, y, 0, c)
}

func (s *recordingSurface) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *recordingSurface) ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	for i, c := range s.calls {
		out[i] = c.op
	}
	return out
}

// manualSource is a FrameSource the test ticks by hand.
type manualSource struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func newManualSource() *manualSource {
	return &manualSource{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (m *manualSource) C() <-chan time.Time { return m.ch }

func (m *manualSource) Stop() {
	m.once.Do(func() { close(m.stopped) })
}

// tick delivers one frame and reports whether the driver took it.
func (m *manualSource) tick() bool {
	select {
	case m.ch <- time.Now():
		return true
	case <-time.After(50 * time.Millisecond):
		return false
	}
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *recordingSurface) {
	t.Helper()
	surface := newRecordingSurface(800, 600)
	e, err := New(surface, cfg, WithSeed(42))
	require.NoError(t, err)
	return e, surface
}

// emptyConfig has no ambient entities, for tests that place their own.
func emptyConfig() Config {
	cfg := DefaultConfig()
	cfg.AmbientLines = 0
	cfg.AmbientParticles = 0
	return cfg
}
