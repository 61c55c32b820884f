package backdrop

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NilSurface(t *testing.T) {
	_, err := New(nil, DefaultConfig())
	require.ErrorIs(t, err, ErrNilSurface)

	_, err = New(newRecordingSurface(0, 10), DefaultConfig())
	require.ErrorIs(t, err, ErrNilSurface)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLines = cfg.AmbientLines - 1
	_, err := New(newRecordingSurface(100, 100), cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNew_SpawnsAmbientEntities(t *testing.T) {
	cfg := DefaultConfig()
	e, _ := newTestEngine(t, cfg)

	stats := e.Stats()
	assert.Equal(t, cfg.AmbientLines, stats.AmbientLines)
	assert.Equal(t, cfg.AmbientParticles, stats.AmbientParticles)
	assert.Zero(t, stats.PointerLines)
	assert.Zero(t, stats.BurstLines)
	assert.Equal(t, Viewport{Width: 800, Height: 600}, e.Viewport())

	for _, l := range e.Lines() {
		assert.Equal(t, OriginAmbient, l.Origin)
		assert.Equal(t, 1.0, l.Life)
		assert.GreaterOrEqual(t, l.X1, 0.0)
		assert.Less(t, l.X1, 800.0)
	}
}

func TestSpawnClickBurst_FixedFanOut(t *testing.T) {
	for _, pt := range [][2]float64{{0, 0}, {400, 300}, {-50, 1200}} {
		e, _ := newTestEngine(t, emptyConfig())
		e.SpawnClickBurst(pt[0], pt[1])

		lines := e.Lines()
		particles := e.Particles()
		require.Len(t, lines, BurstLineCount)
		require.Len(t, particles, BurstParticleCount)

		for i, l := range lines {
			assert.Equal(t, OriginBurst, l.Origin)
			assert.Equal(t, pt[0], l.X1)
			assert.Equal(t, pt[1], l.Y1)
			assert.InDelta(t, float64(i)*2*math.Pi/BurstLineCount, l.Angle, 1e-12)
		}
		for _, p := range particles {
			assert.Equal(t, OriginBurst, p.Origin)
			assert.InDelta(t, pt[0], p.X, 10)
			assert.InDelta(t, pt[1], p.Y, 10)
		}
	}
}

func TestSpawnClickBurst_BypassesCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AmbientLines = 5
	cfg.MaxLines = 5
	e, _ := newTestEngine(t, cfg)

	assert.False(t, e.SpawnPointerLine())
	e.SpawnClickBurst(10, 10)
	assert.Len(t, e.Lines(), 5+BurstLineCount)
}

func TestSpawnPointerLine_RespectsCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AmbientLines = 10
	cfg.MaxLines = 25
	e, _ := newTestEngine(t, cfg)

	for i := 0; i < 500; i++ {
		e.PointerMove(float64(i%800), float64(i%600))
		stats := e.Stats()
		require.LessOrEqual(t, stats.AmbientLines+stats.PointerLines, cfg.MaxLines)
	}
	assert.Equal(t, cfg.MaxLines-cfg.AmbientLines, e.Stats().PointerLines)
}

func TestSpawnPointerLine_StartsAtPointer(t *testing.T) {
	e, _ := newTestEngine(t, emptyConfig())
	e.PointerMove(120, 80)

	lines := e.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, OriginPointer, lines[0].Origin)
	assert.Equal(t, 120.0, lines[0].X1)
	assert.Equal(t, 80.0, lines[0].Y1)
	assert.Equal(t, Pointer{X: 120, Y: 80, Active: true}, e.Pointer())
}

func TestResize_RegeneratesAmbientLines(t *testing.T) {
	cfg := DefaultConfig()
	e, surface := newTestEngine(t, cfg)

	e.PointerMove(100, 100)
	e.SpawnClickBurst(200, 200)
	for i := 0; i < 50; i++ {
		e.Update()
	}
	particlesBefore := len(e.Particles())
	ambientParticles := e.Stats().AmbientParticles

	require.NoError(t, e.Resize(1024, 768))

	stats := e.Stats()
	assert.Equal(t, cfg.AmbientLines, stats.AmbientLines)
	assert.Equal(t, ambientParticles, stats.AmbientParticles)
	assert.Len(t, e.Particles(), particlesBefore)
	assert.Equal(t, Viewport{Width: 1024, Height: 768}, e.Viewport())
	assert.Equal(t, 1, surface.resizes)
}

func TestResize_InvalidSize(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	err := e.Resize(0, 0)
	require.Error(t, err)
	assert.Equal(t, Viewport{Width: 800, Height: 600}, e.Viewport())
}

func TestApplyConfig(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	e.SpawnClickBurst(50, 50)

	dense := DefaultPresets()["dense"]
	require.NoError(t, e.ApplyConfig(dense))

	stats := e.Stats()
	assert.Equal(t, dense.AmbientLines, stats.AmbientLines)
	assert.Equal(t, dense.AmbientParticles, stats.AmbientParticles)
	assert.Equal(t, BurstLineCount, stats.BurstLines)
	assert.Equal(t, BurstParticleCount, stats.BurstParticles)
	assert.Equal(t, dense, e.Config())

	bad := dense
	bad.SpeedScale = 0
	require.ErrorIs(t, e.ApplyConfig(bad), ErrInvalidConfig)
	assert.Equal(t, dense, e.Config())
}

func TestHandle_Events(t *testing.T) {
	e, _ := newTestEngine(t, emptyConfig())

	require.NoError(t, e.Handle(Event{Kind: EventMove, X: 5, Y: 6}))
	require.NoError(t, e.Handle(Event{Kind: EventClick, X: 50, Y: 60}))
	require.NoError(t, e.Handle(Event{Kind: EventResize, Width: 320, Height: 240}))

	stats := e.Stats()
	assert.Equal(t, 1, stats.PointerLines)
	assert.Equal(t, BurstLineCount, stats.BurstLines)
	assert.Equal(t, Viewport{Width: 320, Height: 240}, e.Viewport())

	calm := DefaultPresets()["calm"]
	require.NoError(t, e.Handle(Event{Kind: EventPreset, Config: &calm}))
	assert.Equal(t, calm.AmbientLines, e.Stats().AmbientLines)

	require.ErrorIs(t, e.Handle(Event{Kind: EventPreset}), ErrInvalidConfig)
	require.Error(t, e.Handle(Event{Kind: EventKind(99)}))
}

func TestWithSeed_Deterministic(t *testing.T) {
	a, _ := newTestEngine(t, DefaultConfig())
	b, _ := newTestEngine(t, DefaultConfig())
	assert.Equal(t, a.Lines(), b.Lines())
	assert.Equal(t, a.Particles(), b.Particles())
}
