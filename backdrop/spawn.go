package backdrop

import "math"

func (e *Engine) between(lo, hi float64) float64 {
	return lo + e.rng.Float64()*(hi-lo)
}

// SpawnAmbientLines appends n slow, long-lived lines at random positions.
func (e *Engine) SpawnAmbientLines(n int) {
	for i := 0; i < n; i++ {
		x := e.rng.Float64() * e.viewport.Width
		y := e.rng.Float64() * e.viewport.Height
		angle := e.rng.Float64() * 2 * math.Pi
		length := e.between(50, 150)
		e.lines = append(e.lines, LineSegment{
			X1:      x,
			Y1:      y,
			X2:      x + math.Cos(angle)*length,
			Y2:      y + math.Sin(angle)*length,
			Opacity: e.rng.Float64() * ambientLineOpacity,
			Speed:   e.between(0.1, 0.5) * e.cfg.SpeedScale,
			Angle:   angle,
			Life:    1,
			Decay:   e.between(0.001, 0.003),
			Origin:  OriginAmbient,
		})
	}
}

// SpawnAmbientParticles appends n ambient particles to the pool.
func (e *Engine) SpawnAmbientParticles(n int) {
	for i := 0; i < n; i++ {
		e.particles = append(e.particles, Particle{
			X:       e.rng.Float64() * e.viewport.Width,
			Y:       e.rng.Float64() * e.viewport.Height,
			VX:      e.between(-0.5, 0.5) * e.cfg.SpeedScale,
			VY:      e.between(-0.5, 0.5) * e.cfg.SpeedScale,
			Radius:  e.between(1, 3),
			Opacity: e.rng.Float64() * ambientParticleOpacity,
			Life:    1,
			Decay:   e.between(0.001, 0.004),
			Origin:  OriginAmbient,
		})
	}
}

// cappedLines counts the lines that share the MaxLines budget.
func (e *Engine) cappedLines() int {
	n := 0
	for i := range e.lines {
		if e.lines[i].Origin != OriginBurst {
			n++
		}
	}
	return n
}

// SpawnPointerLine appends one short line from the pointer outward. It
// reports false when ambient plus pointer lines already fill MaxLines.
func (e *Engine) SpawnPointerLine() bool {
	if e.cappedLines() >= e.cfg.MaxLines {
		return false
	}
	angle := e.rng.Float64() * 2 * math.Pi
	length := e.between(20, 60)
	x, y := e.pointer.X, e.pointer.Y
	e.lines = append(e.lines, LineSegment{
		X1:      x,
		Y1:      y,
		X2:      x + math.Cos(angle)*length,
		Y2:      y + math.Sin(angle)*length,
		Opacity: pointerLineOpacity,
		Speed:   e.between(0.5, 1.5),
		Angle:   angle,
		Life:    1,
		Decay:   e.between(0.01, 0.02),
		Origin:  OriginPointer,
	})
	return true
}

// SpawnClickBurst fans BurstLineCount lines evenly around (x, y) and scatters
// BurstParticleCount particles near it. Bursts ignore MaxLines.
func (e *Engine) SpawnClickBurst(x, y float64) {
	for i := 0; i < BurstLineCount; i++ {
		angle := float64(i) * 2 * math.Pi / BurstLineCount
		length := e.between(30, 50)
		e.lines = append(e.lines, LineSegment{
			X1:      x,
			Y1:      y,
			X2:      x + math.Cos(angle)*length,
			Y2:      y + math.Sin(angle)*length,
			Opacity: burstLineOpacity,
			Speed:   e.between(2, 4),
			Angle:   angle,
			Life:    1,
			Decay:   0.02,
			Origin:  OriginBurst,
		})
	}
	for i := 0; i < BurstParticleCount; i++ {
		e.particles = append(e.particles, Particle{
			X:       x + e.between(-10, 10),
			Y:       y + e.between(-10, 10),
			VX:      e.between(-2, 2),
			VY:      e.between(-2, 2),
			Radius:  e.between(1, 3),
			Opacity: burstParticleOpacity,
			Life:    1,
			Decay:   e.between(0.015, 0.03),
			Origin:  OriginBurst,
		})
	}
}
