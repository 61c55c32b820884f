package backdrop

import "math"

func lineBaseOpacity(o Origin) float64 {
	switch o {
	case OriginBurst:
		return burstLineOpacity
	case OriginPointer:
		return pointerLineOpacity
	default:
		return ambientLineOpacity
	}
}

// attraction returns the pull toward the pointer from (x, y): the offset to
// the pointer scaled by (radius-d)/radius*force, or zero outside radius.
func (e *Engine) attraction(x, y, radius, force float64) (float64, float64) {
	if !e.pointer.Active {
		return 0, 0
	}
	dx := e.pointer.X - x
	dy := e.pointer.Y - y
	d := math.Hypot(dx, dy)
	if d >= radius {
		return 0, 0
	}
	f := (radius - d) / radius * force
	return dx * f, dy * f
}

// Update advances every entity by one frame.
func (e *Engine) Update() {
	e.updateLines()
	e.updateParticles()
}

func (e *Engine) updateLines() {
	kept := e.lines[:0]
	for _, l := range e.lines {
		vx := math.Cos(l.Angle) * l.Speed
		vy := math.Sin(l.Angle) * l.Speed
		l.X1 += vx
		l.Y1 += vy
		l.X2 += vx
		l.Y2 += vy

		if l.Origin == OriginAmbient {
			ax, ay := e.attraction(l.X1, l.Y1, LineAttractRadius, LineAttractForce)
			l.X1 += ax
			l.Y1 += ay
			l.X2 += ax
			l.Y2 += ay
		}

		l.Life -= l.Decay
		// !(>0) also drops NaN life.
		if !(l.Life > 0) || e.lineOutside(&l) {
			continue
		}
		l.Opacity = l.Life * lineBaseOpacity(l.Origin)
		kept = append(kept, l)
	}
	clear(e.lines[len(kept):])
	e.lines = kept
}

// lineOutside reports whether either endpoint is more than BoundsMargin
// beyond the viewport, or not a number at all.
func (e *Engine) lineOutside(l *LineSegment) bool {
	return e.pointOutside(l.X1, l.Y1) || e.pointOutside(l.X2, l.Y2)
}

func (e *Engine) pointOutside(x, y float64) bool {
	if math.IsNaN(x) || math.IsNaN(y) {
		return true
	}
	return x < -BoundsMargin || x > e.viewport.Width+BoundsMargin ||
		y < -BoundsMargin || y > e.viewport.Height+BoundsMargin
}

func (e *Engine) updateParticles() {
	kept := e.particles[:0]
	for _, p := range e.particles {
		p.X += p.VX
		p.Y += p.VY
		p.Life -= p.Decay

		if p.Origin == OriginBurst {
			if !(p.Life > 0) || math.IsNaN(p.X) || math.IsNaN(p.Y) {
				continue
			}
			p.Opacity = p.Life * burstParticleOpacity
			kept = append(kept, p)
			continue
		}

		ax, ay := e.attraction(p.X, p.Y, ParticleAttractRadius, ParticleAttractForce)
		p.VX = (p.VX + ax) * Friction
		p.VY = (p.VY + ay) * Friction
		e.wrap(&p)

		if !(p.Life > 0) || math.IsNaN(p.X) || math.IsNaN(p.Y) {
			e.respawn(&p)
		} else {
			p.Opacity = p.Life * ambientParticleOpacity
		}
		kept = append(kept, p)
	}
	clear(e.particles[len(kept):])
	e.particles = kept
}

// wrap moves a particle that left the viewport to the opposite edge.
func (e *Engine) wrap(p *Particle) {
	switch {
	case p.X < 0:
		p.X = e.viewport.Width
	case p.X > e.viewport.Width:
		p.X = 0
	}
	switch {
	case p.Y < 0:
		p.Y = e.viewport.Height
	case p.Y > e.viewport.Height:
		p.Y = 0
	}
}

// respawn recycles a dead ambient particle in place. Its velocity is
// refreshed because friction has nearly stopped it by the time it dies.
func (e *Engine) respawn(p *Particle) {
	p.Life = 1
	p.Opacity = e.rng.Float64() * ambientParticleOpacity
	p.VX = e.between(-0.5, 0.5) * e.cfg.SpeedScale
	p.VY = e.between(-0.5, 0.5) * e.cfg.SpeedScale
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		p.X = e.rng.Float64() * e.viewport.Width
		p.Y = e.rng.Float64() * e.viewport.Height
	}
}
