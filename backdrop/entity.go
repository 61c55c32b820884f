// Package backdrop renders the animated line-and-particle background of the
// portfolio home page onto a 2D drawing surface.
//
// An Engine owns every entity, the viewport and the pointer state. It is not
// safe for concurrent use: callers either drive it from a single goroutine or
// hand it to Start, which serializes frames and input events for them.
package backdrop

// Origin tags how an entity was spawned. It selects base opacity, stroke width
// and lifecycle policy.
type Origin uint8

const (
	OriginAmbient Origin = iota
	OriginPointer
	OriginBurst
)

func (o Origin) String() string {
	switch o {
	case OriginAmbient:
		return "ambient"
	case OriginPointer:
		return "pointer-drag"
	case OriginBurst:
		return "click-burst"
	default:
		return "unknown"
	}
}

// LineSegment is a short stroke drifting along Angle at Speed units per frame.
type LineSegment struct {
	X1, Y1  float64
	X2, Y2  float64
	Opacity float64
	Speed   float64
	Angle   float64
	Life    float64 // [0,1]
	Decay   float64 // life lost per frame
	Origin  Origin
}

// Particle is a glowing dot with its own velocity.
type Particle struct {
	X, Y    float64
	VX, VY  float64
	Radius  float64
	Opacity float64
	Life    float64 // [0,1]
	Decay   float64
	Origin  Origin
}

// Viewport is the size of the drawing surface in surface units.
type Viewport struct {
	Width  float64
	Height float64
}

// Pointer is the last known cursor position. Attraction is only applied once
// the pointer has moved at least once.
type Pointer struct {
	X, Y   float64
	Active bool
}

// Stats counts live entities by origin.
type Stats struct {
	AmbientLines     int `json:"ambient_lines"`
	PointerLines     int `json:"pointer_lines"`
	BurstLines       int `json:"burst_lines"`
	AmbientParticles int `json:"ambient_particles"`
	BurstParticles   int `json:"burst_particles"`
}

// Lines returns the total number of live line segments.
func (s Stats) Lines() int {
	return s.AmbientLines + s.PointerLines + s.BurstLines
}

// Particles returns the total number of live particles.
func (s Stats) Particles() int {
	return s.AmbientParticles + s.BurstParticles
}
