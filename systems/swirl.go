package systems

import (
	"math"

	"github.com/pthm-cable/swirl/config"
)

// StrokeSink receives the segment each particle travelled this frame.
type StrokeSink interface {
	Stroke(x1, y1, x2, y2, age, ttl, radius, hue float32)
}

// StepResult summarizes one frame of advancement.
type StepResult struct {
	Respawned   int // Total slots reseeded this frame
	OutOfBounds int // Reseeded because the pre-move position left the surface
	Expired     int // Reseeded because age passed ttl (and still in bounds)
}

// SwirlAdvancer moves particles through a noise-driven velocity field.
type SwirlAdvancer struct {
	cfg   *config.SwirlConfig
	noise NoiseField3D
	tick  uint64
}

// NewSwirlAdvancer creates an advancer sampling the given noise field.
func NewSwirlAdvancer(cfg *config.SwirlConfig, noise NoiseField3D) *SwirlAdvancer {
	return &SwirlAdvancer{
		cfg:   cfg,
		noise: noise,
	}
}

// Reset zeroes the global tick. Called on every full pool reset.
func (a *SwirlAdvancer) Reset() {
	a.tick = 0
}

// Tick returns the number of frames stepped since the last reset.
func (a *SwirlAdvancer) Tick() uint64 {
	return a.tick
}

// Step advances the tick, then every particle in slot order. Each particle
// reads and writes only its own slot, so no particle sees another's update
// for the current frame. sink may be nil.
func (a *SwirlAdvancer) Step(p *SwirlPool, sink StrokeSink) StepResult {
	a.tick++

	// Per-frame constants
	c := a.cfg
	angleScale := c.NoiseSteps * 2 * math.Pi
	t := float64(a.tick) * c.NoiseScaleT
	smoothing := float32(c.VelocitySmoothing)

	var res StepResult
	for i := 0; i < p.count; i++ {
		rec := p.load(i)

		x, y := rec[FieldX], rec[FieldY]
		n := a.noise.Noise3D(float64(x)*c.NoiseScaleX, float64(y)*c.NoiseScaleY, t) * angleScale
		vx := lerp32(rec[FieldVX], float32(math.Cos(n)), smoothing)
		vy := lerp32(rec[FieldVY], float32(math.Sin(n)), smoothing)

		age := rec[FieldAge]
		ttl := rec[FieldTTL]
		speed := rec[FieldSpeed]
		x2 := x + vx*speed
		y2 := y + vy*speed

		if sink != nil {
			sink.Stroke(x, y, x2, y2, age, ttl, rec[FieldRadius], rec[FieldHue])
		}

		age++

		// Bounds are checked at the position drawn from, not the new one
		oob := IsOutOfBounds(x, y, p.width, p.height)
		expired := age > ttl
		if oob || expired {
			p.spawn(&rec)
			res.Respawned++
			if oob {
				res.OutOfBounds++
			} else {
				res.Expired++
			}
		} else {
			rec[FieldX] = x2
			rec[FieldY] = y2
			rec[FieldVX] = vx
			rec[FieldVY] = vy
			rec[FieldAge] = age
		}

		p.store(i, &rec)
	}

	return res
}

// FadeInOut is a triangular fade over period m: 0 at t=0 and t=m, 1 at t=m/2.
func FadeInOut(t, m float32) float32 {
	if m <= 0 {
		return 0
	}
	hm := 0.5 * m
	return float32(math.Abs(math.Mod(float64(t+hm), float64(m))-float64(hm))) / hm
}

// lerp32 blends from a toward b by factor s.
func lerp32(a, b, s float32) float32 {
	return (1-s)*a + s*b
}
