package systems

import (
	"math"

	"github.com/pthm-cable/swirl/config"
)

// Field offsets within one particle record.
const (
	FieldX = iota
	FieldY
	FieldVX
	FieldVY
	FieldAge
	FieldTTL
	FieldSpeed
	FieldRadius
	FieldHue
)

// FieldsPerParticle is the record stride of the pool buffer.
const FieldsPerParticle = config.FieldsPerParticle

// Record is one particle's fields, laid out as in the pool buffer.
type Record [FieldsPerParticle]float32

// RandomSource provides uniform values in [0, 1).
// *math/rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// Particle is a read-only view of one pool slot.
type Particle struct {
	X, Y   float32
	VX, VY float32
	Age    float32
	TTL    float32
	Speed  float32
	Radius float32
	Hue    float32
}

// SwirlPool owns the flat particle buffer. All state for particle i lives in
// data[i*FieldsPerParticle : (i+1)*FieldsPerParticle].
type SwirlPool struct {
	cfg  *config.SwirlConfig
	rng  RandomSource
	data []float32

	count            int
	width, height    float32
	centerX, centerY float32

	writes uint64
}

// NewSwirlPool creates an empty pool. Call SetBounds and Initialize before stepping.
func NewSwirlPool(cfg *config.SwirlConfig, rng RandomSource) *SwirlPool {
	return &SwirlPool{
		cfg: cfg,
		rng: rng,
	}
}

// SetBounds updates the surface size and recomputes the spawn centre.
// Existing particles are left where they are.
func (p *SwirlPool) SetBounds(width, height float32) {
	p.width = width
	p.height = height
	p.centerX = width * 0.5
	p.centerY = height * 0.5
}

// Bounds returns the surface size used for spawning and bounds checks.
func (p *SwirlPool) Bounds() (width, height float32) {
	return p.width, p.height
}

// Center returns the spawn centre.
func (p *SwirlPool) Center() (x, y float32) {
	return p.centerX, p.centerY
}

// Initialize seeds count particles. The buffer is reallocated only when the
// count changes.
func (p *SwirlPool) Initialize(count int) {
	if count < 0 {
		count = 0
	}
	if count != p.count || p.data == nil {
		p.data = make([]float32, count*FieldsPerParticle)
		p.count = count
	}
	for i := 0; i < p.count; i++ {
		p.Seed(i)
	}
}

// Seed assigns fresh randomized values to every field of particle index.
func (p *SwirlPool) Seed(index int) {
	var rec Record
	p.spawn(&rec)
	p.store(index, &rec)
}

// spawn fills rec with a fresh particle.
func (p *SwirlPool) spawn(rec *Record) {
	c := p.cfg

	x := float32(p.rand(float64(p.width)))
	if x >= p.width {
		x = math.Nextafter32(p.width, 0)
	}

	spread := float32(c.SpawnSpreadY)
	y := p.centerY + float32(p.randRange(c.SpawnSpreadY))
	if upper := p.centerY + spread; y >= upper && spread > 0 {
		y = math.Nextafter32(upper, float32(math.Inf(-1)))
	}

	rec[FieldX] = x
	rec[FieldY] = y
	rec[FieldVX] = 0
	rec[FieldVY] = 0
	rec[FieldAge] = 0
	rec[FieldTTL] = float32(c.TTL.Min + p.rand(c.TTL.Span))
	rec[FieldSpeed] = float32(c.Speed.Min + p.rand(c.Speed.Span))
	rec[FieldRadius] = float32(c.Radius.Min + p.rand(c.Radius.Span))
	rec[FieldHue] = float32(c.Hue.Min + p.rand(c.Hue.Span))
}

// rand returns a value in [0, n).
func (p *SwirlPool) rand(n float64) float64 {
	return n * p.rng.Float64()
}

// randRange returns a value in [-n, n).
func (p *SwirlPool) randRange(n float64) float64 {
	return -n + p.rand(2*n)
}

// load copies particle index into a record.
func (p *SwirlPool) load(index int) Record {
	var rec Record
	copy(rec[:], p.data[index*FieldsPerParticle:])
	return rec
}

// store writes a full record into slot index.
func (p *SwirlPool) store(index int, rec *Record) {
	copy(p.data[index*FieldsPerParticle:(index+1)*FieldsPerParticle], rec[:])
	p.writes += FieldsPerParticle
}

// IsOutOfBounds reports whether (x, y) lies outside [0,width] x [0,height].
func IsOutOfBounds(x, y, width, height float32) bool {
	return x > width || x < 0 || y > height || y < 0
}

// Count returns the number of particles.
func (p *SwirlPool) Count() int {
	return p.count
}

// Len returns the buffer length in floats.
func (p *SwirlPool) Len() int {
	return len(p.data)
}

// Data exposes the raw buffer for read-only inspection.
func (p *SwirlPool) Data() []float32 {
	return p.data
}

// Writes returns the number of float values written to the buffer so far.
func (p *SwirlPool) Writes() uint64 {
	return p.writes
}

// Particle returns a view of particle index.
func (p *SwirlPool) Particle(index int) Particle {
	r := p.load(index)
	return Particle{
		X: r[FieldX], Y: r[FieldY],
		VX: r[FieldVX], VY: r[FieldVY],
		Age:    r[FieldAge],
		TTL:    r[FieldTTL],
		Speed:  r[FieldSpeed],
		Radius: r[FieldRadius],
		Hue:    r[FieldHue],
	}
}
