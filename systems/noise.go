package systems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ojrac/opensimplex-go"
)

// NoiseField3D samples a smooth scalar field over two spatial dimensions and time.
// Implementations return values in [-1, 1].
type NoiseField3D interface {
	Noise3D(x, y, t float64) float64
}

// Noise kinds accepted by NewNoiseField.
const (
	NoiseSimplex = "simplex"
	NoisePerlin  = "perlin"
)

// NewNoiseField creates the noise field named by kind.
func NewNoiseField(kind string, seed int64) (NoiseField3D, error) {
	switch kind {
	case NoiseSimplex, "":
		return NewSimplexNoise(seed), nil
	case NoisePerlin:
		return NewPerlinNoise(seed), nil
	default:
		return nil, fmt.Errorf("unknown noise kind %q", kind)
	}
}

// SimplexNoise is OpenSimplex noise.
type SimplexNoise struct {
	noise opensimplex.Noise
}

// NewSimplexNoise creates a seeded OpenSimplex noise field.
func NewSimplexNoise(seed int64) *SimplexNoise {
	return &SimplexNoise{noise: opensimplex.New(seed)}
}

// Noise3D returns a noise value for 3D coordinates.
func (s *SimplexNoise) Noise3D(x, y, t float64) float64 {
	return clampUnit(s.noise.Eval3(x, y, t))
}

// PerlinNoise generates coherent noise values.
type PerlinNoise struct {
	perm [512]int
}

// NewPerlinNoise creates a new Perlin noise generator.
func NewPerlinNoise(seed int64) *PerlinNoise {
	p := &PerlinNoise{}
	rng := rand.New(rand.NewSource(seed))

	var perm [256]int
	for i := range perm {
		perm[i] = i
	}

	// Shuffle
	for i := len(perm) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}

	// Duplicate so corner hashes never need a wrap
	for i := 0; i < 256; i++ {
		p.perm[i] = perm[i]
		p.perm[i+256] = perm[i]
	}

	return p
}

// Noise3D returns a noise value for 3D coordinates.
func (p *PerlinNoise) Noise3D(x, y, z float64) float64 {
	// Unit cube
	fx, fy, fz := math.Floor(x), math.Floor(y), math.Floor(z)
	X := int(fx) & 255
	Y := int(fy) & 255
	Z := int(fz) & 255

	// Position inside the cube
	x -= fx
	y -= fy
	z -= fz

	u := fade(x)
	v := fade(y)
	w := fade(z)

	A := p.perm[X] + Y
	AA := p.perm[A] + Z
	AB := p.perm[A+1] + Z
	B := p.perm[X+1] + Y
	BA := p.perm[B] + Z
	BB := p.perm[B+1] + Z

	n := lerp(w,
		lerp(v,
			lerp(u, grad3D(p.perm[AA], x, y, z), grad3D(p.perm[BA], x-1, y, z)),
			lerp(u, grad3D(p.perm[AB], x, y-1, z), grad3D(p.perm[BB], x-1, y-1, z))),
		lerp(v,
			lerp(u, grad3D(p.perm[AA+1], x, y, z-1), grad3D(p.perm[BA+1], x-1, y, z-1)),
			lerp(u, grad3D(p.perm[AB+1], x, y-1, z-1), grad3D(p.perm[BB+1], x-1, y-1, z-1))))

	return clampUnit(n)
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad3D(hash int, x, y, z float64) float64 {
	h := hash & 15
	u := x
	if h >= 8 {
		u = y
	}
	v := y
	if h >= 4 {
		if h == 12 || h == 14 {
			v = x
		} else {
			v = z
		}
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
