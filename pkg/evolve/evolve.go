// Package evolve changes interaction matrices over time: uniform
// randomization, gaussian mutation and smooth Perlin drift. Every helper
// produces a sim.RulesUpdate so changes reach a running simulation through
// SetRules.
package evolve

import (
	"math/rand"

	"github.com/aquilax/go-perlin"

	"github.com/olivierh59500/particlelife/pkg/sim"
)

// Randomize returns an n by n matrix with coefficients uniform in [-1, 1].
func Randomize(rng *rand.Rand, n int) []float64 {
	m := make([]float64, n*n)
	for i := range m {
		m[i] = rng.Float64()*2 - 1
	}
	return m
}

// Mutate returns a copy of m with every coefficient moved by a gaussian
// step of deviation sigma, clamped to [-1, 1].
func Mutate(rng *rand.Rand, m []float64, sigma float64) []float64 {
	out := make([]float64, len(m))
	for i, k := range m {
		out[i] = clamp(k + rng.NormFloat64()*sigma)
	}
	return out
}

// Evolution mutates the matrix once every Every ticks.
type Evolution struct {
	Every uint64
	Sigma float64
	rng   *rand.Rand
}

// NewEvolution mutates by sigma every `every` ticks.
func NewEvolution(every uint64, sigma float64, seed int64) *Evolution {
	return &Evolution{Every: every, Sigma: sigma, rng: rand.New(rand.NewSource(seed))}
}

// Step returns the update due at tick, if any.
func (e *Evolution) Step(tick uint64, current []float64) (sim.RulesUpdate, bool) {
	if e.Every == 0 || tick == 0 || tick%e.Every != 0 {
		return sim.RulesUpdate{}, false
	}
	return sim.RulesUpdate{Matrix: Mutate(e.rng, current, e.Sigma)}, true
}

// Perlin parameters: persistence, frequency ratio and octaves.
const (
	noiseAlpha   = 2.0
	noiseBeta    = 2.0
	noiseOctaves = 3
)

// Drifter wanders each coefficient of a base matrix along its own smooth
// noise curve. The offset from base never exceeds Amplitude.
type Drifter struct {
	Amplitude float64
	Speed     float64 // noise units per second

	base  []float64
	noise *perlin.Perlin
}

// NewDrifter drifts base by at most amplitude; seed fixes the noise field.
func NewDrifter(base []float64, amplitude, speed float64, seed int64) *Drifter {
	return &Drifter{
		Amplitude: amplitude,
		Speed:     speed,
		base:      append([]float64(nil), base...),
		noise:     perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed),
	}
}

// At returns the drifted matrix at time t seconds.
func (d *Drifter) At(t float64) []float64 {
	out := make([]float64, len(d.base))
	y := t * d.Speed
	for i, k := range d.base {
		// off-lattice x so coefficients do not sit on noise zeros
		n := d.noise.Noise2D(float64(i)*1.37+0.5, y)
		if n > 1 {
			n = 1
		} else if n < -1 {
			n = -1
		}
		out[i] = clamp(k + n*d.Amplitude)
	}
	return out
}

// Update wraps At for SetRules.
func (d *Drifter) Update(t float64) sim.RulesUpdate {
	return sim.RulesUpdate{Matrix: d.At(t)}
}

func clamp(k float64) float64 {
	if k > 1 {
		return 1
	}
	if k < -1 {
		return -1
	}
	return k
}
