package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon is the separation below which two particles are treated as
// coincident and pushed along the fallback direction.
const Epsilon = 1e-12

// Weight is the signed interaction weight at normalized distance r for
// transition radius beta and coefficient k. Negative values repel.
//
// Below beta every pair repels, growing to -1 as r approaches 0, whatever
// k says. Between beta and 1 the weight is a tent scaled by k that peaks
// halfway and is zero at both edges. At r >= 1 there is no interaction.
func Weight(r, beta, k float64) float64 {
	switch {
	case r < beta:
		return r/beta - 1
	case r < 1:
		return k * (1 - math.Abs(2*r-1-beta)/(1-beta))
	default:
		return 0
	}
}

// Fallback is the unit direction used for coincident particles.
func Fallback(dims int) r3.Vec {
	if dims == 3 {
		return r3.Unit(r3.Vec{X: 1, Y: 1, Z: 1})
	}
	return r3.Unit(r3.Vec{X: 1, Y: 1})
}

// kernel evaluates forces against one rules snapshot.
type kernel struct {
	rules    *Rules
	fallback r3.Vec
}

// pair returns the force particle j at pj exerts on particle i at pi.
func (k *kernel) pair(pi, pj r3.Vec, ti, tj int) (r3.Vec, bool) {
	radius := k.rules.InteractionRadius
	delta := r3.Sub(pj, pi)
	d := r3.Norm(delta)
	if d > radius {
		return r3.Vec{}, false
	}

	dir := k.fallback
	if d > Epsilon {
		dir = r3.Scale(1/d, delta)
	}
	w := Weight(d/radius, k.rules.TransitionRadius, k.rules.At(ti, tj))
	return r3.Scale(w*k.rules.ForceScale, dir), true
}

// force sums the pull of every other particle on particle i.
func (k *kernel) force(i int, pos []r3.Vec, types []int) r3.Vec {
	var f r3.Vec
	if k.rules.InteractionRadius <= 0 {
		return f
	}
	pi, ti := pos[i], types[i]
	for j := range pos {
		if j == i {
			continue
		}
		if c, ok := k.pair(pi, pos[j], ti, types[j]); ok {
			f = r3.Add(f, c)
		}
	}
	return f
}

// Force returns the net force on particle i from every other particle in
// pos under rules. It is the all-pairs reference the grid path must match.
func Force(i int, pos []r3.Vec, types []int, rules *Rules, dims int) r3.Vec {
	k := kernel{rules: rules, fallback: Fallback(dims)}
	return k.force(i, pos, types)
}
