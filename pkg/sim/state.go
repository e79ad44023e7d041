package sim

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// State is one buffer of per-particle kinematics. A Simulation owns two
// and alternates between them every tick.
type State struct {
	Positions  []r3.Vec
	Velocities []r3.Vec
}

func newState(n int) State {
	return State{
		Positions:  make([]r3.Vec, n),
		Velocities: make([]r3.Vec, n),
	}
}

// scatter fills s with positions spread over [-half, +half] on every used
// axis and zero velocities, and returns the particle types. Both come from
// hashing the particle index so a seed reproduces the same population.
func scatter(s State, dims, typeCount int, half r3.Vec, seed uint32) []int {
	var salts [3]uint32
	for a := range salts {
		salts[a] = pcg(seed + uint32(a) + 1)
	}
	typeSalt := seed * 2654435761

	types := make([]int, len(s.Positions))
	for i := range s.Positions {
		idx := uint32(i)
		p := r3.Vec{
			X: (unitHash(idx+salts[0]) - 0.5) * 2 * half.X,
			Y: (unitHash(idx+salts[1]) - 0.5) * 2 * half.Y,
		}
		if dims == 3 {
			p.Z = (unitHash(idx+salts[2]) - 0.5) * 2 * half.Z
		}
		s.Positions[i] = p
		s.Velocities[i] = r3.Vec{}

		t := int(unitHash(idx+typeSalt) * float64(typeCount))
		if t >= typeCount {
			t = typeCount - 1
		}
		types[i] = t
	}
	return types
}

// firstNonFinite returns the first index in [lo, hi) holding NaN or Inf, or -1.
func (s State) firstNonFinite(lo, hi int) int {
	for i := lo; i < hi; i++ {
		p, v := s.Positions[i], s.Velocities[i]
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) ||
			!finite(v.X) || !finite(v.Y) || !finite(v.Z) {
			return i
		}
	}
	return -1
}
