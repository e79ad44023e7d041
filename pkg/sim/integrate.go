package sim

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Integrate advances one particle by dt: the force impulse is added to the
// velocity, friction is applied, and the position moves by the new
// velocity before being wrapped into [-limit, +limit].
func Integrate(pos, vel, force r3.Vec, dt, friction float64, limit r3.Vec) (r3.Vec, r3.Vec) {
	v := r3.Scale(friction, r3.Add(vel, r3.Scale(dt, force)))
	p := r3.Add(pos, r3.Scale(dt, v))
	return Wrap(p, limit), v
}

// Wrap teleports each coordinate that left [-limit, +limit] to the opposite
// edge. It does not reflect and does not touch velocity.
func Wrap(p, limit r3.Vec) r3.Vec {
	p.X = wrapAxis(p.X, limit.X)
	p.Y = wrapAxis(p.Y, limit.Y)
	p.Z = wrapAxis(p.Z, limit.Z)
	return p
}

func wrapAxis(x, limit float64) float64 {
	switch {
	case x > limit:
		return -limit
	case x < -limit:
		return limit
	}
	return x
}
