package sim

import (
	"math"
)

// Rules is the tunable interaction configuration read by every force
// evaluation of a tick. It is used as a value: a published Rules is never
// mutated, updates go through Simulation.SetRules which swaps in a fresh
// copy.
type Rules struct {
	TypeCount int       `json:"typeCount"`
	Matrix    []float64 `json:"matrix"` // row-major, [a*TypeCount+b] is the pull of type b on type a

	InteractionRadius float64 `json:"interactionRadius"`
	TransitionRadius  float64 `json:"transitionRadius"` // beta, fraction of InteractionRadius
	ForceScale        float64 `json:"forceScale"`
	TimeScale         float64 `json:"timeScale"`
	BaseDelta         float64 `json:"baseDelta"`

	// Friction is the velocity retained per tick. When FrictionHalfLife is
	// positive it takes over and the retention becomes 0.5^(dt/halfLife).
	Friction         float64 `json:"friction"`
	FrictionHalfLife float64 `json:"frictionHalfLife,omitempty"`
}

// DefaultMatrix is the six type interaction table the simulation ships with.
var DefaultMatrix = []float64{
	0.2, 0.1, -0.1, 0.0, 0.03, 0.0,
	0.03, 0.0, -0.2, 0.2, 0.1, 0.0,
	0.1, 0.0, 0.0, 0.0, 0.0, -0.2,
	0.0, 0.2, -0.2, 0.0, 0.03, 0.0,
	0.03, 0.0, 0.0, 0.001, -0.001, 0.001,
	0.001, 0.001, 0.001, 0.001, -0.3, 0.0,
}

// DefaultRules returns the standard preset: tight radius, soft core and a
// flat 0.7 friction at 60 ticks per second.
func DefaultRules() Rules {
	return Rules{
		TypeCount:         6,
		Matrix:            append([]float64(nil), DefaultMatrix...),
		InteractionRadius: 0.2,
		TransitionRadius:  0.3,
		ForceScale:        20.0,
		TimeScale:         0.4,
		BaseDelta:         1.0 / 60.0,
		Friction:          0.7,
	}
}

// WideRules returns the wider preset with a larger core, finer time step
// and half-life friction.
func WideRules() Rules {
	r := DefaultRules()
	r.InteractionRadius = 0.25
	r.TransitionRadius = 0.45
	r.TimeScale = 1.0
	r.BaseDelta = 1.0 / 150.0
	r.FrictionHalfLife = 2.0 / 150.0
	// wider preset flips a few couplings
	r.Matrix[3*6+1], r.Matrix[3*6+2] = -0.2, 0.2
	r.Matrix[4*6+4] = 0.001
	r.Matrix[5*6+4] = 0.3
	return r
}

// Clone returns a deep copy.
func (r Rules) Clone() Rules {
	r.Matrix = append([]float64(nil), r.Matrix...)
	return r
}

// At returns the influence of type b on type a.
func (r Rules) At(a, b int) float64 {
	return r.Matrix[a*r.TypeCount+b]
}

// Delta is the default tick delta, BaseDelta scaled by TimeScale.
func (r Rules) Delta() float64 {
	return r.BaseDelta * r.TimeScale
}

// FrictionFor returns the velocity retention factor for a tick of length dt.
func (r Rules) FrictionFor(dt float64) float64 {
	if r.FrictionHalfLife > 0 {
		return math.Pow(0.5, dt/r.FrictionHalfLife)
	}
	return r.Friction
}

// Validate checks the rules for values that would make the kernel
// degenerate.
func (r Rules) Validate() error {
	if r.TypeCount <= 0 {
		return configErr("typeCount", "must be > 0, got %d", r.TypeCount)
	}
	if len(r.Matrix) != r.TypeCount*r.TypeCount {
		return configErr("matrix", "length %d, want %d", len(r.Matrix), r.TypeCount*r.TypeCount)
	}
	for i, k := range r.Matrix {
		if !finite(k) {
			return configErr("matrix", "entry %d is not finite", i)
		}
	}
	// a zero radius is allowed and switches interactions off
	if !finite(r.InteractionRadius) || r.InteractionRadius < 0 {
		return configErr("interactionRadius", "must be >= 0, got %v", r.InteractionRadius)
	}
	if !(r.TransitionRadius > 0 && r.TransitionRadius < 1) {
		return configErr("transitionRadius", "must be in (0,1), got %v", r.TransitionRadius)
	}
	if !finite(r.ForceScale) {
		return configErr("forceScale", "must be finite")
	}
	if !finite(r.TimeScale) || r.TimeScale < 0 {
		return configErr("timeScale", "must be >= 0, got %v", r.TimeScale)
	}
	if !finite(r.BaseDelta) || r.BaseDelta <= 0 {
		return configErr("baseDelta", "must be > 0, got %v", r.BaseDelta)
	}
	if !(r.Friction >= 0 && r.Friction <= 1) {
		return configErr("friction", "must be in [0,1], got %v", r.Friction)
	}
	if !finite(r.FrictionHalfLife) || r.FrictionHalfLife < 0 {
		return configErr("frictionHalfLife", "must be >= 0, got %v", r.FrictionHalfLife)
	}
	return nil
}

// MatrixEntry addresses a single interaction coefficient.
type MatrixEntry struct {
	Row   int     `json:"row"`
	Col   int     `json:"col"`
	Value float64 `json:"value"`
}

// RulesUpdate is a partial rules change. Nil fields are left untouched.
// Matrix replaces the whole table before Entries are applied.
type RulesUpdate struct {
	InteractionRadius *float64 `json:"interactionRadius,omitempty"`
	TransitionRadius  *float64 `json:"transitionRadius,omitempty"`
	ForceScale        *float64 `json:"forceScale,omitempty"`
	TimeScale         *float64 `json:"timeScale,omitempty"`
	BaseDelta         *float64 `json:"baseDelta,omitempty"`
	Friction          *float64 `json:"friction,omitempty"`
	FrictionHalfLife  *float64 `json:"frictionHalfLife,omitempty"`

	Matrix  []float64     `json:"matrix,omitempty"`
	Entries []MatrixEntry `json:"entries,omitempty"`
}

// Set returns a pointer to v, for filling RulesUpdate fields.
func Set(v float64) *float64 { return &v }

// Apply returns r with u applied, validated. r is not modified.
func (r Rules) Apply(u RulesUpdate) (Rules, error) {
	next := r.Clone()
	assign := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&next.InteractionRadius, u.InteractionRadius)
	assign(&next.TransitionRadius, u.TransitionRadius)
	assign(&next.ForceScale, u.ForceScale)
	assign(&next.TimeScale, u.TimeScale)
	assign(&next.BaseDelta, u.BaseDelta)
	assign(&next.Friction, u.Friction)
	assign(&next.FrictionHalfLife, u.FrictionHalfLife)

	if u.Matrix != nil {
		if len(u.Matrix) != len(next.Matrix) {
			return r, configErr("matrix", "length %d, want %d", len(u.Matrix), len(next.Matrix))
		}
		copy(next.Matrix, u.Matrix)
	}
	for _, e := range u.Entries {
		if e.Row < 0 || e.Row >= next.TypeCount || e.Col < 0 || e.Col >= next.TypeCount {
			return r, configErr("matrix", "entry [%d][%d] out of range", e.Row, e.Col)
		}
		next.Matrix[e.Row*next.TypeCount+e.Col] = e.Value
	}
	if err := next.Validate(); err != nil {
		return r, err
	}
	return next, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
