package sim

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func twoTypeRules(k01, k10 float64) Rules {
	return Rules{
		TypeCount:         2,
		Matrix:            []float64{0, k01, k10, 0},
		InteractionRadius: 0.2,
		TransitionRadius:  0.45,
		ForceScale:        20,
		TimeScale:         1,
		BaseDelta:         1.0 / 60.0,
		Friction:          0.7,
	}
}

func TestWeightCoreZoneAlwaysRepels(t *testing.T) {
	for _, beta := range []float64{0.05, 0.3, 0.45, 0.9} {
		for _, k := range []float64{-1, -0.2, 0, 0.2, 1, 5} {
			for step := 0; step < 100; step++ {
				r := beta * float64(step) / 100
				if w := Weight(r, beta, k); w > 0 {
					t.Errorf("Expected repulsion for r=%v beta=%v k=%v, got w=%v", r, beta, k, w)
				}
			}
		}
	}
	if w := Weight(0, 0.3, 1); w != -1 {
		t.Errorf("Expected -1 at r=0, got %v", w)
	}
}

func TestWeightTent(t *testing.T) {
	beta, k := 0.3, 0.8
	tests := []struct {
		name string
		r    float64
		want float64
	}{
		{"inner edge", beta, 0},
		{"peak", (1 + beta) / 2, k},
		{"quarter", beta + (1-beta)/4, k / 2},
		{"outer edge", 1, 0},
		{"outside", 1.5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Weight(tt.r, beta, k); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestForceAttractionScenario(t *testing.T) {
	rules := twoTypeRules(0.2, 0)
	pos := []r3.Vec{{}, {X: 0.5 * rules.InteractionRadius}}
	types := []int{0, 1}

	w := 0.2 * (1 - math.Abs(2*0.5-1-0.45)/(1-0.45))
	if w <= 0 {
		t.Fatalf("Expected attraction weight, got %v", w)
	}
	f := Force(0, pos, types, &rules, 2)
	if f.X <= 0 || math.Abs(f.Y) > 1e-12 {
		t.Errorf("Expected force along +X toward particle 1, got %v", f)
	}
	if got, want := r3.Norm(f), math.Abs(w)*rules.ForceScale; math.Abs(got-want) > 1e-9 {
		t.Errorf("Expected magnitude %v, got %v", want, got)
	}
}

func TestForceMatrixAsymmetry(t *testing.T) {
	rules := twoTypeRules(0.5, -0.1)
	pos := []r3.Vec{{}, {X: 0.14}}
	types := []int{0, 1}

	on0 := Force(0, pos, types, &rules, 2)
	on1 := Force(1, pos, types, &rules, 2)
	if math.Abs(r3.Norm(on0)-r3.Norm(on1)) < 1e-6 {
		t.Errorf("Expected different magnitudes, got %v and %v", r3.Norm(on0), r3.Norm(on1))
	}
	// both coefficients act in the tent, so signs follow k
	if on0.X <= 0 {
		t.Errorf("Expected type 0 pulled toward type 1, got %v", on0)
	}
	if on1.X <= 0 {
		t.Errorf("Expected type 1 pushed away from type 0, got %v", on1)
	}
}

func TestForceOutsideRadiusIsZero(t *testing.T) {
	rules := twoTypeRules(1, 1)
	pos := []r3.Vec{{}, {X: rules.InteractionRadius * 1.01}}
	if f := Force(0, pos, []int{0, 1}, &rules, 2); f != (r3.Vec{}) {
		t.Errorf("Expected zero force, got %v", f)
	}
}

func TestForceZeroRadius(t *testing.T) {
	rules := twoTypeRules(1, 1)
	rules.InteractionRadius = 0
	pos := []r3.Vec{{}, {}, {X: 0.1}}
	for i := range pos {
		if f := Force(i, pos, []int{0, 1, 0}, &rules, 2); f != (r3.Vec{}) {
			t.Errorf("Expected zero force on %d, got %v", i, f)
		}
	}
}

func TestForceCoincidentUsesFallback(t *testing.T) {
	for _, dims := range []int{2, 3} {
		rules := twoTypeRules(1, 1)
		pos := []r3.Vec{{X: 0.3, Y: 0.3, Z: 0}, {X: 0.3, Y: 0.3, Z: 0}}
		f := Force(0, pos, []int{0, 1}, &rules, dims)
		want := r3.Scale(-rules.ForceScale, Fallback(dims))
		if r3.Norm(r3.Sub(f, want)) > 1e-12 {
			t.Errorf("dims=%d: Expected %v, got %v", dims, want, f)
		}
	}
}
