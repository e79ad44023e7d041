package evolve

import (
	"math"
	"math/rand"
	"testing"

	"github.com/olivierh59500/particlelife/pkg/sim"
)

func TestRandomizeRange(t *testing.T) {
	m := Randomize(rand.New(rand.NewSource(1)), 6)
	if len(m) != 36 {
		t.Fatalf("Expected 36 entries, got %d", len(m))
	}
	for i, k := range m {
		if k < -1 || k > 1 {
			t.Errorf("entry %d out of range: %v", i, k)
		}
	}
}

func TestMutateClampsAndCopies(t *testing.T) {
	src := []float64{1, -1, 0, 0.5}
	out := Mutate(rand.New(rand.NewSource(2)), src, 5)
	for i, k := range out {
		if k < -1 || k > 1 {
			t.Errorf("entry %d out of range: %v", i, k)
		}
	}
	if src[0] != 1 || src[1] != -1 {
		t.Errorf("Expected source untouched, got %v", src)
	}
}

func TestEvolutionCadence(t *testing.T) {
	e := NewEvolution(1000, 0.1, 3)
	m := sim.DefaultRules().Matrix
	for _, tick := range []uint64{0, 1, 999, 1001} {
		if _, ok := e.Step(tick, m); ok {
			t.Errorf("Expected no mutation at tick %d", tick)
		}
	}
	u, ok := e.Step(2000, m)
	if !ok || len(u.Matrix) != len(m) {
		t.Fatalf("Expected mutation at tick 2000, got %v %v", ok, u)
	}
	rules := sim.DefaultRules()
	if _, err := rules.Apply(u); err != nil {
		t.Errorf("Expected a valid update, got %v", err)
	}
}

func TestDrifterBoundedAndSmooth(t *testing.T) {
	base := sim.DefaultRules().Matrix
	d := NewDrifter(base, 0.1, 0.5, 7)
	prev := d.At(0)
	moved := false
	for step := 1; step <= 200; step++ {
		cur := d.At(float64(step) / 60)
		for i := range cur {
			if math.Abs(cur[i]-base[i]) > 0.1+1e-12 {
				t.Fatalf("entry %d drifted %v past amplitude", i, cur[i]-base[i])
			}
			if math.Abs(cur[i]-prev[i]) > 0.05 {
				t.Fatalf("entry %d jumped from %v to %v", i, prev[i], cur[i])
			}
			if cur[i] != prev[i] {
				moved = true
			}
		}
		prev = cur
	}
	if !moved {
		t.Errorf("Expected the matrix to drift")
	}

	again := NewDrifter(base, 0.1, 0.5, 7)
	a, b := d.At(1.5), again.At(1.5)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Expected the same drift for the same seed at %d", i)
		}
	}
}

func TestDrifterFeedsSimulation(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Particles = 50
	s, err := sim.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	d := NewDrifter(s.Rules().Matrix, 0.2, 1, 9)
	if err := s.SetRules(d.Update(3)); err != nil {
		t.Fatal(err)
	}
	want := d.At(3)
	got := s.Rules().Matrix
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}
