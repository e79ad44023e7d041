package sim

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func scatterTest(n, dims int, half r3.Vec, seed uint32) ([]r3.Vec, []int) {
	st := newState(n)
	types := scatter(st, dims, 6, half, seed)
	return st.Positions, types
}

func TestGridIndexesEveryParticleOnce(t *testing.T) {
	pos, _ := scatterTest(1000, 2, r3.Vec{X: 2, Y: 1}, 3)
	var g grid
	g.build(pos, r3.Vec{X: 2.5, Y: 1.25}, 0.25, 2)

	seen := make([]int, len(pos))
	for _, j := range g.items {
		seen[j]++
	}
	for i, c := range seen {
		if c != 1 {
			t.Fatalf("particle %d indexed %d times", i, c)
		}
	}
	if g.n[0] != 20 || g.n[1] != 10 || g.n[2] != 1 {
		t.Errorf("Expected 20x10x1 cells, got %v", g.n)
	}
}

func TestGridMatchesBruteForce(t *testing.T) {
	tests := []struct {
		name   string
		dims   int
		half   r3.Vec
		radius float64
	}{
		{"2d", 2, r3.Vec{X: 1.7, Y: 1}, 0.2},
		{"3d", 3, r3.Vec{X: 1, Y: 1, Z: 0.5}, 0.25},
		{"capped cells", 2, r3.Vec{X: 1, Y: 1}, 0.001},
		{"radius past domain", 2, r3.Vec{X: 0.2, Y: 0.2}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := DefaultRules()
			rules.InteractionRadius = tt.radius
			pos, types := scatterTest(600, tt.dims, tt.half, 11)
			limit := r3.Scale(1.2, tt.half)

			var g grid
			g.build(pos, limit, tt.radius, tt.dims)
			k := &kernel{rules: &rules, fallback: Fallback(tt.dims)}
			for i := range pos {
				want := k.force(i, pos, types)
				got := g.force(k, i, pos, types)
				if d := r3.Norm(r3.Sub(want, got)); d > 1e-9*math.Max(1, r3.Norm(want)) {
					t.Fatalf("particle %d: expected %v, got %v", i, want, got)
				}
			}
		})
	}
}
