package palette

import (
	"math"
	"testing"
)

func TestHSVPrimaries(t *testing.T) {
	tests := []struct {
		h       float64
		r, g, b float64
	}{
		{0, 1, 0, 0},
		{60, 1, 1, 0},
		{120, 0, 1, 0},
		{240, 0, 0, 1},
		{300, 1, 0, 1},
		{360, 1, 0, 0},
		{-120, 0, 0, 1},
	}
	for _, tt := range tests {
		r, g, b := HSV(tt.h, 1, 1)
		if math.Abs(r-tt.r) > 1e-12 || math.Abs(g-tt.g) > 1e-12 || math.Abs(b-tt.b) > 1e-12 {
			t.Errorf("HSV(%v): expected %v %v %v, got %v %v %v", tt.h, tt.r, tt.g, tt.b, r, g, b)
		}
	}
}

func TestHSVGreyWithoutSaturation(t *testing.T) {
	r, g, b := HSV(200, 0, 0.4)
	if r != 0.4 || g != 0.4 || b != 0.4 {
		t.Errorf("Expected grey 0.4, got %v %v %v", r, g, b)
	}
}

func TestParticleBrightensWithSpeed(t *testing.T) {
	slow := Particle(0, 6, 0)
	fast := Particle(0, 6, 100)
	if fast.R <= slow.R {
		t.Errorf("Expected faster particle brighter, got %v vs %v", fast, slow)
	}
	if Particle(0, 6, 0) == Particle(3, 6, 0) {
		t.Errorf("Expected types to differ in colour")
	}
	if fast.A != 255 {
		t.Errorf("Expected opaque colour, got alpha %d", fast.A)
	}
}
