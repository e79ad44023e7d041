// Package palette colours particles for the viewer.
package palette

import (
	"image/color"
	"math"
)

// Particle picks a hue per type, spread evenly around the wheel, and
// brightens it with speed. Intensity follows clamp(speed*0.2, 1, 4).
func Particle(t, typeCount int, speed float64) color.RGBA {
	h := float64(t) / float64(typeCount) * 360
	intensity := math.Min(math.Max(speed*0.2, 1), 4)
	v := 0.55 + 0.15*(intensity-1)
	r, g, b := HSV(h, 0.85, v)
	return color.RGBA{uint8(r * 255), uint8(g * 255), uint8(b * 255), 255}
}

// HSV converts hue in degrees (any value, taken mod 360), saturation and
// value in [0, 1] to RGB components in [0, 1].
func HSV(h, s, v float64) (r, g, b float64) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	chroma := v * s
	sector := int(h / 60)
	second := chroma * (1 - math.Abs(math.Mod(h/60, 2)-1))
	base := v - chroma

	rgb := [6][3]float64{
		{chroma, second, 0},
		{second, chroma, 0},
		{0, chroma, second},
		{0, second, chroma},
		{second, 0, chroma},
		{chroma, 0, second},
	}[sector%6]
	return rgb[0] + base, rgb[1] + base, rgb[2] + base
}
