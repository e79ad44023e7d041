package sim

// pcg is the 32-bit PCG output hash used to scatter particles and types
// from their index.
func pcg(seed uint32) uint32 {
	state := seed*747796405 + 2891336453
	word := ((state >> ((state >> 28) + 4)) ^ state) * 277803737
	return (word >> 22) ^ word
}

// unitHash maps seed to [0, 1).
func unitHash(seed uint32) float64 {
	return float64(pcg(seed)) / (1 << 32)
}
