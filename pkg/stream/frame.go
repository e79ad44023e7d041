package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/olivierh59500/particlelife/pkg/sim"
)

// HeaderSize is the fixed prefix of a state frame:
// tick uint64, count uint32, dims uint32, all little-endian.
const HeaderSize = 16

// ErrShortFrame reports a frame whose length does not match its header.
var ErrShortFrame = errors.New("stream: short frame")

// Frame is a decoded state frame. Positions and velocities are flat,
// count*dims float32 values each, in particle order.
type Frame struct {
	Tick       uint64
	Count      int
	Dims       int
	Positions  []float32
	Velocities []float32
}

// AppendFrame encodes snap onto dst.
func AppendFrame(dst []byte, snap sim.Snapshot) []byte {
	n, dims := len(snap.Positions), snap.Dims
	dst = binary.LittleEndian.AppendUint64(dst, snap.Tick)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(n))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(dims))
	put := func(x float64) {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(x)))
	}
	for _, p := range snap.Positions {
		put(p.X)
		put(p.Y)
		if dims == 3 {
			put(p.Z)
		}
	}
	for _, v := range snap.Velocities {
		put(v.X)
		put(v.Y)
		if dims == 3 {
			put(v.Z)
		}
	}
	return dst
}

// DecodeFrame parses a frame produced by AppendFrame.
func DecodeFrame(b []byte) (Frame, error) {
	if len(b) < HeaderSize {
		return Frame{}, ErrShortFrame
	}
	f := Frame{
		Tick:  binary.LittleEndian.Uint64(b),
		Count: int(binary.LittleEndian.Uint32(b[8:])),
		Dims:  int(binary.LittleEndian.Uint32(b[12:])),
	}
	if f.Dims != 2 && f.Dims != 3 {
		return Frame{}, fmt.Errorf("stream: bad dims %d", f.Dims)
	}
	vals := f.Count * f.Dims
	if len(b) != HeaderSize+8*vals {
		return Frame{}, fmt.Errorf("%w: %d bytes, want %d", ErrShortFrame, len(b), HeaderSize+8*vals)
	}
	read := func(off int) []float32 {
		out := make([]float32, vals)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[off+4*i:]))
		}
		return out
	}
	f.Positions = read(HeaderSize)
	f.Velocities = read(HeaderSize + 4*vals)
	return f, nil
}
