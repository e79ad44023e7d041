package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Maximum cells per axis, keeps the bucket table small when the radius is
// tiny compared to the domain.
const (
	maxCells2D = 256
	maxCells3D = 64
)

// grid buckets particles into cells no smaller than the interaction radius
// so a particle only has to look at its own and the adjacent cells.
// Rebuilt from the snapshot at the start of every tick.
type grid struct {
	dims   int
	n      [3]int
	size   [3]float64
	origin r3.Vec

	start []int32 // start[c]..start[c+1] indexes items for cell c
	items []int32
	cells []int32 // cell of each particle
	fill  []int32
}

func cellsPerAxis(extent, radius float64, most int) int {
	if extent <= 0 || radius <= 0 {
		return 1
	}
	n := int(extent / radius)
	if n < 1 {
		n = 1
	}
	if n > most {
		n = most
	}
	return n
}

func (g *grid) build(pos []r3.Vec, limit r3.Vec, radius float64, dims int) {
	most := maxCells2D
	if dims == 3 {
		most = maxCells3D
	}
	g.dims = dims
	g.origin = r3.Scale(-1, limit)
	ext := [3]float64{2 * limit.X, 2 * limit.Y, 2 * limit.Z}
	for a := 0; a < 3; a++ {
		g.n[a] = 1
		g.size[a] = ext[a]
		if a < dims {
			g.n[a] = cellsPerAxis(ext[a], radius, most)
			g.size[a] = ext[a] / float64(g.n[a])
		}
	}

	total := g.n[0] * g.n[1] * g.n[2]
	if cap(g.start) < total+1 {
		g.start = make([]int32, total+1)
	}
	g.start = g.start[:total+1]
	clear(g.start)
	if cap(g.items) < len(pos) {
		g.items = make([]int32, len(pos))
		g.cells = make([]int32, len(pos))
	}
	g.items = g.items[:len(pos)]
	g.cells = g.cells[:len(pos)]

	// counting sort keeps each cell in ascending particle order
	for i, p := range pos {
		c := g.cellOf(p)
		g.cells[i] = int32(c)
		g.start[c+1]++
	}
	for c := 1; c <= total; c++ {
		g.start[c] += g.start[c-1]
	}
	if cap(g.fill) < total {
		g.fill = make([]int32, total)
	}
	g.fill = g.fill[:total]
	clear(g.fill)
	for i, c := range g.cells {
		g.items[g.start[c]+g.fill[c]] = int32(i)
		g.fill[c]++
	}
}

func (g *grid) coord(p r3.Vec) [3]int {
	v := [3]float64{p.X - g.origin.X, p.Y - g.origin.Y, p.Z - g.origin.Z}
	var c [3]int
	for a := 0; a < 3; a++ {
		if g.n[a] == 1 || g.size[a] <= 0 {
			continue
		}
		x := math.Floor(v[a] / g.size[a])
		switch {
		case !(x >= 0):
			c[a] = 0
		case x >= float64(g.n[a]):
			c[a] = g.n[a] - 1
		default:
			c[a] = int(x)
		}
	}
	return c
}

func (g *grid) index(c [3]int) int {
	return (c[2]*g.n[1]+c[1])*g.n[0] + c[0]
}

func (g *grid) cellOf(p r3.Vec) int {
	return g.index(g.coord(p))
}

// force is kernel.force restricted to the neighbouring cells of particle i.
func (g *grid) force(k *kernel, i int, pos []r3.Vec, types []int) r3.Vec {
	var f r3.Vec
	if k.rules.InteractionRadius <= 0 {
		return f
	}
	pi, ti := pos[i], types[i]
	c := g.coord(pi)
	lo, hi := [3]int{}, [3]int{}
	for a := 0; a < 3; a++ {
		lo[a], hi[a] = max(c[a]-1, 0), min(c[a]+1, g.n[a]-1)
	}
	for z := lo[2]; z <= hi[2]; z++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for x := lo[0]; x <= hi[0]; x++ {
				cell := g.index([3]int{x, y, z})
				for _, j := range g.items[g.start[cell]:g.start[cell+1]] {
					if int(j) == i {
						continue
					}
					if v, ok := k.pair(pi, pos[j], ti, types[j]); ok {
						f = r3.Add(f, v)
					}
				}
			}
		}
	}
	return f
}
