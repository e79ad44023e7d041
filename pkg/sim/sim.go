// Package sim is the particle life kernel: typed particles pull and push on
// each other through a type by type coefficient matrix inside a bounded,
// wrapping domain.
package sim

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// Strategy selects how neighbours are found during a tick.
type Strategy int

const (
	// Grid visits only particles in adjacent cells of a uniform grid.
	Grid Strategy = iota
	// BruteForce visits every pair.
	BruteForce
)

func (s Strategy) String() string {
	switch s {
	case Grid:
		return "grid"
	case BruteForce:
		return "brute"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Config describes a simulation at creation time.
type Config struct {
	Particles  int
	Dims       int    // 2 or 3
	HalfExtent r3.Vec // spawn area is [-HalfExtent, +HalfExtent]; Z ignored in 2D
	Margin     float64
	Rules      Rules
	Workers    int
	Seed       uint32
	Strategy   Strategy
}

// DefaultConfig returns a 16:9 2D world with ten thousand particles.
func DefaultConfig() Config {
	return Config{
		Particles:  10000,
		Dims:       2,
		HalfExtent: r3.Vec{X: 16.0 / 9.0, Y: 1},
		Margin:     1.2,
		Rules:      DefaultRules(),
		Workers:    runtime.NumCPU(),
		Strategy:   Grid,
	}
}

func (c *Config) validate() error {
	if c.Particles <= 0 {
		return configErr("particles", "must be > 0, got %d", c.Particles)
	}
	if c.Dims != 2 && c.Dims != 3 {
		return configErr("dims", "must be 2 or 3, got %d", c.Dims)
	}
	if !(c.HalfExtent.X > 0) || !(c.HalfExtent.Y > 0) || (c.Dims == 3 && !(c.HalfExtent.Z > 0)) {
		return configErr("halfExtent", "must be > 0 on every axis, got %v", c.HalfExtent)
	}
	if !finite(c.Margin) || c.Margin <= 0 {
		return configErr("margin", "must be > 0, got %v", c.Margin)
	}
	if c.Strategy != Grid && c.Strategy != BruteForce {
		return configErr("strategy", "unknown %v", c.Strategy)
	}
	return c.Rules.Validate()
}

// Simulation is a running particle system. Tick advances it; the read
// accessors and SetRules may be called from other goroutines meanwhile.
type Simulation struct {
	dims       int
	halfExtent r3.Vec
	limit      r3.Vec
	workers    int
	strategy   Strategy
	fallback   r3.Vec
	types      []int

	rules   atomic.Pointer[Rules]
	rulesMu sync.Mutex // serialises SetRules

	tickMu    sync.Mutex // serialises Tick, guards back, grid and corrupted
	back      State
	grid      grid
	corrupted bool

	mu    sync.RWMutex // guards front and ticks
	front State
	ticks uint64
}

// New validates cfg and builds a simulation with scattered, resting
// particles.
func New(cfg Config) (*Simulation, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	half := cfg.HalfExtent
	if cfg.Dims == 2 {
		half.Z = 0
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	s := &Simulation{
		dims:       cfg.Dims,
		halfExtent: half,
		limit:      r3.Scale(cfg.Margin, half),
		workers:    workers,
		strategy:   cfg.Strategy,
		fallback:   Fallback(cfg.Dims),
		front:      newState(cfg.Particles),
		back:       newState(cfg.Particles),
	}
	s.types = scatter(s.front, cfg.Dims, cfg.Rules.TypeCount, half, cfg.Seed)
	rules := cfg.Rules.Clone()
	s.rules.Store(&rules)
	return s, nil
}

// Tick advances the simulation by the default delta of the current rules.
func (s *Simulation) Tick() error {
	r := s.rules.Load()
	return s.step(r, r.Delta())
}

// TickDelta advances the simulation by dt, used as is.
func (s *Simulation) TickDelta(dt float64) error {
	if !finite(dt) || dt < 0 {
		return configErr("dt", "must be >= 0, got %v", dt)
	}
	return s.step(s.rules.Load(), dt)
}

// step reads only from the front buffer and writes only to the back buffer,
// then swaps them. Workers own disjoint index ranges of the back buffer.
func (s *Simulation) step(rules *Rules, dt float64) error {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	if s.corrupted {
		return ErrCorrupted
	}

	prev, next := s.front, s.back
	n := len(s.types)
	k := &kernel{rules: rules, fallback: s.fallback}
	friction := rules.FrictionFor(dt)

	useGrid := s.strategy == Grid && rules.InteractionRadius > 0
	if useGrid {
		s.grid.build(prev.Positions, s.limit, rules.InteractionRadius, s.dims)
	}

	chunk := max(64, (n+s.workers*4-1)/(s.workers*4))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for lo := 0; lo < n; lo += chunk {
		lo := lo // per-iteration copy (go directive < 1.22)
		hi := min(lo+chunk, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				var f r3.Vec
				if useGrid {
					f = s.grid.force(k, i, prev.Positions, s.types)
				} else {
					f = k.force(i, prev.Positions, s.types)
				}
				next.Positions[i], next.Velocities[i] = Integrate(
					prev.Positions[i], prev.Velocities[i], f, dt, friction, s.limit)
			}
			if bad := next.firstNonFinite(lo, hi); bad >= 0 {
				return fmt.Errorf("%w: particle %d is not finite", ErrCorrupted, bad)
			}
			return nil
		})
	}
	err := g.Wait()

	s.mu.Lock()
	s.front, s.back = next, prev
	s.ticks++
	s.mu.Unlock()
	if err != nil {
		s.corrupted = true
	}
	return err
}

// SetRules applies a partial update. Invalid updates are rejected whole and
// the current rules stay in effect. The change is seen from the next tick.
func (s *Simulation) SetRules(u RulesUpdate) error {
	s.rulesMu.Lock()
	defer s.rulesMu.Unlock()
	next, err := s.rules.Load().Apply(u)
	if err != nil {
		return err
	}
	s.rules.Store(&next)
	return nil
}

// Rules returns a copy of the rules in effect.
func (s *Simulation) Rules() Rules {
	return s.rules.Load().Clone()
}

// Len is the particle count.
func (s *Simulation) Len() int { return len(s.types) }

// Dims is 2 or 3.
func (s *Simulation) Dims() int { return s.dims }

// HalfExtent is the spawn half size per axis.
func (s *Simulation) HalfExtent() r3.Vec { return s.halfExtent }

// Limit is the wrap boundary per axis, HalfExtent scaled by the margin.
func (s *Simulation) Limit() r3.Vec { return s.limit }

// Ticks returns the number of committed ticks.
func (s *Simulation) Ticks() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ticks
}

// Positions returns the committed positions indexed by particle. The slice
// is shared with the simulation; it must not be modified and is only valid
// until the next Tick.
func (s *Simulation) Positions() []r3.Vec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.front.Positions
}

// Velocities follows the same contract as Positions.
func (s *Simulation) Velocities() []r3.Vec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.front.Velocities
}

// Types returns the particle types. They never change; do not modify.
func (s *Simulation) Types() []int { return s.types }

// Snapshot is a deep copy of the committed state.
type Snapshot struct {
	Tick       uint64
	Dims       int
	Positions  []r3.Vec
	Velocities []r3.Vec
	Types      []int
}

// Snapshot copies the committed state so it can outlive later ticks.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Tick:       s.ticks,
		Dims:       s.dims,
		Positions:  append([]r3.Vec(nil), s.front.Positions...),
		Velocities: append([]r3.Vec(nil), s.front.Velocities...),
		Types:      append([]int(nil), s.types...),
	}
}

// ParseStrategy accepts "grid" or "brute".
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "grid":
		return Grid, nil
	case "brute":
		return BruteForce, nil
	}
	return 0, configErr("strategy", "unknown %q", name)
}
