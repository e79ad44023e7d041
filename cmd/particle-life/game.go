package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/olivierh59500/particlelife/internal/palette"
	"github.com/olivierh59500/particlelife/pkg/evolve"
	"github.com/olivierh59500/particlelife/pkg/rulesfile"
	"github.com/olivierh59500/particlelife/pkg/sim"
)

const (
	ParticleSize = 1.5
	MinZoom      = 0.1
	EvolveEvery  = 1000 // ticks between mutations in evolution mode
	EvolveSigma  = 0.1
	DriftAmp     = 0.15
	DriftSpeed   = 0.2
)

// Game hosts a simulation inside the ebiten loop.
type Game struct {
	sim       *sim.Simulation
	width     int
	height    int
	rulesPath string
	tps       float64

	paused    bool
	evolving  bool
	drifting  bool
	evolution *evolve.Evolution
	drifter   *evolve.Drifter
	driftTime float64
	rng       *rand.Rand

	zoom           float64
	camX, camY     float64
	prevMX, prevMY float64
	status         string
}

// NewGame wraps s for ebiten, saving and loading rules at rulesPath.
func NewGame(s *sim.Simulation, width, height int, tps int, rulesPath string, seed int64) *Game {
	return &Game{
		sim:       s,
		width:     width,
		height:    height,
		rulesPath: rulesPath,
		tps:       float64(tps),
		evolution: evolve.NewEvolution(EvolveEvery, EvolveSigma, seed),
		rng:       rand.New(rand.NewSource(seed)),
		zoom:      1.0,
	}
}

// Update is called each tick by Ebitengine
func (g *Game) Update() error {
	g.handleInput()
	if g.paused {
		return nil
	}

	if g.drifting {
		g.driftTime += 1 / g.tps
		g.apply(g.drifter.Update(g.driftTime))
	}
	if err := g.sim.Tick(); err != nil {
		return err
	}
	if g.evolving {
		if u, ok := g.evolution.Step(g.sim.Ticks(), g.sim.Rules().Matrix); ok {
			g.apply(u)
		}
	}
	return nil
}

func (g *Game) apply(u sim.RulesUpdate) {
	if err := g.sim.SetRules(u); err != nil {
		g.status = err.Error()
		log.Printf("rules update rejected: %v", err)
	}
}

// Draw is called each frame by Ebitengine
func (g *Game) Draw(screen *ebiten.Image) {
	types := g.sim.Types()
	vel := g.sim.Velocities()
	typeCount := g.sim.Rules().TypeCount
	for i, p := range g.sim.Positions() {
		sx, sy := g.worldToScreen(p)
		if sx < -ParticleSize || sx > float64(g.width)+ParticleSize || sy < -ParticleSize || sy > float64(g.height)+ParticleSize {
			continue
		}
		col := palette.Particle(types[i], typeCount, r3.Norm(vel[i]))
		vector.DrawFilledCircle(screen, float32(sx), float32(sy), float32(ParticleSize*g.zoom), col, true)
	}

	r := g.sim.Rules()
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"TPS %.0f  tick %d  n %d\nforce %.2f  radius %.3f  beta %.2f\nevolve %v  drift %v  paused %v\n%s",
		ebiten.ActualTPS(), g.sim.Ticks(), g.sim.Len(),
		r.ForceScale, r.InteractionRadius, r.TransitionRadius,
		g.evolving, g.drifting, g.paused, g.status))
}

// Layout returns the screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// worldToScreen maps the wrap box onto the window height, y up.
func (g *Game) worldToScreen(p r3.Vec) (float64, float64) {
	scale := float64(g.height) / (2 * g.sim.Limit().Y) * g.zoom
	sx := float64(g.width)/2 + (p.X-g.camX)*scale
	sy := float64(g.height)/2 - (p.Y-g.camY)*scale
	return sx, sy
}

// handleInput processes keyboard and mouse input
func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		n := g.sim.Rules().TypeCount
		g.apply(sim.RulesUpdate{Matrix: evolve.Randomize(g.rng, n)})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		g.evolving = !g.evolving
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.drifting = !g.drifting
		if g.drifting {
			g.drifter = evolve.NewDrifter(g.sim.Rules().Matrix, DriftAmp, DriftSpeed, g.rng.Int63())
			g.driftTime = 0
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.save()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		g.load()
	}

	r := g.sim.Rules()
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		g.apply(sim.RulesUpdate{ForceScale: sim.Set(r.ForceScale * 1.1)})
	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		g.apply(sim.RulesUpdate{ForceScale: sim.Set(r.ForceScale / 1.1)})
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		g.apply(sim.RulesUpdate{InteractionRadius: sim.Set(r.InteractionRadius + 0.01)})
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		g.apply(sim.RulesUpdate{InteractionRadius: sim.Set(math.Max(0, r.InteractionRadius-0.01))})
	}

	// Zoom
	_, wheelY := ebiten.Wheel()
	g.zoom += wheelY * 0.1
	if g.zoom < MinZoom {
		g.zoom = MinZoom
	}

	// Pan (drag)
	mx, my := ebiten.CursorPosition()
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		scale := float64(g.height) / (2 * g.sim.Limit().Y) * g.zoom
		g.camX -= (float64(mx) - g.prevMX) / scale
		g.camY += (float64(my) - g.prevMY) / scale
	}
	g.prevMX = float64(mx)
	g.prevMY = float64(my)
}

func (g *Game) save() {
	if err := rulesfile.Save(g.rulesPath, g.sim.Rules()); err != nil {
		g.status = err.Error()
		log.Printf("save: %v", err)
		return
	}
	g.status = "saved " + g.rulesPath
}

func (g *Game) load() {
	u, err := rulesfile.Update(g.rulesPath, g.sim.Rules().TypeCount)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			g.status = "no " + g.rulesPath
			return
		}
		g.status = err.Error()
		log.Printf("load: %v", err)
		return
	}
	g.apply(u)
	g.status = "loaded " + g.rulesPath
}
