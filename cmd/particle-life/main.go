package main

import (
	"errors"
	"flag"
	"io/fs"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/olivierh59500/particlelife/pkg/rulesfile"
	"github.com/olivierh59500/particlelife/pkg/sim"
)

func main() {
	var (
		count     = flag.Int("n", 10000, "particle count")
		dims      = flag.Int("dims", 2, "2 or 3")
		width     = flag.Int("width", 1280, "window width")
		height    = flag.Int("height", 720, "window height")
		tps       = flag.Int("tps", 60, "ticks per second")
		preset    = flag.String("preset", "default", "rules preset: default or wide")
		rulesPath = flag.String("rules", "rules.json", "rules file, loaded at start if present and used by S/L")
		strategy  = flag.String("strategy", "grid", "neighbour search: grid or brute")
		workers   = flag.Int("workers", 0, "worker goroutines, 0 for one per CPU")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "population seed")
	)
	flag.Parse()
	if *tps <= 0 {
		log.Fatalf("tps must be > 0, got %d", *tps)
	}

	cfg := sim.DefaultConfig()
	cfg.Particles = *count
	cfg.Dims = *dims
	aspect := float64(*width) / float64(*height)
	cfg.HalfExtent = r3.Vec{X: aspect, Y: 1, Z: 1}
	cfg.Workers = *workers
	cfg.Seed = uint32(*seed)
	if *preset == "wide" {
		cfg.Rules = sim.WideRules()
	}
	st, err := sim.ParseStrategy(*strategy)
	if err != nil {
		log.Fatal(err)
	}
	cfg.Strategy = st

	rules, err := rulesfile.Load(*rulesPath)
	switch {
	case err == nil:
		cfg.Rules = rules
		log.Printf("rules loaded from %s", *rulesPath)
	case !errors.Is(err, fs.ErrNotExist):
		log.Fatal(err)
	}

	s, err := sim.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("simulating %d particles in %dD, %d types, %v search", s.Len(), s.Dims(), cfg.Rules.TypeCount, st)

	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("Particle Life Simulation")
	ebiten.SetTPS(*tps)

	// Run the game loop
	if err := ebiten.RunGame(NewGame(s, *width, *height, *tps, *rulesPath, *seed)); err != nil {
		log.Fatal(err)
	}
}
