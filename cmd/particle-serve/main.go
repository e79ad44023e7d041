package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/olivierh59500/particlelife/pkg/evolve"
	"github.com/olivierh59500/particlelife/pkg/rulesfile"
	"github.com/olivierh59500/particlelife/pkg/sim"
	"github.com/olivierh59500/particlelife/pkg/stream"
)

func main() {
	var (
		addr      = flag.String("addr", ":8080", "listen address")
		count     = flag.Int("n", 10000, "particle count")
		dims      = flag.Int("dims", 2, "2 or 3")
		aspect    = flag.Float64("aspect", 16.0/9.0, "domain width over height")
		tps       = flag.Int("tps", 60, "ticks per second")
		every     = flag.Int("broadcast-every", 2, "ticks between frames")
		preset    = flag.String("preset", "default", "rules preset: default or wide")
		rulesPath = flag.String("rules", "", "rules file to start from")
		drift     = flag.Float64("drift", 0, "Perlin drift amplitude on the matrix, 0 disables")
		evolveN   = flag.Uint64("evolve-every", 0, "mutate the matrix every N ticks, 0 disables")
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
	cfg.HalfExtent = r3.Vec{X: *aspect, Y: 1, Z: 1}
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
	if *rulesPath != "" {
		rules, err := rulesfile.Load(*rulesPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg.Rules = rules
	}

	s, err := sim.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	hub := stream.NewHub(s)

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: *addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		log.Printf("serving %d particles on ws://%s/ws", s.Len(), *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	l := loop{sim: s, hub: hub, tps: *tps, every: uint64(max(1, *every))}
	if *drift > 0 {
		l.drifter = evolve.NewDrifter(cfg.Rules.Matrix, *drift, 0.2, *seed)
	}
	if *evolveN > 0 {
		l.evolution = evolve.NewEvolution(*evolveN, 0.1, *seed)
	}
	err = l.run(ctx)

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := srv.Shutdown(shutdown); serr != nil {
		log.Printf("shutdown: %v", serr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

// loop ticks the simulation at a fixed rate and broadcasts every few ticks.
type loop struct {
	sim       *sim.Simulation
	hub       *stream.Hub
	tps       int
	every     uint64
	drifter   *evolve.Drifter
	evolution *evolve.Evolution
}

func (l *loop) run(ctx context.Context) error {
	if l.tps <= 0 {
		return fmt.Errorf("tick rate must be > 0, got %d", l.tps)
	}
	ticker := time.NewTicker(time.Second / time.Duration(l.tps))
	defer ticker.Stop()

	start := time.Now()
	lastLog := start
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if l.drifter != nil {
				if err := l.sim.SetRules(l.drifter.Update(now.Sub(start).Seconds())); err != nil {
					log.Printf("drift rejected: %v", err)
				}
			}
			if err := l.sim.Tick(); err != nil {
				return err
			}
			tick := l.sim.Ticks()
			if l.evolution != nil {
				if u, ok := l.evolution.Step(tick, l.sim.Rules().Matrix); ok {
					if err := l.sim.SetRules(u); err != nil {
						log.Printf("mutation rejected: %v", err)
					}
				}
			}
			if tick%l.every == 0 {
				l.hub.Broadcast()
			}
			if now.Sub(lastLog) >= 10*time.Second {
				log.Printf("tick %d, %d clients", tick, l.hub.Clients())
				lastLog = now
			}
		}
	}
}
