package rulesfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/olivierh59500/particlelife/pkg/sim"
)

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	want := sim.WideRules()
	if err := Save(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.FrictionHalfLife != want.FrictionHalfLife || got.At(5, 4) != want.At(5, 4) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"typeCount":2,"matrix":[1,2,3],"transitionRadius":0.3}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); !errors.Is(err, sim.ErrConfig) {
		t.Errorf("Expected ErrConfig, got %v", err)
	}

	garbage := filepath.Join(dir, "garbage.json")
	if err := os.WriteFile(garbage, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(garbage); err == nil {
		t.Errorf("Expected decode error")
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
}

func TestUpdateAppliesToSimulation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	saved := sim.DefaultRules()
	saved.ForceScale = 42
	if err := Save(path, saved); err != nil {
		t.Fatal(err)
	}

	cfg := sim.DefaultConfig()
	cfg.Particles = 10
	s, err := sim.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	u, err := Update(path, 6)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetRules(u); err != nil {
		t.Fatal(err)
	}
	if got := s.Rules().ForceScale; got != 42 {
		t.Errorf("Expected 42, got %v", got)
	}

	if _, err := Update(path, 4); err == nil {
		t.Errorf("Expected type count mismatch error")
	}
}
