// Package rulesfile stores interaction rules as JSON for the host programs.
package rulesfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olivierh59500/particlelife/pkg/sim"
)

// Save writes rules to path as indented JSON.
func Save(path string, rules sim.Rules) error {
	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write rules: %w", err)
	}
	return nil
}

// Load reads and validates rules from path.
func Load(path string) (sim.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sim.Rules{}, fmt.Errorf("read rules: %w", err)
	}
	var rules sim.Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		return sim.Rules{}, fmt.Errorf("decode rules %s: %w", path, err)
	}
	if err := rules.Validate(); err != nil {
		return sim.Rules{}, fmt.Errorf("rules %s: %w", path, err)
	}
	return rules, nil
}

// Update loads path as a full replacement for the tunable fields of a
// running simulation. The type count must match.
func Update(path string, typeCount int) (sim.RulesUpdate, error) {
	r, err := Load(path)
	if err != nil {
		return sim.RulesUpdate{}, err
	}
	if r.TypeCount != typeCount {
		return sim.RulesUpdate{}, fmt.Errorf("rules %s: %d types, simulation has %d", path, r.TypeCount, typeCount)
	}
	return sim.RulesUpdate{
		InteractionRadius: &r.InteractionRadius,
		TransitionRadius:  &r.TransitionRadius,
		ForceScale:        &r.ForceScale,
		TimeScale:         &r.TimeScale,
		BaseDelta:         &r.BaseDelta,
		Friction:          &r.Friction,
		FrictionHalfLife:  &r.FrictionHalfLife,
		Matrix:            r.Matrix,
	}, nil
}
