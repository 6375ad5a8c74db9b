package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/systems"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Derived.Params == nil {
		t.Fatal("derived params not computed")
	}
	if got := cfg.Derived.Params.Species(components.Carnivore).DeltaPhiMax; got != 10 {
		t.Errorf("DeltaPhiMax = %v, want 10", got)
	}
	if cfg.Species.Herbivore != components.DefaultSpeciesParams(components.Herbivore) {
		t.Error("embedded herbivore table differs from DefaultSpeciesParams")
	}
	if cfg.Species.Carnivore != components.DefaultSpeciesParams(components.Carnivore) {
		t.Error("embedded carnivore table differs from DefaultSpeciesParams")
	}

	isl, err := systems.NewIsland(cfg.Simulation.Layout, cfg.Derived.Params)
	if err != nil {
		t.Fatalf("default layout: %v", err)
	}
	if isl.Rows() != 13 || isl.Cols() != 21 {
		t.Errorf("default map %dx%d, want 13x21", isl.Rows(), isl.Cols())
	}
	if n, err := isl.AddPopulation(Placements(cfg.InitialPopulation)); err != nil || n != 150 {
		t.Errorf("initial population = %d, %v; want 150", n, err)
	}
	if len(cfg.LatePopulation) != 1 || cfg.LatePopulation[0].Year != 51 {
		t.Errorf("late population = %+v", cfg.LatePopulation)
	}
}

func TestLoadOverride(t *testing.T) {
	path := writeFile(t, `
simulation:
  seed: 99
species:
  carnivore:
    a_half: 70
late_population:
  - year: 30
    placements:
      - loc: {row: 1, col: 1}
        pop: [{species: predator, age: 2, weight: 15}]
  - year: 10
    placements: []
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.Seed != 99 {
		t.Errorf("seed = %d, want 99", cfg.Simulation.Seed)
	}
	if cfg.Simulation.Years != 200 {
		t.Errorf("years = %d, want default 200", cfg.Simulation.Years)
	}
	c := cfg.Derived.Params.Species(components.Carnivore)
	if c.AHalf != 70 || c.PhiAge != 0.4 {
		t.Errorf("carnivore a_half=%v phi_age=%v", c.AHalf, c.PhiAge)
	}
	if cfg.LatePopulation[0].Year != 10 || cfg.LatePopulation[1].Year != 30 {
		t.Errorf("late populations not sorted: %+v", cfg.LatePopulation)
	}
	pl := Placements(cfg.LatePopulation[1].Placements)
	if len(pl) != 1 || len(pl[0].Pop) != 1 || pl[0].Pop[0].Species != components.Carnivore {
		t.Errorf("placements = %+v", pl)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"invalid parameter", "species:\n  herbivore:\n    eta: 2\n", components.ErrInvalidParameter},
		{"unknown species", "initial_population:\n  - loc: {row: 1, col: 1}\n    pop: [{species: omnivore, age: 1, weight: 1}]\n", components.ErrUnknownSpecies},
		{"late year zero", "late_population:\n  - year: 0\n", nil},
		{"negative years", "simulation:\n  years: -1\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPlacementsCount(t *testing.T) {
	pl := Placements([]PlacementConfig{{
		Loc: systems.Coord{Row: 2, Col: 3},
		Pop: []GroupConfig{
			{Species: components.Herbivore, Age: 5, Weight: 20, Count: 3},
			{Species: components.Carnivore, Age: 1, Weight: 8},
		},
	}})
	if len(pl) != 1 || len(pl[0].Pop) != 4 {
		t.Fatalf("placements = %+v", pl)
	}
	if pl[0].Pop[3] != (systems.Individual{Species: components.Carnivore, Age: 1, Weight: 8}) {
		t.Errorf("last individual = %+v", pl[0].Pop[3])
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config: %v", err)
	}
	if again.Simulation != cfg.Simulation || again.Species != cfg.Species {
		t.Error("written config does not reload to the same values")
	}
}

func TestCfgBeforeInitPanics(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("Cfg() did not panic before Init")
		}
	}()
	Cfg()
}
