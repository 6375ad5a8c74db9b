package systems

import (
	"math"
	"slices"
	"testing"

	"github.com/pthm-cable/biosim/components"
)

const openIsland = `OOOOO
OJJJO
OJJJO
OJJJO
OOOOO`

func TestMigrationProbabilities_Herbivore(t *testing.T) {
	ps, err := components.DefaultParamSet().WithSpeciesParam(components.Herbivore, "lambda", 0.05)
	if err != nil {
		t.Fatal(err)
	}
	isl := mustIsland(t, openIsland, ps)
	herbivores(t, mustPatch(t, isl, 2, 2), [2]float64{5, 20})
	north := mustPatch(t, isl, 1, 2)
	for i := 0; i < 10; i++ {
		herbivores(t, north, [2]float64{5, 20})
	}

	isl.SnapshotMigration(ps)
	probs := mustPatch(t, isl, 2, 2).MigrationProbabilities(components.Herbivore)
	if len(probs) != 4 {
		t.Fatalf("probabilities = %v", probs)
	}

	crowded := math.Exp(0.05 * 800 / (11 * 10))
	empty := math.Exp(0.05 * 800 / 10)
	wantNorth := crowded / (crowded + 3*empty)
	wantOther := empty / (crowded + 3*empty)
	if math.Abs(probs[0]-wantNorth) > 1e-12 {
		t.Errorf("north = %v, want %v", probs[0], wantNorth)
	}
	for i := 1; i < 4; i++ {
		if math.Abs(probs[i]-wantOther) > 1e-12 {
			t.Errorf("neighbour %d = %v, want %v", i, probs[i], wantOther)
		}
	}
}

func TestMigrationProbabilities_Carnivore(t *testing.T) {
	ps := components.DefaultParamSet()
	isl := mustIsland(t, openIsland, ps)
	carnivores(t, mustPatch(t, isl, 2, 2), [2]float64{5, 20})
	north := mustPatch(t, isl, 1, 2)
	for i := 0; i < 10; i++ {
		herbivores(t, north, [2]float64{5, 20})
	}

	isl.SnapshotMigration(ps)
	probs := mustPatch(t, isl, 2, 2).MigrationProbabilities(components.Carnivore)
	// 200 kg of prey shared by one would-be carnivore with a 50 kg appetite.
	rich := math.Exp(4)
	if want := rich / (rich + 3); math.Abs(probs[0]-want) > 1e-12 {
		t.Errorf("north = %v, want %v", probs[0], want)
	}
	if want := 1 / (rich + 3); math.Abs(probs[2]-want) > 1e-12 {
		t.Errorf("south = %v, want %v", probs[2], want)
	}
}

func TestMigrationProbabilities_UninhabitableNeighbors(t *testing.T) {
	ps := components.DefaultParamSet()
	isl := mustIsland(t, openIsland, ps)
	herbivores(t, mustPatch(t, isl, 1, 1), [2]float64{5, 20})

	isl.SnapshotMigration(ps)
	probs := mustPatch(t, isl, 1, 1).MigrationProbabilities(components.Herbivore)
	if probs[0] != 0 || probs[3] != 0 {
		t.Errorf("ocean neighbours got weight: %v", probs)
	}
	if math.Abs(probs[1]+probs[2]-1) > 1e-12 {
		t.Errorf("probabilities do not sum to 1: %v", probs)
	}
	if mustPatch(t, isl, 2, 2).MigrationProbabilities(components.Herbivore) != nil {
		t.Error("empty patch has a migration vector")
	}
}

func TestMigration_OnlyHabitableDestination(t *testing.T) {
	ps, err := components.DefaultParamSet().WithSpeciesParam(components.Herbivore, "mu", 100)
	if err != nil {
		t.Fatal(err)
	}
	isl := mustIsland(t, "OOOOO\nOJMJO\nOJJJO\nOOOOO", ps)
	src := mustPatch(t, isl, 1, 1)
	for i := 0; i < 50; i++ {
		herbivores(t, src, [2]float64{5, 30})
	}

	rec := &recorder{}
	isl.MigrationPass(ps, seeded(9), rec)

	if src.Total() != 0 {
		t.Errorf("%d animals stayed at the source", src.Total())
	}
	if got := mustPatch(t, isl, 2, 1).Count(components.Herbivore); got != 50 {
		t.Errorf("destination holds %d, want 50", got)
	}
	if mustPatch(t, isl, 1, 2).Total() != 0 {
		t.Error("animals moved onto a mountain")
	}
	if rec.migrations[components.Herbivore] != 50 {
		t.Errorf("recorded migrations = %d, want 50", rec.migrations[components.Herbivore])
	}
}

func TestMigration_AtMostOncePerYear(t *testing.T) {
	ps := components.DefaultParamSet()
	for _, s := range components.AllSpecies {
		var err error
		ps, err = ps.WithSpeciesParam(s, "mu", 100)
		if err != nil {
			t.Fatal(err)
		}
	}
	isl := mustIsland(t, openIsland, ps)
	for _, p := range isl.Patches() {
		if !p.Habitable() {
			continue
		}
		herbivores(t, p, [2]float64{5, 30}, [2]float64{5, 30})
		carnivores(t, p, [2]float64{5, 20})
	}
	_, _, before := isl.PopulationCounts()

	rec := &recorder{}
	isl.MigrationPass(ps, seeded(11), rec)

	_, _, after := isl.PopulationCounts()
	if after != before {
		t.Fatalf("population changed during migration: %d -> %d", before, after)
	}
	moved := rec.migrations[components.Herbivore] + rec.migrations[components.Carnivore]
	if moved != before {
		t.Errorf("migrations = %d, want every animal to move exactly once (%d)", moved, before)
	}
	isl.Animals(func(p *Patch, a *components.Animal) {
		if !a.HasMigrated {
			t.Errorf("animal at %v did not move", p.Coord)
		}
		if !p.Habitable() {
			t.Errorf("animal on uninhabitable %v", p.Coord)
		}
	})
}

func TestMigration_Isolated(t *testing.T) {
	ps, err := components.DefaultParamSet().WithSpeciesParam(components.Herbivore, "mu", 100)
	if err != nil {
		t.Fatal(err)
	}
	isl := mustIsland(t, "OOO\nOJO\nOOO", ps)
	p := mustPatch(t, isl, 1, 1)
	herbivores(t, p, [2]float64{5, 30}, [2]float64{5, 30})

	isl.MigrationPass(ps, seeded(1), nil)
	if p.MigrationProbabilities(components.Herbivore) != nil {
		t.Error("isolated patch has a migration vector")
	}
	if p.Count(components.Herbivore) != 2 {
		t.Errorf("herbivores = %d, want 2", p.Count(components.Herbivore))
	}
}

const corridorIsland = `OOOOO
OJJJO
OOOOO`

func TestMigration_ProbabilitiesFixedBeforeMoves(t *testing.T) {
	ps, err := components.DefaultParamSet().WithSpeciesParams(components.Herbivore, map[string]float64{
		"mu":     1e6,
		"lambda": 0.05,
	})
	if err != nil {
		t.Fatal(err)
	}
	isl := mustIsland(t, corridorIsland, ps)
	west := mustPatch(t, isl, 1, 1)
	middle := mustPatch(t, isl, 1, 2)
	east := mustPatch(t, isl, 1, 3)
	for i := 0; i < 20; i++ {
		herbivores(t, west, [2]float64{5, 20})
	}
	herbivores(t, middle, [2]float64{5, 20})
	herbivores(t, east, [2]float64{5, 20})

	isl.SnapshotMigration(ps)
	want := map[string][]float64{
		"middle": slices.Clone(middle.MigrationProbabilities(components.Herbivore)),
		"east":   slices.Clone(east.MigrationProbabilities(components.Herbivore)),
	}

	rec := &recorder{}
	isl.MigrationPass(ps, seeded(1), rec)
	if rec.migrations[components.Herbivore] < 20 {
		t.Fatalf("migrations = %d, want every western herbivore to leave", rec.migrations[components.Herbivore])
	}

	for _, tt := range []struct {
		name  string
		patch *Patch
	}{
		{"middle", middle},
		{"east", east},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.patch.MigrationProbabilities(components.Herbivore)
			if !slices.Equal(got, want[tt.name]) {
				t.Errorf("cached probabilities = %v, want pre-move %v", got, want[tt.name])
			}
		})
	}

	// The moves changed the counts around the middle patch, so recomputing
	// now gives different odds than the ones used during the pass.
	if after := middle.migrationProbabilities(components.Herbivore, ps); slices.Equal(after, want["middle"]) {
		t.Errorf("post-move probabilities %v match pre-move ones", after)
	}
}
