package systems

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/biosim/components"
)

// abundance is the food available per consumer of species s on patch p,
// measured in units of the species' appetite.
func abundance(p *Patch, s components.Species, params *components.SpeciesParams) float64 {
	var food float64
	switch s {
	case components.Herbivore:
		food = p.Fodder
	case components.Carnivore:
		food = p.Biomass(components.Herbivore)
	}
	return food / (float64(p.Count(s)+1) * params.F)
}

// migrationProbabilities computes the destination distribution for species
// s leaving p. Uninhabitable neighbours get zero weight. Returns nil when no
// neighbour can receive animals.
func (p *Patch) migrationProbabilities(s components.Species, ps *components.ParamSet) []float64 {
	params := ps.Species(s)
	logits := make([]float64, 0, len(p.neighbors))
	for _, n := range p.neighbors {
		if n.Habitable() {
			logits = append(logits, params.Lambda*abundance(n, s, params))
		}
	}
	if len(logits) == 0 {
		return nil
	}

	lse := floats.LogSumExp(logits)
	if math.IsNaN(lse) || math.IsInf(lse, 0) {
		return nil
	}
	probs := make([]float64, len(p.neighbors))
	k := 0
	for i, n := range p.neighbors {
		if n.Habitable() {
			probs[i] = math.Exp(logits[k] - lse)
			k++
		}
	}
	if sum := floats.Sum(probs); sum <= 0 || math.Abs(sum-1) > 1e-9 {
		return nil
	}
	return probs
}

// SnapshotMigration caches every patch's destination probabilities from the
// current state of the island. It must run over the whole island before any
// animal moves.
func (isl *Island) SnapshotMigration(ps *components.ParamSet) {
	for _, p := range isl.patches {
		for _, s := range components.AllSpecies {
			p.migration[s] = nil
			if p.Habitable() && p.Count(s) > 0 {
				p.migration[s] = p.migrationProbabilities(s, ps)
			}
		}
	}
}

// ExecuteMigration moves animals using only the cached probabilities.
// Patches are visited in row-major order, herbivores before carnivores.
// Animals that already moved this year are skipped, including arrivals
// from earlier patches.
func (isl *Island) ExecuteMigration(ps *components.ParamSet, rng *rand.Rand, rec Recorder) {
	rec = orDiscard(rec)
	for _, p := range isl.patches {
		for _, s := range components.AllSpecies {
			p.emigrate(s, ps.Species(s), rng, rec)
		}
	}
}

func (p *Patch) emigrate(s components.Species, params *components.SpeciesParams, rng *rand.Rand, rec Recorder) {
	probs := p.migration[s]
	list := p.animals[s]
	if probs == nil || len(list) == 0 {
		return
	}
	dest := distuv.NewCategorical(probs, rng)

	stayers := make([]*components.Animal, 0, len(list))
	for _, a := range list {
		if a.HasMigrated || !a.WantsToMigrate(params, rng) {
			stayers = append(stayers, a)
			continue
		}
		target := p.neighbors[int(dest.Rand())]
		if !target.Habitable() {
			stayers = append(stayers, a)
			continue
		}
		a.HasMigrated = true
		target.accept(a)
		rec.RecordMigration(s)
	}
	p.animals[s] = stayers
}

// MigrationPass runs the two-step migration: snapshot, then move.
func (isl *Island) MigrationPass(ps *components.ParamSet, rng *rand.Rand, rec Recorder) {
	isl.SnapshotMigration(ps)
	isl.ExecuteMigration(ps, rng, rec)
}
