package systems

import (
	"math/rand/v2"

	"github.com/pthm-cable/biosim/components"
)

// AgeAndLoseWeight ages every resident by one year, applies the annual
// weight loss and clears the yearly flags.
func (p *Patch) AgeAndLoseWeight(ps *components.ParamSet) {
	for _, s := range components.AllSpecies {
		params := ps.Species(s)
		for _, a := range p.animals[s] {
			a.Grow(params)
		}
	}
}

// Cull removes every resident that dies this year. Survivors are collected
// into a fresh slice.
func (p *Patch) Cull(ps *components.ParamSet, rng *rand.Rand, rec Recorder) {
	rec = orDiscard(rec)
	for _, s := range components.AllSpecies {
		params := ps.Species(s)
		list := p.animals[s]
		if len(list) == 0 {
			continue
		}
		survivors := make([]*components.Animal, 0, len(list))
		for _, a := range list {
			if a.WillDie(params, rng) {
				rec.RecordDeath(s, a.Age)
				continue
			}
			survivors = append(survivors, a)
		}
		p.animals[s] = survivors
	}
}
