package systems

import (
	"math/rand/v2"

	"github.com/pthm-cable/biosim/components"
)

// Reproduce gives every resident one chance to give birth. The population
// count handed to each parent is the live count, so births earlier in the
// pass raise the odds for parents processed later. Newborns join the list
// but do not get a turn this pass.
func (p *Patch) Reproduce(ps *components.ParamSet, rng *rand.Rand, rec Recorder) {
	rec = orDiscard(rec)
	for _, s := range components.AllSpecies {
		params := ps.Species(s)
		list := p.animals[s]
		parents := len(list)
		if parents < 2 {
			continue
		}
		for i := 0; i < parents; i++ {
			child := list[i].AttemptBirth(params, len(list), rng)
			if child == nil {
				continue
			}
			list = append(list, child)
			rec.RecordBirth(s)
		}
		p.animals[s] = list
	}
}
