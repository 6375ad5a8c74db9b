package systems

import (
	"math/rand/v2"
	"slices"

	"github.com/pthm-cable/biosim/components"
)

const (
	servingSize = 10.0 // Fodder served to each herbivore per turn at the trough
)

// ranked pairs an animal with the fitness it had when the queue was formed.
type ranked struct {
	animal  *components.Animal
	fitness float64
}

// rank snapshots fitness for a population and stable-sorts it.
// Descending puts the fittest first; ties keep insertion order.
func rank(animals []*components.Animal, p *components.SpeciesParams, descending bool) []ranked {
	out := make([]ranked, len(animals))
	for i, a := range animals {
		out[i] = ranked{animal: a, fitness: a.Fitness(p)}
	}
	slices.SortStableFunc(out, func(x, y ranked) int {
		switch {
		case x.fitness < y.fitness:
			if descending {
				return 1
			}
			return -1
		case x.fitness > y.fitness:
			if descending {
				return -1
			}
			return 1
		}
		return 0
	})
	return out
}

// FeedHerbivores lets herbivores graze, fittest first, in fixed servings
// until the fodder runs out.
func (p *Patch) FeedHerbivores(ps *components.ParamSet, rec Recorder) {
	herbs := p.animals[components.Herbivore]
	if len(herbs) == 0 || p.Fodder <= 0 {
		return
	}
	rec = orDiscard(rec)
	params := ps.Species(components.Herbivore)

	for _, r := range rank(herbs, params, true) {
		if p.Fodder <= 0 {
			break
		}
		serving := min(servingSize, p.Fodder)
		p.Fodder -= serving
		r.animal.Feed(params, serving)
		rec.RecordGrazing(serving)
	}
	if p.Fodder < 0 {
		p.Fodder = 0
	}
}

// FeedCarnivores runs the hunt. The fittest carnivore hunts first and tries
// herbivores from the weakest up until its appetite is met. Killed
// herbivores are removed from the patch.
func (p *Patch) FeedCarnivores(ps *components.ParamSet, rng *rand.Rand, rec Recorder) {
	carns := p.animals[components.Carnivore]
	herbs := p.animals[components.Herbivore]
	if len(carns) == 0 || len(herbs) == 0 {
		return
	}
	rec = orDiscard(rec)
	cp := ps.Species(components.Carnivore)
	hp := ps.Species(components.Herbivore)

	prey := rank(herbs, hp, false)
	killed := make([]bool, len(prey))
	remaining := len(prey)

	for _, hunter := range rank(carns, cp, true) {
		if remaining == 0 {
			break
		}
		appetite := hunter.animal.Appetite(cp)
		eaten := 0.0
		for i := range prey {
			if eaten >= appetite {
				break
			}
			if killed[i] {
				continue
			}
			// Fitness of both sides changes as the hunt goes on.
			prob := components.HuntProbability(hunter.animal.Fitness(cp), prey[i].animal.Fitness(hp), cp.DeltaPhiMax)
			if prob <= 0 {
				continue
			}
			if prob < 1 && rng.Float64() >= prob {
				continue
			}
			amount := hunter.animal.HuntAndEat(cp, prey[i].animal.Weight, eaten)
			eaten += amount
			killed[i] = true
			remaining--
			rec.RecordKill(amount)
			rec.RecordDeath(components.Herbivore, prey[i].animal.Age)
		}
	}

	if remaining == len(prey) {
		return
	}
	dead := make(map[*components.Animal]struct{}, len(prey)-remaining)
	for i, r := range prey {
		if killed[i] {
			dead[r.animal] = struct{}{}
		}
	}
	survivors := make([]*components.Animal, 0, remaining)
	for _, a := range herbs {
		if _, ok := dead[a]; !ok {
			survivors = append(survivors, a)
		}
	}
	p.animals[components.Herbivore] = survivors
}
