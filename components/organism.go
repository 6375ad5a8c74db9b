package components

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// MaxMeal is the hard cap on what a carnivore can eat in one year,
// regardless of its appetite parameter.
const MaxMeal = 50.0

// Animal is one individual. Fitness is derived from Age and Weight on every
// call and never stored.
type Animal struct {
	Species       Species
	Age           int
	Weight        float64
	HasReproduced bool // Gave birth this year
	HasMigrated   bool // Moved to another patch this year
}

// NewAnimal creates an animal with clear yearly flags.
func NewAnimal(s Species, age int, weight float64) *Animal {
	return &Animal{Species: s, Age: age, Weight: weight}
}

// Fitness returns the animal's fitness in [0, 1].
func (a *Animal) Fitness(p *SpeciesParams) float64 {
	if a.Weight <= 0 {
		return 0
	}
	qAge := 1.0 / (1.0 + math.Exp(p.PhiAge*(float64(a.Age)-p.AHalf)))
	qWeight := 1.0 / (1.0 + math.Exp(-p.PhiWeight*(a.Weight-p.WHalf)))
	return qAge * qWeight
}

// Feed converts eaten food into weight. The caller enforces intake limits.
func (a *Animal) Feed(p *SpeciesParams, amount float64) {
	a.Weight += p.Beta * amount
}

// AttemptBirth tries to produce one offspring given the number of
// conspecifics currently sharing the patch (including the parent).
// Returns nil when no birth occurs; the parent is then unchanged.
func (a *Animal) AttemptBirth(p *SpeciesParams, n int, rng *rand.Rand) *Animal {
	prob := math.Min(1, p.Gamma*a.Fitness(p)*float64(n-1))
	birthWeight := distuv.Normal{Mu: p.WBirth, Sigma: p.SigmaBirth, Src: rng}.Rand()

	if a.HasReproduced || a.Age <= 0 || a.Weight <= p.MinBirthWeight() {
		return nil
	}
	if birthWeight <= 0 || prob <= 0 {
		return nil
	}
	if rng.Float64() >= prob {
		return nil
	}
	loss := p.Xi * birthWeight
	if loss >= a.Weight {
		return nil
	}

	a.Weight -= loss
	a.HasReproduced = true
	return NewAnimal(a.Species, 0, birthWeight)
}

// ReduceWeight applies the annual metabolic weight loss.
func (a *Animal) ReduceWeight(p *SpeciesParams) {
	a.Weight -= p.Eta * a.Weight
}

// Grow ages the animal by one year, applies weight loss and clears the
// yearly flags.
func (a *Animal) Grow(p *SpeciesParams) {
	a.Age++
	a.ReduceWeight(p)
	a.ResetYear()
}

// ResetYear clears the per-year behaviour flags.
func (a *Animal) ResetYear() {
	a.HasReproduced = false
	a.HasMigrated = false
}

// WantsToMigrate draws whether the animal tries to leave its patch this year.
func (a *Animal) WantsToMigrate(p *SpeciesParams, rng *rand.Rand) bool {
	return rng.Float64() < p.Mu*a.Fitness(p)
}

// WillDie draws whether the animal dies at the end of the year.
func (a *Animal) WillDie(p *SpeciesParams, rng *rand.Rand) bool {
	fitness := a.Fitness(p)
	if fitness <= 0 || a.Weight < 0 {
		return true
	}
	return rng.Float64() < p.Omega*(1-fitness)
}

// Appetite is the most a carnivore will eat in one year.
func (a *Animal) Appetite(p *SpeciesParams) float64 {
	return math.Min(p.F, MaxMeal)
}

// HuntAndEat consumes a killed prey of the given weight, given what the
// carnivore has already eaten this year. The running intake never passes
// Appetite. Returns the amount eaten.
func (a *Animal) HuntAndEat(p *SpeciesParams, preyWeight, eaten float64) float64 {
	amount := math.Min(preyWeight, math.Min(MaxMeal-eaten, p.F-eaten))
	if amount <= 0 {
		return 0
	}
	a.Weight += p.Beta * amount
	return amount
}

// HuntProbability is the chance that a carnivore with fitness predFitness
// kills a herbivore with fitness preyFitness.
func HuntProbability(predFitness, preyFitness, deltaPhiMax float64) float64 {
	if preyFitness >= predFitness {
		return 0
	}
	diff := predFitness - preyFitness
	if diff >= deltaPhiMax {
		return 1
	}
	return diff / deltaPhiMax
}
