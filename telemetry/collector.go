package telemetry

import (
	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/systems"
)

// Collector accumulates events within one year and produces YearStats.
// It implements systems.Recorder.
type Collector struct {
	births     [components.NumSpecies]int
	deaths     [components.NumSpecies]int
	migrations [components.NumSpecies]int
	kills      int
	biomass    float64
	fodder     float64
	lifespans  *LifespanTracker
}

var _ systems.Recorder = (*Collector)(nil)

// NewCollector creates a new stats collector.
func NewCollector() *Collector {
	return &Collector{lifespans: NewLifespanTracker()}
}

// RecordBirth records a birth event.
func (c *Collector) RecordBirth(s components.Species) {
	if s.Valid() {
		c.births[s]++
	}
}

// RecordDeath records a death event, by predation or at the cull.
func (c *Collector) RecordDeath(s components.Species, age int) {
	if s.Valid() {
		c.deaths[s]++
		c.lifespans.Record(s, age)
	}
}

// RecordKill records a successful hunt and the biomass eaten.
func (c *Collector) RecordKill(eaten float64) {
	c.kills++
	c.biomass += eaten
}

// RecordGrazing records fodder eaten by a herbivore.
func (c *Collector) RecordGrazing(eaten float64) {
	c.fodder += eaten
}

// RecordMigration records an animal moving to a neighbouring patch.
func (c *Collector) RecordMigration(s components.Species) {
	if s.Valid() {
		c.migrations[s]++
	}
}

// Sample holds the per-animal values observed on the island at year end.
type Sample struct {
	Weights [components.NumSpecies][]float64
	Ages    [components.NumSpecies][]float64
	Fitness [components.NumSpecies][]float64
	Fodder  float64
}

// SampleIsland walks the island and gathers a Sample.
func SampleIsland(isl *systems.Island, ps *components.ParamSet) Sample {
	var s Sample
	for _, p := range isl.Patches() {
		s.Fodder += p.Fodder
	}
	isl.Animals(func(_ *systems.Patch, a *components.Animal) {
		sp := a.Species
		s.Weights[sp] = append(s.Weights[sp], a.Weight)
		s.Ages[sp] = append(s.Ages[sp], float64(a.Age))
		s.Fitness[sp] = append(s.Fitness[sp], a.Fitness(ps.Species(sp)))
	})
	return s
}

// Flush produces a YearStats and resets counters for the next year.
func (c *Collector) Flush(year int, sample Sample) YearStats {
	h, k := components.Herbivore, components.Carnivore

	herbMean, herbP10, herbP50, herbP90 := ComputeWeightStats(sample.Weights[h])
	carnMean, carnP10, carnP50, carnP90 := ComputeWeightStats(sample.Weights[k])
	herbAge, _ := MeanStd(sample.Ages[h])
	carnAge, _ := MeanStd(sample.Ages[k])
	herbFit, herbFitStd := MeanStd(sample.Fitness[h])
	carnFit, carnFitStd := MeanStd(sample.Fitness[k])

	stats := YearStats{
		Year: year,

		Herbivores: len(sample.Weights[h]),
		Carnivores: len(sample.Weights[k]),
		Total:      len(sample.Weights[h]) + len(sample.Weights[k]),

		HerbBirths:     c.births[h],
		CarnBirths:     c.births[k],
		HerbDeaths:     c.deaths[h],
		CarnDeaths:     c.deaths[k],
		HerbMigrations: c.migrations[h],
		CarnMigrations: c.migrations[k],

		Kills:        c.kills,
		BiomassEaten: c.biomass,
		FodderEaten:  c.fodder,
		FodderStock:  sample.Fodder,

		HerbWeightMean: herbMean,
		HerbWeightP10:  herbP10,
		HerbWeightP50:  herbP50,
		HerbWeightP90:  herbP90,

		CarnWeightMean: carnMean,
		CarnWeightP10:  carnP10,
		CarnWeightP50:  carnP50,
		CarnWeightP90:  carnP90,

		HerbAgeMean:     herbAge,
		CarnAgeMean:     carnAge,
		HerbFitnessMean: herbFit,
		HerbFitnessStd:  herbFitStd,
		CarnFitnessMean: carnFit,
		CarnFitnessStd:  carnFitStd,

		HerbLifespanMean: c.lifespans.Mean(h),
		CarnLifespanMean: c.lifespans.Mean(k),
	}

	// Reset for next year
	c.births = [components.NumSpecies]int{}
	c.deaths = [components.NumSpecies]int{}
	c.migrations = [components.NumSpecies]int{}
	c.kills = 0
	c.biomass = 0
	c.fodder = 0
	c.lifespans.Reset()

	return stats
}
