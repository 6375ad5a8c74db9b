package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/game"
	"github.com/pthm-cable/biosim/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxYears   int
	seeds      []uint64
	baseConfig *config.Config
	warmup     int // Years before extinction checks start

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. Extinction checks start
// once every scheduled late population has arrived.
func NewFitnessEvaluator(params *ParamVector, maxYears int, seeds []uint64, baseCfg *config.Config) *FitnessEvaluator {
	warmup := 0
	for _, late := range baseCfg.LatePopulation {
		warmup = max(warmup, late.Year)
	}
	return &FitnessEvaluator{
		params:     params,
		maxYears:   maxYears,
		seeds:      seeds,
		baseConfig: baseCfg,
		warmup:     warmup,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Minimum viable population: if either species stays below this for
// extinctionGraceYears consecutive years, it counts as functionally extinct.
const (
	minViablePop         = 3
	extinctionGraceYears = 5
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalYears int                   // years before functional extinction (or maxYears if survived)
	yearStats     []telemetry.YearStats // collected via StatsCallback each year
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival years: longer survival = lower (better) fitness.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	opts := game.OptionsFromConfig(fe.baseConfig)
	ps, err := fe.params.Apply(fe.baseConfig.Derived.Params, x)
	if err != nil {
		slog.Warn("rejected parameter vector", "error", err)
		return 0
	}
	opts.Params = ps
	opts.LogStats = false
	opts.OutputDir = ""
	opts.DBPath = ""
	opts.SnapshotDir = ""

	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s uint64) {
			defer wg.Done()
			o := opts
			o.Seed = s
			result := fe.runSimulation(o)
			results[idx] = seedResult{
				fitness: fe.computeFitness(result),
				quality: fe.computeQuality(result.yearStats),
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless simulation run.
// Runs until functional extinction or maxYears, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(opts game.Options) *runResult {
	result := &runResult{}
	opts.StatsCallback = func(stats telemetry.YearStats) {
		result.yearStats = append(result.yearStats, stats)
	}

	sim, err := game.NewFromConfig(fe.baseConfig, opts)
	if err != nil {
		slog.Error("failed to build simulation", "error", err)
		return result
	}
	defer sim.Close()

	// Track how long each species has been below minimum viable population
	var herbBelow, carnBelow int

	for sim.Year() < fe.maxYears {
		sim.AdvanceYear()

		year := sim.Year()
		if year < fe.warmup {
			continue
		}

		herb, carn, _ := sim.PopulationCounts()

		// Hard extinction: either species completely gone
		if herb == 0 || carn == 0 {
			result.survivalYears = year
			return result
		}

		// Functional extinction: species below minimum viable population too long
		if herb < minViablePop {
			herbBelow++
		} else {
			herbBelow = 0
		}
		if carn < minViablePop {
			carnBelow++
		} else {
			carnBelow = 0
		}
		if herbBelow >= extinctionGraceYears || carnBelow >= extinctionGraceYears {
			result.survivalYears = year
			return result
		}
	}

	// Survived the full run
	result.survivalYears = fe.maxYears
	return result
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalYears × (1.0 + 0.2 × quality))
func (fe *FitnessEvaluator) computeFitness(r *runResult) float64 {
	survival := float64(r.survivalYears)
	quality := fe.computeQuality(r.yearStats)
	return -(survival * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightRatio     = 0.40
	qualityWeightStability = 0.35
	qualityWeightHunting   = 0.25

	qualityTargetRatio = 5.0 // herbivores per carnivore
	qualityMinPop      = 3   // exclude years where either species < this
)

// computeQuality computes ecosystem quality in [0, 1] from yearly stats.
func (fe *FitnessEvaluator) computeQuality(years []telemetry.YearStats) float64 {
	if len(years) <= fe.warmup {
		return 0
	}
	valid := years[fe.warmup:]

	var ratioSum, huntSum float64
	var ratioCount, huntCount int
	herbCounts := make([]float64, 0, len(valid))
	carnCounts := make([]float64, 0, len(valid))

	for _, y := range valid {
		if y.Herbivores < qualityMinPop || y.Carnivores < qualityMinPop {
			continue
		}

		herbCounts = append(herbCounts, float64(y.Herbivores))
		carnCounts = append(carnCounts, float64(y.Carnivores))

		// 1. Population ratio score
		ratio := float64(y.Herbivores) / float64(y.Carnivores)
		logErr := math.Log(ratio / qualityTargetRatio)
		ratioSum += math.Exp(-logErr * logErr)
		ratioCount++

		// 2. Hunting activity: kills per carnivore, saturating
		killsPerCarn := float64(y.Kills) / float64(y.Carnivores)
		huntSum += 1.0 - math.Exp(-killsPerCarn)
		huntCount++
	}

	if ratioCount == 0 {
		return 0
	}

	ratioScore := ratioSum / float64(ratioCount)

	// 3. Population stability (CV across all valid years)
	stabilityScore := 0.0
	if len(herbCounts) >= 2 {
		cvHerb := cv(herbCounts)
		cvCarn := cv(carnCounts)
		stabilityScore = math.Exp(-(cvHerb*cvHerb + cvCarn*cvCarn))
	}

	huntScore := huntSum / float64(huntCount)

	quality := qualityWeightRatio*ratioScore +
		qualityWeightStability*stabilityScore +
		qualityWeightHunting*huntScore

	return min(max(quality, 0), 1)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
