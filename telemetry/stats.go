// Package telemetry provides population tracking, bookmarking, and snapshots.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// YearStats holds aggregated statistics for one simulated year.
type YearStats struct {
	Year int `csv:"year"`

	// Population counts at year end
	Herbivores int `csv:"herbivores"`
	Carnivores int `csv:"carnivores"`
	Total      int `csv:"total"`

	// Events during the year
	HerbBirths     int `csv:"herb_births"`
	CarnBirths     int `csv:"carn_births"`
	HerbDeaths     int `csv:"herb_deaths"`
	CarnDeaths     int `csv:"carn_deaths"`
	HerbMigrations int `csv:"herb_migrations"`
	CarnMigrations int `csv:"carn_migrations"`

	// Feeding
	Kills        int     `csv:"kills"`
	BiomassEaten float64 `csv:"biomass_eaten"`
	FodderEaten  float64 `csv:"fodder_eaten"`
	FodderStock  float64 `csv:"fodder_stock"` // Total fodder left at year end

	// Weight distribution (sampled at year end)
	HerbWeightMean float64 `csv:"herb_weight_mean"`
	HerbWeightP10  float64 `csv:"herb_weight_p10"`
	HerbWeightP50  float64 `csv:"herb_weight_p50"`
	HerbWeightP90  float64 `csv:"herb_weight_p90"`

	CarnWeightMean float64 `csv:"carn_weight_mean"`
	CarnWeightP10  float64 `csv:"carn_weight_p10"`
	CarnWeightP50  float64 `csv:"carn_weight_p50"`
	CarnWeightP90  float64 `csv:"carn_weight_p90"`

	// Age and fitness
	HerbAgeMean     float64 `csv:"herb_age_mean"`
	CarnAgeMean     float64 `csv:"carn_age_mean"`
	HerbFitnessMean float64 `csv:"herb_fitness_mean"`
	HerbFitnessStd  float64 `csv:"herb_fitness_std"`
	CarnFitnessMean float64 `csv:"carn_fitness_mean"`
	CarnFitnessStd  float64 `csv:"carn_fitness_std"`

	// Lifespans of animals that died this year
	HerbLifespanMean float64 `csv:"herb_lifespan_mean"`
	CarnLifespanMean float64 `csv:"carn_lifespan_mean"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeWeightStats calculates mean and percentiles from weight values.
func ComputeWeightStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// MeanStd returns the mean and sample standard deviation. The deviation is
// 0 for fewer than two values.
func MeanStd(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	return stat.MeanStdDev(values, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s YearStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("year", s.Year),
		slog.Int("herbivores", s.Herbivores),
		slog.Int("carnivores", s.Carnivores),
		slog.Int("herb_births", s.HerbBirths),
		slog.Int("carn_births", s.CarnBirths),
		slog.Int("herb_deaths", s.HerbDeaths),
		slog.Int("carn_deaths", s.CarnDeaths),
		slog.Int("herb_migrations", s.HerbMigrations),
		slog.Int("carn_migrations", s.CarnMigrations),
		slog.Int("kills", s.Kills),
		slog.Float64("biomass_eaten", s.BiomassEaten),
		slog.Float64("fodder_eaten", s.FodderEaten),
		slog.Float64("fodder_stock", s.FodderStock),
		slog.Float64("herb_weight_mean", s.HerbWeightMean),
		slog.Float64("carn_weight_mean", s.CarnWeightMean),
		slog.Float64("herb_fitness_mean", s.HerbFitnessMean),
		slog.Float64("carn_fitness_mean", s.CarnFitnessMean),
	)
}

// LogStats logs the year stats using slog.
func (s YearStats) LogStats() {
	slog.Info("stats",
		"year", s.Year,
		"herbivores", s.Herbivores,
		"carnivores", s.Carnivores,
		"herb_births", s.HerbBirths,
		"carn_births", s.CarnBirths,
		"herb_deaths", s.HerbDeaths,
		"carn_deaths", s.CarnDeaths,
		"migrations", s.HerbMigrations+s.CarnMigrations,
		"kills", s.Kills,
		"fodder_eaten", s.FodderEaten,
		"herb_weight_p50", s.HerbWeightP50,
		"carn_weight_p50", s.CarnWeightP50,
		"herb_age_mean", s.HerbAgeMean,
		"carn_age_mean", s.CarnAgeMean,
	)
}
