package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/biosim/systems"
)

// PhaseTelemetry times stats collection and output at the end of a year.
// The other phase names come from the systems phase registry.
const PhaseTelemetry = "telemetry"

// perfPhases lists the phases reported in logs and CSV, in year order.
var perfPhases = []string{
	systems.PhaseFeedingReproduction,
	systems.PhaseMigration,
	systems.PhaseAgingDeath,
	PhaseTelemetry,
}

// PerfSample holds timing data for a single year.
type PerfSample struct {
	YearDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	yearStart     time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of years to average over.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 10
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartYear begins timing a new simulated year.
func (p *PerfCollector) StartYear() {
	p.yearStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	// End previous phase if any
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndYear finishes timing the current year and records the sample.
func (p *PerfCollector) EndYear() {
	now := time.Now()
	// End final phase
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		YearDuration: now.Sub(p.yearStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Year timing
	AvgYearDuration time.Duration
	MinYearDuration time.Duration
	MaxYearDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total year time
	PhasePct map[string]float64

	// Throughput
	YearsPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var total time.Duration
	var minYear, maxYear time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.YearDuration

		if i == 0 || s.YearDuration < minYear {
			minYear = s.YearDuration
		}
		if s.YearDuration > maxYear {
			maxYear = s.YearDuration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var perSec float64
	if avg > 0 {
		perSec = float64(time.Second) / float64(avg)
	}

	return PerfStats{
		AvgYearDuration: avg,
		MinYearDuration: minYear,
		MaxYearDuration: maxYear,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		YearsPerSecond:  perSec,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_year_us", s.AvgYearDuration.Microseconds(),
		"min_year_us", s.MinYearDuration.Microseconds(),
		"max_year_us", s.MaxYearDuration.Microseconds(),
		"years_per_sec", int(s.YearsPerSecond),
	}

	for _, phase := range perfPhases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", float64(int(pct*10))/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_year_us", s.AvgYearDuration.Microseconds()),
		slog.Int64("min_year_us", s.MinYearDuration.Microseconds()),
		slog.Int64("max_year_us", s.MaxYearDuration.Microseconds()),
		slog.Float64("years_per_sec", s.YearsPerSecond),
	}
	for _, phase := range perfPhases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Year                   int     `csv:"year"`
	AvgYearUS              int64   `csv:"avg_year_us"`
	MinYearUS              int64   `csv:"min_year_us"`
	MaxYearUS              int64   `csv:"max_year_us"`
	YearsPerSec            float64 `csv:"years_per_sec"`
	FeedingReproductionPct float64 `csv:"feeding_reproduction_pct"`
	MigrationPct           float64 `csv:"migration_pct"`
	AgingDeathPct          float64 `csv:"aging_death_pct"`
	TelemetryPct           float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(year int) PerfStatsCSV {
	return PerfStatsCSV{
		Year:                   year,
		AvgYearUS:              s.AvgYearDuration.Microseconds(),
		MinYearUS:              s.MinYearDuration.Microseconds(),
		MaxYearUS:              s.MaxYearDuration.Microseconds(),
		YearsPerSec:            s.YearsPerSecond,
		FeedingReproductionPct: s.PhasePct[systems.PhaseFeedingReproduction],
		MigrationPct:           s.PhasePct[systems.PhaseMigration],
		AgingDeathPct:          s.PhasePct[systems.PhaseAgingDeath],
		TelemetryPct:           s.PhasePct[PhaseTelemetry],
	}
}
