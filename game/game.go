// Package game drives a simulation: it owns the island, the seeded random
// stream, the parameter table and the telemetry hooks.
package game

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/persistence"
	"github.com/pthm-cable/biosim/systems"
	"github.com/pthm-cable/biosim/telemetry"
)

// pcgStream is the fixed second word of every PCG state.
const pcgStream = 0x9e3779b97f4a7c15

// Options configures a Simulation. The zero value runs with default
// parameters and all output disabled.
type Options struct {
	Seed   uint64
	Params *components.ParamSet // nil = components.DefaultParamSet()

	LogStats      bool // Log YearStats via slog
	StatsInterval int  // Years between stat log lines (0 = every year)

	BookmarkHistory int // Years kept for bookmark detection (0 = 10)
	PerfWindow      int // Years averaged for perf stats (0 = 10)

	OutputDir            string // CSV output directory (empty = off)
	DistributionInterval int    // Years between distribution dumps (0 = off)
	DBPath               string // SQLite archive (empty = off)

	SnapshotDir        string // Snapshot directory (empty = off)
	SnapshotOnBookmark bool   // Save a snapshot whenever a bookmark fires

	// StatsCallback, if set, receives every year's stats.
	StatsCallback func(telemetry.YearStats)
}

// LatePopulation is a batch of animals introduced before Year runs.
type LatePopulation struct {
	Year       int
	Placements []systems.Placement
}

// Simulation holds the complete simulation state.
type Simulation struct {
	island *systems.Island
	params *components.ParamSet
	seed   uint64
	pcg    *rand.PCG
	rng    *rand.Rand
	year   int // Completed years

	registry *systems.PhaseRegistry
	late     []LatePopulation

	// Telemetry
	opts          Options
	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	bookmarks     *telemetry.BookmarkDetector
	outputManager *telemetry.OutputManager
	db            *persistence.DB
	lastStats     telemetry.YearStats
}

// New builds a simulation on the given layout. Fails if the layout or
// parameters are invalid, or if an output destination cannot be opened.
func New(layout string, opts Options) (*Simulation, error) {
	params := opts.Params
	if params == nil {
		params = components.DefaultParamSet()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	island, err := systems.NewIsland(layout, params)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		island:    island,
		params:    params,
		seed:      opts.Seed,
		pcg:       rand.NewPCG(opts.Seed, opts.Seed^pcgStream),
		registry:  systems.NewPhaseRegistry(),
		opts:      opts,
		collector: telemetry.NewCollector(),
		perf:      telemetry.NewPerfCollector(opts.PerfWindow),
		bookmarks: telemetry.NewBookmarkDetector(opts.BookmarkHistory),
	}
	s.rng = rand.New(s.pcg)
	if s.opts.StatsInterval < 1 {
		s.opts.StatsInterval = 1
	}

	if err := s.openOutputs(); err != nil {
		return nil, err
	}

	slog.Debug("simulation created",
		"seed", opts.Seed,
		"rows", island.Rows(),
		"cols", island.Cols(),
	)
	return s, nil
}

// openOutputs opens the CSV directory and SQLite archive when configured.
func (s *Simulation) openOutputs() error {
	om, err := telemetry.NewOutputManager(s.opts.OutputDir)
	if err != nil {
		return err
	}
	s.outputManager = om

	if s.opts.DBPath != "" {
		db, err := persistence.Open(s.opts.DBPath)
		if err != nil {
			s.outputManager.Close()
			return fmt.Errorf("opening archive: %w", err)
		}
		s.db = db
		for k, v := range map[string]string{
			"seed":   fmt.Sprint(s.seed),
			"layout": s.island.Layout(),
		} {
			if err := db.SaveMeta(k, v); err != nil {
				slog.Error("failed to save run meta", "key", k, "error", err)
			}
		}
	}
	return nil
}

// Close flushes and closes every output destination.
func (s *Simulation) Close() error {
	var firstErr error
	if err := s.outputManager.Close(); err != nil {
		firstErr = err
	}
	s.outputManager = nil
	if s.db != nil {
		if err := s.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.db = nil
	}
	return firstErr
}

// AddPopulation validates a batch of placements and inserts every animal.
// A rejected batch leaves the island unchanged.
func (s *Simulation) AddPopulation(placements []systems.Placement) error {
	n, err := s.island.AddPopulation(placements)
	if err != nil {
		return err
	}
	slog.Debug("population added", "year", s.year, "animals", n)
	return nil
}

// ScheduleLatePopulation introduces a batch before the given year runs.
// The batch is validated now so a bad placement fails before any year runs.
func (s *Simulation) ScheduleLatePopulation(year int, placements []systems.Placement) error {
	if year <= s.year {
		return fmt.Errorf("late population for year %d: year %d already simulated", year, s.year)
	}
	if err := s.island.ValidatePlacements(placements); err != nil {
		return err
	}
	s.late = append(s.late, LatePopulation{Year: year, Placements: placements})
	slices.SortStableFunc(s.late, func(a, b LatePopulation) int { return a.Year - b.Year })
	return nil
}

// Year returns the number of completed years.
func (s *Simulation) Year() int { return s.year }

// Seed returns the seed the random stream started from.
func (s *Simulation) Seed() uint64 { return s.seed }

// Island returns the simulated island.
func (s *Simulation) Island() *systems.Island { return s.island }

// Params returns the parameter table currently in effect.
func (s *Simulation) Params() *components.ParamSet { return s.params }

// Registry returns the phase registry that runs each year.
func (s *Simulation) Registry() *systems.PhaseRegistry { return s.registry }

// LastStats returns the stats of the most recent year.
func (s *Simulation) LastStats() telemetry.YearStats { return s.lastStats }

// PopulationCounts returns the herbivore, carnivore and combined totals.
func (s *Simulation) PopulationCounts() (herbivores, carnivores, total int) {
	return s.island.PopulationCounts()
}

// PopulationGrid returns per-patch herbivore and carnivore counts.
func (s *Simulation) PopulationGrid() (herbivores, carnivores *mat.Dense) {
	return s.island.PopulationGrid()
}

// Distribution lists the population of every patch in row-major order.
func (s *Simulation) Distribution() []systems.PatchPopulation {
	return s.island.Distribution()
}

// Layout returns the normalised island map.
func (s *Simulation) Layout() string { return s.island.Layout() }
