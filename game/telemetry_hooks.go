package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/systems"
	"github.com/pthm-cable/biosim/telemetry"
	"github.com/pthm-cable/biosim/traits"
)

// flushTelemetry closes the year's stats and handles bookmarks and output.
func (s *Simulation) flushTelemetry() {
	sample := telemetry.SampleIsland(s.island, s.params)
	stats := s.collector.Flush(s.year, sample)
	s.lastStats = stats
	perfStats := s.perf.Stats()

	// Call stats callback if provided
	if s.opts.StatsCallback != nil {
		s.opts.StatsCallback(stats)
	}

	// Log stats if enabled (console output)
	if s.opts.LogStats && s.year%s.opts.StatsInterval == 0 {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteYear(stats); err != nil {
			slog.Error("failed to write year stats", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, s.year); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.SaveYear(stats); err != nil {
			slog.Error("failed to archive year", "error", err)
		}
	}

	if n := s.opts.DistributionInterval; n > 0 && s.year%n == 0 {
		s.writeDistribution()
	}

	// Check for bookmarks
	for _, bm := range s.bookmarks.Check(stats) {
		if s.opts.LogStats {
			bm.LogBookmark()
		}
		if s.outputManager != nil {
			if err := s.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
		if s.opts.SnapshotOnBookmark && s.opts.SnapshotDir != "" {
			s.saveSnapshot(&bm)
		}
	}
}

// writeDistribution dumps the per-patch populations of the current year.
func (s *Simulation) writeDistribution() {
	rows := telemetry.DistributionRows(s.year, s.island.Distribution())
	if s.outputManager != nil {
		if err := s.outputManager.WriteDistribution(rows); err != nil {
			slog.Error("failed to write distribution", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.SaveDistribution(rows); err != nil {
			slog.Error("failed to archive distribution", "error", err)
		}
	}
}

// saveSnapshot creates and saves a snapshot to disk.
func (s *Simulation) saveSnapshot(bookmark *telemetry.Bookmark) {
	snapshot, err := s.Snapshot(bookmark)
	if err != nil {
		slog.Error("failed to build snapshot", "error", err)
		return
	}

	path, err := telemetry.SaveSnapshot(snapshot, s.opts.SnapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "year", s.year)
}

// SaveSnapshot writes the current state to the configured snapshot
// directory and returns the file path.
func (s *Simulation) SaveSnapshot() (string, error) {
	if s.opts.SnapshotDir == "" {
		return "", fmt.Errorf("no snapshot directory configured")
	}
	snapshot, err := s.Snapshot(nil)
	if err != nil {
		return "", err
	}
	return telemetry.SaveSnapshot(snapshot, s.opts.SnapshotDir)
}

// Snapshot captures the complete state between years.
func (s *Simulation) Snapshot(bookmark *telemetry.Bookmark) (*telemetry.Snapshot, error) {
	rngState, err := s.pcg.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal rng: %w", err)
	}

	snapshot := &telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		Seed:     s.seed,
		RNGState: rngState,
		Year:     s.year,
		Layout:   s.island.Layout(),
		Params:   telemetry.NewParamsState(s.params),
		Bookmark: bookmark,
	}

	for _, p := range s.island.Patches() {
		vegetated := traits.IsGrazable(p.Landscape.Traits())
		if !vegetated && p.Total() == 0 {
			continue
		}
		state := telemetry.PatchState{
			Row:    p.Coord.Row,
			Col:    p.Coord.Col,
			Fodder: p.Fodder,
		}
		for _, sp := range components.AllSpecies {
			for _, a := range p.Animals(sp) {
				state.Animals = append(state.Animals, telemetry.AnimalState{
					Species: a.Species,
					Age:     a.Age,
					Weight:  a.Weight,
				})
			}
		}
		snapshot.Patches = append(snapshot.Patches, state)
	}

	return snapshot, nil
}

// Restore rebuilds a simulation from a snapshot. The random stream resumes
// where it stopped, so the restored run continues exactly as the original
// would have. opts.Seed and opts.Params are ignored.
func Restore(snapshot *telemetry.Snapshot, opts Options) (*Simulation, error) {
	params, err := snapshot.Params.ParamSet()
	if err != nil {
		return nil, fmt.Errorf("snapshot params: %w", err)
	}
	opts.Seed = snapshot.Seed
	opts.Params = params

	s, err := New(snapshot.Layout, opts)
	if err != nil {
		return nil, err
	}
	if err := s.pcg.UnmarshalBinary(snapshot.RNGState); err != nil {
		s.Close()
		return nil, fmt.Errorf("restore rng: %w", err)
	}
	s.year = snapshot.Year

	placements := make([]systems.Placement, 0, len(snapshot.Patches))
	for _, ps := range snapshot.Patches {
		loc := systems.Coord{Row: ps.Row, Col: ps.Col}
		p, err := s.island.Patch(loc)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("snapshot patch: %w", err)
		}
		p.Fodder = ps.Fodder

		pl := systems.Placement{Loc: loc}
		for _, a := range ps.Animals {
			pl.Pop = append(pl.Pop, systems.Individual{Species: a.Species, Age: a.Age, Weight: a.Weight})
		}
		placements = append(placements, pl)
	}
	if _, err := s.island.AddPopulation(placements); err != nil {
		s.Close()
		return nil, fmt.Errorf("snapshot animals: %w", err)
	}

	slog.Info("snapshot restored", "year", s.year, "patches", len(snapshot.Patches))
	return s, nil
}
