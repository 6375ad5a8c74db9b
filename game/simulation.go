package game

import (
	"context"
	"log/slog"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/systems"
)

// AdvanceYear runs one full year: due late populations are inserted, then
// every registered phase runs in order, then telemetry is flushed.
func (s *Simulation) AdvanceYear() {
	next := s.year + 1
	s.insertLatePopulations(next)

	s.perf.StartYear()
	env := systems.Env{
		Params:   s.params,
		RNG:      s.rng,
		Recorder: s.collector,
	}
	s.registry.RunYear(s.island, env, s.perf.StartPhase)
	s.perf.EndYear()

	s.year = next
	s.flushTelemetry()
}

// Simulate advances the given number of years. Cancellation is checked
// between years; a year in progress always completes.
func (s *Simulation) Simulate(ctx context.Context, years int) error {
	for i := 0; i < years; i++ {
		if err := ctx.Err(); err != nil {
			slog.Info("simulation cancelled", "year", s.year)
			return err
		}
		s.AdvanceYear()
	}
	return nil
}

// insertLatePopulations adds every scheduled batch due by the given year.
func (s *Simulation) insertLatePopulations(year int) {
	for len(s.late) > 0 && s.late[0].Year <= year {
		batch := s.late[0]
		s.late = s.late[1:]
		n, err := s.island.AddPopulation(batch.Placements)
		if err != nil {
			// Batches are validated when scheduled and the map never changes.
			slog.Error("late population rejected", "year", year, "error", err)
			continue
		}
		slog.Info("late population added", "year", year, "animals", n)
	}
}

// SetSpeciesParameter changes one parameter of a species, named
// "Herbivore"/"prey" or "Carnivore"/"predator". Takes effect from the next
// operation that reads it.
func (s *Simulation) SetSpeciesParameter(species, name string, value float64) error {
	sp, err := components.ParseSpecies(species)
	if err != nil {
		return err
	}
	next, err := s.params.WithSpeciesParam(sp, name, value)
	if err != nil {
		return err
	}
	s.params = next
	return nil
}

// SetSpeciesParameters changes several parameters of a species at once.
// Either all are applied or none.
func (s *Simulation) SetSpeciesParameters(species string, values map[string]float64) error {
	sp, err := components.ParseSpecies(species)
	if err != nil {
		return err
	}
	next, err := s.params.WithSpeciesParams(sp, values)
	if err != nil {
		return err
	}
	s.params = next
	return nil
}

// SetLandscapeParameter changes one vegetation parameter of a landscape
// kind, named by code letter or full name.
func (s *Simulation) SetLandscapeParameter(landscape, name string, value float64) error {
	l, err := components.ParseLandscapeName(landscape)
	if err != nil {
		return err
	}
	next, err := s.params.WithLandscapeParam(l, name, value)
	if err != nil {
		return err
	}
	s.params = next
	return nil
}
