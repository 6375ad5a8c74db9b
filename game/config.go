package game

import (
	"github.com/pthm-cable/biosim/config"
)

// OptionsFromConfig maps the loaded configuration onto driver options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Seed:                 cfg.Simulation.Seed,
		Params:               cfg.Derived.Params,
		LogStats:             cfg.Telemetry.LogStats,
		StatsInterval:        cfg.Telemetry.StatsInterval,
		BookmarkHistory:      cfg.Telemetry.BookmarkHistorySize,
		PerfWindow:           cfg.Telemetry.PerfWindow,
		OutputDir:            cfg.Output.Dir,
		DistributionInterval: cfg.Telemetry.DistributionInterval,
		DBPath:               cfg.Output.DB,
		SnapshotDir:          cfg.Output.SnapshotDir,
		SnapshotOnBookmark:   cfg.Telemetry.SnapshotOnBookmark,
	}
}

// NewFromConfig builds a simulation with the configured layout, initial
// population and late populations. The config is also written to the
// output directory when one is set.
func NewFromConfig(cfg *config.Config, opts Options) (*Simulation, error) {
	s, err := New(cfg.Simulation.Layout, opts)
	if err != nil {
		return nil, err
	}

	if err := s.AddPopulation(config.Placements(cfg.InitialPopulation)); err != nil {
		s.Close()
		return nil, err
	}
	for _, late := range cfg.LatePopulation {
		if err := s.ScheduleLatePopulation(late.Year, config.Placements(late.Placements)); err != nil {
			s.Close()
			return nil, err
		}
	}

	if err := s.outputManager.WriteConfig(cfg); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
