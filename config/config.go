// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/systems"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Simulation        SimulationConfig  `yaml:"simulation"`
	Species           SpeciesConfig     `yaml:"species"`
	Landscape         LandscapeConfig   `yaml:"landscape"`
	InitialPopulation []PlacementConfig `yaml:"initial_population"`
	LatePopulation    []LateConfig      `yaml:"late_population"`
	Telemetry         TelemetryConfig   `yaml:"telemetry"`
	Output            OutputConfig      `yaml:"output"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimulationConfig holds run settings.
type SimulationConfig struct {
	Seed   uint64 `yaml:"seed"`
	Years  int    `yaml:"years"`
	Layout string `yaml:"layout"` // Island map, one landscape code per patch
}

// SpeciesConfig holds the parameter record for each species.
type SpeciesConfig struct {
	Herbivore components.SpeciesParams `yaml:"herbivore"`
	Carnivore components.SpeciesParams `yaml:"carnivore"`
}

// LandscapeConfig holds the vegetation parameters for vegetated landscapes.
type LandscapeConfig struct {
	Jungle   components.LandscapeParams `yaml:"jungle"`
	Savannah components.LandscapeParams `yaml:"savannah"`
}

// GroupConfig describes Count identical animals.
type GroupConfig struct {
	Species components.Species `yaml:"species"`
	Age     int                `yaml:"age"`
	Weight  float64            `yaml:"weight"`
	Count   int                `yaml:"count"` // Defaults to 1
}

// PlacementConfig puts animal groups on one patch. Locations are 0-based.
type PlacementConfig struct {
	Loc systems.Coord `yaml:"loc"`
	Pop []GroupConfig `yaml:"pop"`
}

// LateConfig introduces animals before the given year runs.
type LateConfig struct {
	Year       int               `yaml:"year"`
	Placements []PlacementConfig `yaml:"placements"`
}

// TelemetryConfig holds telemetry and logging settings.
type TelemetryConfig struct {
	LogStats             bool `yaml:"log_stats"`             // Log YearStats every StatsInterval years
	StatsInterval        int  `yaml:"stats_interval"`        // Years between stat log lines
	BookmarkHistorySize  int  `yaml:"bookmark_history_size"` // Years kept for bookmark detection
	PerfWindow           int  `yaml:"perf_window"`           // Years averaged for perf stats
	DistributionInterval int  `yaml:"distribution_interval"` // Years between distribution dumps (0 = off)
	SnapshotOnBookmark   bool `yaml:"snapshot_on_bookmark"`  // Save a snapshot when a bookmark fires
}

// OutputConfig holds output destinations.
type OutputConfig struct {
	Dir         string `yaml:"dir"`          // CSV output directory (empty = off)
	DB          string `yaml:"db"`           // SQLite archive path (empty = off)
	SnapshotDir string `yaml:"snapshot_dir"` // Snapshot directory (empty = off)
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	Params *components.ParamSet // Validated parameter table
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived validates parameters and fills in defaults.
func (c *Config) computeDerived() error {
	ps, err := components.NewParamSet(c.Species.Herbivore, c.Species.Carnivore, c.Landscape.Jungle, c.Landscape.Savannah)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.Derived.Params = ps

	if c.Simulation.Years < 0 {
		return fmt.Errorf("config: simulation.years = %d must not be negative", c.Simulation.Years)
	}
	if c.Telemetry.StatsInterval < 1 {
		c.Telemetry.StatsInterval = 1
	}
	for _, late := range c.LatePopulation {
		if late.Year < 1 {
			return fmt.Errorf("config: late population year %d must be at least 1", late.Year)
		}
	}
	sort.SliceStable(c.LatePopulation, func(i, j int) bool {
		return c.LatePopulation[i].Year < c.LatePopulation[j].Year
	})
	return nil
}

// Placements expands placement configs into individual animals.
func Placements(pcs []PlacementConfig) []systems.Placement {
	out := make([]systems.Placement, 0, len(pcs))
	for _, pc := range pcs {
		pl := systems.Placement{Loc: pc.Loc}
		for _, g := range pc.Pop {
			n := g.Count
			if n == 0 {
				n = 1
			}
			for i := 0; i < n; i++ {
				pl.Pop = append(pl.Pop, systems.Individual{Species: g.Species, Age: g.Age, Weight: g.Weight})
			}
		}
		out = append(out, pl)
	}
	return out
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
