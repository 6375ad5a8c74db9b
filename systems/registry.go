package systems

import (
	"math/rand/v2"

	"github.com/pthm-cable/biosim/components"
)

// Phase IDs, in the order a year runs them. Also used as perf keys.
const (
	PhaseFeedingReproduction = "feeding_reproduction"
	PhaseMigration           = "migration"
	PhaseAgingDeath          = "aging_death"
)

// Env carries what every phase needs for one year.
type Env struct {
	Params   *components.ParamSet
	RNG      *rand.Rand
	Recorder Recorder
}

// PhaseFunc runs one phase over the whole island.
type PhaseFunc func(isl *Island, env Env)

// PhaseInfo describes one phase of the yearly cycle.
type PhaseInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this phase does
	Run         PhaseFunc
}

// PhaseRegistry holds the ordered phases of a simulated year.
// This centralizes phase naming so the cycle and perf tracker stay in sync.
type PhaseRegistry struct {
	phases []PhaseInfo
	byID   map[string]PhaseInfo
}

// NewPhaseRegistry creates a registry with the standard three-phase year.
func NewPhaseRegistry() *PhaseRegistry {
	reg := &PhaseRegistry{
		byID: make(map[string]PhaseInfo),
	}
	reg.registerDefaults()
	return reg
}

func (r *PhaseRegistry) registerDefaults() {
	r.Register(PhaseInfo{
		ID:          PhaseFeedingReproduction,
		Name:        "Feeding & Reproduction",
		Description: "Regrows fodder, feeds herbivores then carnivores, breeds",
		Run:         FeedingAndReproductionPass,
	})
	r.Register(PhaseInfo{
		ID:          PhaseMigration,
		Name:        "Migration",
		Description: "Snapshots destination odds, then moves animals",
		Run: func(isl *Island, env Env) {
			isl.MigrationPass(env.Params, env.RNG, env.Recorder)
		},
	})
	r.Register(PhaseInfo{
		ID:          PhaseAgingDeath,
		Name:        "Aging & Death",
		Description: "Ages residents, applies weight loss, culls the dead",
		Run:         AgingAndDeathPass,
	})
}

// Register adds a phase to the end of the year.
// Registering an existing ID replaces it in place.
func (r *PhaseRegistry) Register(info PhaseInfo) {
	if _, ok := r.byID[info.ID]; ok {
		for i := range r.phases {
			if r.phases[i].ID == info.ID {
				r.phases[i] = info
			}
		}
	} else {
		r.phases = append(r.phases, info)
	}
	r.byID[info.ID] = info
}

// Get returns phase info by ID.
func (r *PhaseRegistry) Get(id string) (PhaseInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a phase ID.
// Falls back to the ID itself if not found.
func (r *PhaseRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered phases in run order.
func (r *PhaseRegistry) All() []PhaseInfo {
	return r.phases
}

// IDs returns all phase IDs in run order.
func (r *PhaseRegistry) IDs() []string {
	ids := make([]string, len(r.phases))
	for i, info := range r.phases {
		ids[i] = info.ID
	}
	return ids
}

// RunYear runs every phase once in order. before, if non-nil, is called
// with the phase ID just before the phase starts.
func (r *PhaseRegistry) RunYear(isl *Island, env Env, before func(id string)) {
	if env.Recorder == nil {
		env.Recorder = Discard
	}
	for _, ph := range r.phases {
		if before != nil {
			before(ph.ID)
		}
		ph.Run(isl, env)
	}
}

// FeedingAndReproductionPass runs the first phase on every patch. Patches
// do not interact in this phase.
func FeedingAndReproductionPass(isl *Island, env Env) {
	for _, p := range isl.patches {
		p.BeginYear()
		p.RegrowFodder(env.Params)
		if p.Total() == 0 {
			continue
		}
		p.FeedHerbivores(env.Params, env.Recorder)
		p.FeedCarnivores(env.Params, env.RNG, env.Recorder)
		p.Reproduce(env.Params, env.RNG, env.Recorder)
	}
}

// AgingAndDeathPass ages every resident and removes the dead.
func AgingAndDeathPass(isl *Island, env Env) {
	for _, p := range isl.patches {
		if p.Total() == 0 {
			continue
		}
		p.AgeAndLoseWeight(env.Params)
		p.Cull(env.Params, env.RNG, env.Recorder)
	}
}
