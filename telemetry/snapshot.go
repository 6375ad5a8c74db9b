package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/biosim/components"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete simulation state for resuming a run.
type Snapshot struct {
	Version int    `json:"version"`
	Seed    uint64 `json:"seed"`
	// Marshalled PCG state; restoring it continues the random stream exactly.
	RNGState []byte `json:"rng_state"`

	Year   int    `json:"year"`
	Layout string `json:"layout"`

	Params ParamsState `json:"params"`

	Patches []PatchState `json:"patches"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// ParamsState is the parameter table in effect when the snapshot was taken.
type ParamsState struct {
	Herbivore components.SpeciesParams   `json:"herbivore"`
	Carnivore components.SpeciesParams   `json:"carnivore"`
	Jungle    components.LandscapeParams `json:"jungle"`
	Savannah  components.LandscapeParams `json:"savannah"`
}

// NewParamsState captures a parameter set.
func NewParamsState(ps *components.ParamSet) ParamsState {
	return ParamsState{
		Herbivore: *ps.Species(components.Herbivore),
		Carnivore: *ps.Species(components.Carnivore),
		Jungle:    ps.Landscape(components.Jungle),
		Savannah:  ps.Landscape(components.Savannah),
	}
}

// ParamSet rebuilds and validates the captured parameter set.
func (s ParamsState) ParamSet() (*components.ParamSet, error) {
	return components.NewParamSet(s.Herbivore, s.Carnivore, s.Jungle, s.Savannah)
}

// PatchState holds one patch's fodder and residents. Only patches that are
// vegetated or occupied are stored.
type PatchState struct {
	Row     int           `json:"row"`
	Col     int           `json:"col"`
	Fodder  float64       `json:"fodder"`
	Animals []AnimalState `json:"animals,omitempty"`
}

// AnimalState holds one animal's complete state.
type AnimalState struct {
	Species components.Species `json:"species"`
	Age     int                `json:"age"`
	Weight  float64            `json:"weight"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Year)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Year, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
