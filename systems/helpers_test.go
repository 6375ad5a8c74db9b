package systems

import (
	"math/rand/v2"
	"testing"

	"github.com/pthm-cable/biosim/components"
)

// fixedSource returns the same word forever. 0 makes every uniform draw 0;
// 1<<52 makes it 0.5. Normal draws land on the mean in both cases.
type fixedSource uint64

func (s fixedSource) Uint64() uint64 { return uint64(s) }

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func herbivores(t *testing.T, p *Patch, specs ...[2]float64) {
	t.Helper()
	addAnimals(t, p, components.Herbivore, specs...)
}

func carnivores(t *testing.T, p *Patch, specs ...[2]float64) {
	t.Helper()
	addAnimals(t, p, components.Carnivore, specs...)
}

// addAnimals adds animals given as {age, weight} pairs.
func addAnimals(t *testing.T, p *Patch, s components.Species, specs ...[2]float64) {
	t.Helper()
	for _, spec := range specs {
		if err := p.AddAnimals(components.NewAnimal(s, int(spec[0]), spec[1])); err != nil {
			t.Fatalf("AddAnimals: %v", err)
		}
	}
}

func mustIsland(t *testing.T, layout string, ps *components.ParamSet) *Island {
	t.Helper()
	isl, err := NewIsland(layout, ps)
	if err != nil {
		t.Fatalf("NewIsland: %v", err)
	}
	return isl
}

func mustPatch(t *testing.T, isl *Island, row, col int) *Patch {
	t.Helper()
	p, err := isl.Patch(Coord{Row: row, Col: col})
	if err != nil {
		t.Fatalf("Patch(%d,%d): %v", row, col, err)
	}
	return p
}

// recorder counts events for assertions.
type recorder struct {
	births     [components.NumSpecies]int
	deaths     [components.NumSpecies]int
	migrations [components.NumSpecies]int
	kills      int
	killed     float64
	grazed     float64
}

func (r *recorder) RecordBirth(s components.Species) { r.births[s]++ }
func (r *recorder) RecordDeath(s components.Species, _ int) { r.deaths[s]++ }
func (r *recorder) RecordMigration(s components.Species) { r.migrations[s]++ }
func (r *recorder) RecordKill(eaten float64) { r.kills++; r.killed += eaten }
func (r *recorder) RecordGrazing(eaten float64) { r.grazed += eaten }
