// Package systems implements the island: per-patch population management,
// the grid of patches and the yearly cycle that drives them.
package systems

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/biosim/components"
)

// Errors returned while building or populating the island.
var (
	ErrInvalidLayout     = errors.New("invalid island layout")
	ErrUninhabitable     = errors.New("patch is not habitable")
	ErrOutOfBounds       = errors.New("location outside the island")
	ErrInvalidIndividual = errors.New("invalid individual")
)

// Coord addresses a patch by row and column.
type Coord struct {
	Row int `yaml:"row" json:"row"`
	Col int `yaml:"col" json:"col"`
}

// Patch is one cell of the island. It owns its fodder stock and the
// animals living on it.
type Patch struct {
	Coord     Coord
	Landscape components.Landscape
	Fodder    float64

	animals   [components.NumSpecies][]*components.Animal
	neighbors []*Patch

	// Migration probabilities per species, aligned with neighbors.
	// Rebuilt every year; nil means nobody of that species may leave.
	migration [components.NumSpecies][]float64
}

// NewPatch creates an empty patch with no fodder.
func NewPatch(c Coord, l components.Landscape) *Patch {
	return &Patch{Coord: c, Landscape: l}
}

// Habitable reports whether animals may live here.
func (p *Patch) Habitable() bool {
	return p.Landscape.Habitable()
}

// Animals returns the residents of one species. The slice is owned by the
// patch and must not be retained across a yearly phase.
func (p *Patch) Animals(s components.Species) []*components.Animal {
	return p.animals[s]
}

// Herbivores returns the prey living on the patch.
func (p *Patch) Herbivores() []*components.Animal {
	return p.animals[components.Herbivore]
}

// Carnivores returns the predators living on the patch.
func (p *Patch) Carnivores() []*components.Animal {
	return p.animals[components.Carnivore]
}

// Count returns the number of residents of one species.
func (p *Patch) Count(s components.Species) int {
	return len(p.animals[s])
}

// Total returns the number of residents of both species.
func (p *Patch) Total() int {
	return len(p.animals[components.Herbivore]) + len(p.animals[components.Carnivore])
}

// Biomass returns the summed weight of one species.
func (p *Patch) Biomass(s components.Species) float64 {
	var sum float64
	for _, a := range p.animals[s] {
		sum += a.Weight
	}
	return sum
}

// Neighbors returns the adjacent patches (north, east, south, west order,
// skipping edges).
func (p *Patch) Neighbors() []*Patch {
	return p.neighbors
}

// MigrationProbabilities returns the cached destination probabilities for a
// species, aligned with Neighbors. Nil when no move is possible.
func (p *Patch) MigrationProbabilities(s components.Species) []float64 {
	return p.migration[s]
}

// AddAnimals places animals on the patch. The whole batch is rejected if the
// patch is not habitable.
func (p *Patch) AddAnimals(animals ...*components.Animal) error {
	if !p.Habitable() {
		return fmt.Errorf("%w: %s at (%d,%d)", ErrUninhabitable, p.Landscape, p.Coord.Row, p.Coord.Col)
	}
	for _, a := range animals {
		if !a.Species.Valid() {
			return fmt.Errorf("%w: %d", components.ErrUnknownSpecies, uint8(a.Species))
		}
	}
	for _, a := range animals {
		p.animals[a.Species] = append(p.animals[a.Species], a)
	}
	return nil
}

// accept takes ownership of a migrating animal.
func (p *Patch) accept(a *components.Animal) {
	p.animals[a.Species] = append(p.animals[a.Species], a)
}

// BeginYear clears the yearly flags of every resident.
func (p *Patch) BeginYear() {
	for _, s := range components.AllSpecies {
		for _, a := range p.animals[s] {
			a.ResetYear()
		}
	}
}
