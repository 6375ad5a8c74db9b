package systems

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/biosim/components"
)

// Individual describes one animal in a population placement.
type Individual struct {
	Species components.Species `yaml:"species" json:"species"`
	Age     int                `yaml:"age" json:"age"`
	Weight  float64            `yaml:"weight" json:"weight"`
}

// Placement puts a group of animals on one patch.
type Placement struct {
	Loc Coord        `yaml:"loc" json:"loc"`
	Pop []Individual `yaml:"pop" json:"pop"`
}

// PatchPopulation is one row of the island's animal distribution.
type PatchPopulation struct {
	Row        int
	Col        int
	Landscape  components.Landscape
	Herbivores int
	Carnivores int
}

// Island is the rectangular grid of patches. Its topology is fixed once
// built; only fodder and residents change.
type Island struct {
	rows, cols int
	patches    []*Patch // row-major
	layout     string
}

// ParseLayout validates a layout map and returns the landscape grid.
// Lines are trimmed and blank lines dropped. Every line must have the same
// length, the border must be ocean and every letter must be a known code.
func ParseLayout(layout string) ([][]components.Landscape, error) {
	var lines []string
	for _, line := range strings.Split(layout, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty map", ErrInvalidLayout)
	}

	width := len(lines[0])
	grid := make([][]components.Landscape, len(lines))
	for r, line := range lines {
		if len(line) != width {
			return nil, fmt.Errorf("%w: line %d has length %d, want %d", ErrInvalidLayout, r, len(line), width)
		}
		grid[r] = make([]components.Landscape, width)
		for c := 0; c < width; c++ {
			l, err := components.ParseLandscape(line[c])
			if err != nil {
				return nil, fmt.Errorf("%w: row %d col %d: %w", ErrInvalidLayout, r, c, err)
			}
			onBorder := r == 0 || r == len(lines)-1 || c == 0 || c == width-1
			if onBorder && l != components.Ocean {
				return nil, fmt.Errorf("%w: border at row %d col %d is %s, want Ocean", ErrInvalidLayout, r, c, l)
			}
			grid[r][c] = l
		}
	}
	return grid, nil
}

// NewIsland builds the island from a layout map, links every patch to its
// neighbours and fills vegetated patches to their maximum fodder.
func NewIsland(layout string, ps *components.ParamSet) (*Island, error) {
	grid, err := ParseLayout(layout)
	if err != nil {
		return nil, err
	}

	isl := &Island{rows: len(grid), cols: len(grid[0])}
	isl.patches = make([]*Patch, 0, isl.rows*isl.cols)
	var sb strings.Builder
	for r, row := range grid {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for c, l := range row {
			p := NewPatch(Coord{Row: r, Col: c}, l)
			p.SeedFodder(ps)
			isl.patches = append(isl.patches, p)
			sb.WriteByte(l.Code())
		}
	}
	isl.layout = sb.String()
	isl.link()
	return isl, nil
}

// neighborOffsets lists the von Neumann neighbourhood: north, east, south, west.
var neighborOffsets = [4]Coord{{-1, 0}, {0, 1}, {1, 0}, {0, -1}}

func (isl *Island) link() {
	for _, p := range isl.patches {
		p.neighbors = p.neighbors[:0]
		for _, off := range neighborOffsets {
			r, c := p.Coord.Row+off.Row, p.Coord.Col+off.Col
			if r < 0 || r >= isl.rows || c < 0 || c >= isl.cols {
				continue
			}
			p.neighbors = append(p.neighbors, isl.patches[r*isl.cols+c])
		}
	}
}

// Rows returns the number of rows.
func (isl *Island) Rows() int { return isl.rows }

// Cols returns the number of columns.
func (isl *Island) Cols() int { return isl.cols }

// Layout returns the normalised layout map.
func (isl *Island) Layout() string { return isl.layout }

// Patches returns every patch in row-major order.
func (isl *Island) Patches() []*Patch { return isl.patches }

// Patch returns the patch at a location.
func (isl *Island) Patch(c Coord) (*Patch, error) {
	if c.Row < 0 || c.Row >= isl.rows || c.Col < 0 || c.Col >= isl.cols {
		return nil, fmt.Errorf("%w: (%d,%d) on a %dx%d map", ErrOutOfBounds, c.Row, c.Col, isl.rows, isl.cols)
	}
	return isl.patches[c.Row*isl.cols+c.Col], nil
}

// ValidatePlacements checks a population batch without changing the island.
func (isl *Island) ValidatePlacements(placements []Placement) error {
	for _, pl := range placements {
		p, err := isl.Patch(pl.Loc)
		if err != nil {
			return err
		}
		if !p.Habitable() && len(pl.Pop) > 0 {
			return fmt.Errorf("%w: %s at (%d,%d)", ErrUninhabitable, p.Landscape, pl.Loc.Row, pl.Loc.Col)
		}
		for i, ind := range pl.Pop {
			if err := ind.validate(); err != nil {
				return fmt.Errorf("(%d,%d) animal %d: %w", pl.Loc.Row, pl.Loc.Col, i, err)
			}
		}
	}
	return nil
}

func (ind Individual) validate() error {
	if !ind.Species.Valid() {
		return fmt.Errorf("%w: %d", components.ErrUnknownSpecies, uint8(ind.Species))
	}
	if ind.Age < 0 {
		return fmt.Errorf("%w: age %d is negative", ErrInvalidIndividual, ind.Age)
	}
	if ind.Weight <= 0 {
		return fmt.Errorf("%w: weight %v must be positive", ErrInvalidIndividual, ind.Weight)
	}
	return nil
}

// AddPopulation validates a batch of placements and then inserts every
// animal. A rejected batch leaves the island unchanged.
func (isl *Island) AddPopulation(placements []Placement) (int, error) {
	if err := isl.ValidatePlacements(placements); err != nil {
		return 0, err
	}
	added := 0
	for _, pl := range placements {
		p, _ := isl.Patch(pl.Loc)
		for _, ind := range pl.Pop {
			p.accept(components.NewAnimal(ind.Species, ind.Age, ind.Weight))
			added++
		}
	}
	return added, nil
}

// Count returns the island-wide number of animals of one species.
func (isl *Island) Count(s components.Species) int {
	n := 0
	for _, p := range isl.patches {
		n += p.Count(s)
	}
	return n
}

// PopulationCounts returns the herbivore, carnivore and combined totals.
func (isl *Island) PopulationCounts() (herbivores, carnivores, total int) {
	herbivores = isl.Count(components.Herbivore)
	carnivores = isl.Count(components.Carnivore)
	return herbivores, carnivores, herbivores + carnivores
}

// PopulationGrid returns per-patch herbivore and carnivore counts as
// rows x cols matrices.
func (isl *Island) PopulationGrid() (herbivores, carnivores *mat.Dense) {
	herbivores = mat.NewDense(isl.rows, isl.cols, nil)
	carnivores = mat.NewDense(isl.rows, isl.cols, nil)
	for _, p := range isl.patches {
		herbivores.Set(p.Coord.Row, p.Coord.Col, float64(p.Count(components.Herbivore)))
		carnivores.Set(p.Coord.Row, p.Coord.Col, float64(p.Count(components.Carnivore)))
	}
	return herbivores, carnivores
}

// Distribution lists the population of every patch in row-major order.
func (isl *Island) Distribution() []PatchPopulation {
	out := make([]PatchPopulation, len(isl.patches))
	for i, p := range isl.patches {
		out[i] = PatchPopulation{
			Row:        p.Coord.Row,
			Col:        p.Coord.Col,
			Landscape:  p.Landscape,
			Herbivores: p.Count(components.Herbivore),
			Carnivores: p.Count(components.Carnivore),
		}
	}
	return out
}

// Animals calls fn for every animal on the island, patch by patch.
func (isl *Island) Animals(fn func(p *Patch, a *components.Animal)) {
	for _, p := range isl.patches {
		for _, s := range components.AllSpecies {
			for _, a := range p.animals[s] {
				fn(p, a)
			}
		}
	}
}
