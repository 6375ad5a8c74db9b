package systems

import (
	"errors"
	"testing"

	"github.com/pthm-cable/biosim/components"
)

func TestParseLayout(t *testing.T) {
	tests := []struct {
		name    string
		layout  string
		wantErr error
	}{
		{"minimal", "OOO\nOJO\nOOO", nil},
		{"all kinds", "OOOOOO\nOJSDMO\nOOOOOO", nil},
		{"indented", "   OOO  \n\n  OSO\n OOO \n", nil},
		{"ragged", "OOOO\nOJO\nOOOO", ErrInvalidLayout},
		{"land on border", "OOO\nOJJ\nOOO", ErrInvalidLayout},
		{"land on top edge", "OJO\nOJO\nOOO", ErrInvalidLayout},
		{"unknown code", "OOOO\nOJXO\nOOOO", ErrInvalidLayout},
		{"lowercase", "OOO\nOjO\nOOO", ErrInvalidLayout},
		{"empty", "  \n\n", ErrInvalidLayout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLayout(tt.layout)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewIsland(t *testing.T) {
	ps := components.DefaultParamSet()
	isl := mustIsland(t, "  OOOOO\n  OJSDO\n  OOOOO  ", ps)

	if isl.Rows() != 3 || isl.Cols() != 5 {
		t.Fatalf("size = %dx%d, want 3x5", isl.Rows(), isl.Cols())
	}
	if got := isl.Layout(); got != "OOOOO\nOJSDO\nOOOOO" {
		t.Errorf("layout = %q", got)
	}

	wantFodder := map[Coord]float64{{1, 1}: 800, {1, 2}: 300, {1, 3}: 0, {0, 0}: 0}
	for c, want := range wantFodder {
		if got := mustPatch(t, isl, c.Row, c.Col).Fodder; got != want {
			t.Errorf("fodder at %v = %v, want %v", c, got, want)
		}
	}

	if _, err := isl.Patch(Coord{3, 0}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Patch(3,0) err = %v", err)
	}
	if _, err := isl.Patch(Coord{0, -1}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Patch(0,-1) err = %v", err)
	}
}

func TestNeighbors(t *testing.T) {
	isl := mustIsland(t, "OOO\nOJO\nOOO", components.DefaultParamSet())

	coords := func(p *Patch) []Coord {
		var out []Coord
		for _, n := range p.Neighbors() {
			out = append(out, n.Coord)
		}
		return out
	}

	center := coords(mustPatch(t, isl, 1, 1))
	want := []Coord{{0, 1}, {1, 2}, {2, 1}, {1, 0}}
	if len(center) != len(want) {
		t.Fatalf("center neighbours = %v", center)
	}
	for i := range want {
		if center[i] != want[i] {
			t.Errorf("neighbour %d = %v, want %v", i, center[i], want[i])
		}
	}

	corner := coords(mustPatch(t, isl, 0, 0))
	if len(corner) != 2 || corner[0] != (Coord{0, 1}) || corner[1] != (Coord{1, 0}) {
		t.Errorf("corner neighbours = %v", corner)
	}
}

func TestAddPopulation(t *testing.T) {
	ps := components.DefaultParamSet()
	layout := "OOOO\nOJMO\nOOOO"

	valid := Placement{Loc: Coord{1, 1}, Pop: []Individual{
		{Species: components.Herbivore, Age: 5, Weight: 20},
		{Species: components.Carnivore, Age: 5, Weight: 20},
	}}

	tests := []struct {
		name    string
		batch   []Placement
		wantErr error
	}{
		{"mountain", []Placement{valid, {Loc: Coord{1, 2}, Pop: valid.Pop}}, ErrUninhabitable},
		{"ocean", []Placement{valid, {Loc: Coord{0, 0}, Pop: valid.Pop}}, ErrUninhabitable},
		{"outside", []Placement{valid, {Loc: Coord{5, 5}, Pop: valid.Pop}}, ErrOutOfBounds},
		{"no weight", []Placement{valid, {Loc: Coord{1, 1}, Pop: []Individual{{Species: components.Herbivore, Age: 1}}}}, ErrInvalidIndividual},
		{"negative age", []Placement{{Loc: Coord{1, 1}, Pop: []Individual{{Species: components.Herbivore, Age: -1, Weight: 5}}}}, ErrInvalidIndividual},
		{"bad species", []Placement{{Loc: Coord{1, 1}, Pop: []Individual{{Species: 7, Age: 1, Weight: 5}}}}, components.ErrUnknownSpecies},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isl := mustIsland(t, layout, ps)
			n, err := isl.AddPopulation(tt.batch)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if n != 0 {
				t.Errorf("added = %d, want 0", n)
			}
			if _, _, total := isl.PopulationCounts(); total != 0 {
				t.Errorf("rejected batch left %d animals", total)
			}
		})
	}

	isl := mustIsland(t, layout, ps)
	n, err := isl.AddPopulation([]Placement{valid, valid})
	if err != nil {
		t.Fatalf("AddPopulation: %v", err)
	}
	if n != 4 {
		t.Errorf("added = %d, want 4", n)
	}
	h, c, total := isl.PopulationCounts()
	if h != 2 || c != 2 || total != 4 {
		t.Errorf("counts = %d, %d, %d", h, c, total)
	}
}

func TestPopulationGridAndDistribution(t *testing.T) {
	ps := components.DefaultParamSet()
	isl := mustIsland(t, "OOOO\nOJSO\nOOOO", ps)
	_, err := isl.AddPopulation([]Placement{
		{Loc: Coord{1, 1}, Pop: []Individual{
			{Species: components.Herbivore, Age: 1, Weight: 10},
			{Species: components.Herbivore, Age: 1, Weight: 10},
		}},
		{Loc: Coord{1, 2}, Pop: []Individual{
			{Species: components.Carnivore, Age: 1, Weight: 10},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}

	herbs, carns := isl.PopulationGrid()
	if r, c := herbs.Dims(); r != 3 || c != 4 {
		t.Fatalf("grid dims = %dx%d", r, c)
	}
	if herbs.At(1, 1) != 2 || herbs.At(1, 2) != 0 || carns.At(1, 2) != 1 || carns.At(0, 0) != 0 {
		t.Errorf("unexpected grid values")
	}

	dist := isl.Distribution()
	if len(dist) != 12 {
		t.Fatalf("distribution rows = %d, want 12", len(dist))
	}
	row := dist[1*4+2]
	if row.Row != 1 || row.Col != 2 || row.Landscape != components.Savannah || row.Carnivores != 1 || row.Herbivores != 0 {
		t.Errorf("row = %+v", row)
	}
}
