package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/biosim/components"
	"github.com/pthm-cable/biosim/systems"
)

func TestNewOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v", om, err)
	}
	// A nil manager swallows writes.
	if err := om.WriteYear(YearStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManager_WritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for year := 1; year <= 3; year++ {
		if err := om.WriteYear(YearStats{Year: year, Herbivores: 10 * year}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkPreyCrash, Year: 2, Description: "crash"}); err != nil {
		t.Fatal(err)
	}
	dist := []systems.PatchPopulation{
		{Row: 0, Col: 0, Landscape: components.Ocean},
		{Row: 1, Col: 1, Landscape: components.Jungle, Herbivores: 4, Carnivores: 1},
	}
	if err := om.WriteDistribution(DistributionRows(3, dist)); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "years.csv"))
	if err != nil {
		t.Fatal(err)
	}
	var years []YearStats
	if err := gocsv.UnmarshalBytes(data, &years); err != nil {
		t.Fatalf("reading years.csv: %v", err)
	}
	if len(years) != 3 || years[2].Year != 3 || years[2].Herbivores != 30 {
		t.Errorf("years = %+v", years)
	}
	if strings.Count(string(data), "herb_births") != 1 {
		t.Error("header written more than once")
	}

	data, err = os.ReadFile(filepath.Join(dir, "distribution.csv"))
	if err != nil {
		t.Fatal(err)
	}
	var rows []DistributionRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		t.Fatalf("reading distribution.csv: %v", err)
	}
	if len(rows) != 1 || rows[0].Landscape != "Jungle" || rows[0].Herbivores != 4 {
		t.Errorf("distribution = %+v", rows)
	}
}
