package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/systems"
)

// DistributionRow is one patch population in distribution.csv.
type DistributionRow struct {
	Year       int    `csv:"year" db:"year"`
	Row        int    `csv:"row" db:"patch_row"`
	Col        int    `csv:"col" db:"patch_col"`
	Landscape  string `csv:"landscape" db:"landscape"`
	Herbivores int    `csv:"herbivores" db:"herbivores"`
	Carnivores int    `csv:"carnivores" db:"carnivores"`
}

// DistributionRows converts an island distribution into CSV rows.
// Uninhabitable patches are omitted.
func DistributionRows(year int, dist []systems.PatchPopulation) []DistributionRow {
	rows := make([]DistributionRow, 0, len(dist))
	for _, d := range dist {
		if !d.Landscape.Habitable() {
			continue
		}
		rows = append(rows, DistributionRow{
			Year:       year,
			Row:        d.Row,
			Col:        d.Col,
			Landscape:  d.Landscape.String(),
			Herbivores: d.Herbivores,
			Carnivores: d.Carnivores,
		})
	}
	return rows
}

// csvFile is an output file that writes its header with the first record.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func (c *csvFile) write(records any) error {
	if !c.headerWritten {
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir          string
	years        csvFile
	perf         csvFile
	bookmarks    csvFile
	distribution csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		dst  *csvFile
	}{
		{"years.csv", &om.years},
		{"perf.csv", &om.perf},
		{"bookmarks.csv", &om.bookmarks},
		{"distribution.csv", &om.distribution},
	}
	for _, file := range files {
		f, err := os.Create(filepath.Join(dir, file.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", file.name, err)
		}
		file.dst.f = f
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteYear writes a year stats record to years.csv.
func (om *OutputManager) WriteYear(stats YearStats) error {
	if om == nil {
		return nil
	}
	if err := om.years.write([]YearStats{stats}); err != nil {
		return fmt.Errorf("writing year stats: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, year int) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(year)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := om.bookmarks.write([]Bookmark{b}); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// WriteDistribution appends one year's per-patch populations to distribution.csv.
func (om *OutputManager) WriteDistribution(rows []DistributionRow) error {
	if om == nil || len(rows) == 0 {
		return nil
	}
	if err := om.distribution.write(rows); err != nil {
		return fmt.Errorf("writing distribution: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.years.f, om.perf.f, om.bookmarks.f, om.distribution.f} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
