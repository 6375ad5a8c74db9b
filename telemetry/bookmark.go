package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPredatorRecovery BookmarkType = "predator_recovery"
	BookmarkPreyCrash        BookmarkType = "prey_crash"
	BookmarkStableEcosystem  BookmarkType = "stable_ecosystem"
	BookmarkPreyExtinct      BookmarkType = "prey_extinct"
	BookmarkPredatorExtinct  BookmarkType = "predator_extinct"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Year        int          `csv:"year" json:"year"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"year", b.Year,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []YearStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentPredMin    int  // minimum carnivore count in recent history
	recentPreyPeak   int  // peak herbivore count in recent history
	stableYearsCount int  // consecutive years with stable populations
	preyExtinct      bool // extinction already reported
	predExtinct      bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable ecosystem detection
	}
	return &BookmarkDetector{
		history:     make([]YearStats, historySize),
		historySize: historySize,
		// Negative until the first year is seen.
		recentPredMin: -1,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats YearStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		// Predator recovery: was ≤3, now ≥3x that
		if b := bd.checkPredatorRecovery(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Prey crash: dropped >30% from recent peak
		if b := bd.checkPreyCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Stable ecosystem: both populations present with low variance
		if b := bd.checkStableEcosystem(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		bookmarks = append(bookmarks, bd.checkExtinction(stats)...)
	}

	bd.addToHistory(stats)

	// Track carnivore minimum (among years with carnivores) and herbivore peak
	if stats.Carnivores > 0 && (bd.recentPredMin < 0 || stats.Carnivores < bd.recentPredMin) {
		bd.recentPredMin = stats.Carnivores
	}
	if stats.Herbivores > bd.recentPreyPeak {
		bd.recentPreyPeak = stats.Herbivores
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats YearStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns the last n years in chronological order.
func (bd *BookmarkDetector) recent(n int) []YearStats {
	size := bd.historyIdx
	if bd.historyFull {
		size = bd.historySize
	}
	if n > size {
		n = size
	}
	out := make([]YearStats, n)
	for i := 0; i < n; i++ {
		idx := (bd.historyIdx - n + i + bd.historySize) % bd.historySize
		out[i] = bd.history[idx]
	}
	return out
}

func (bd *BookmarkDetector) checkPredatorRecovery(stats YearStats) *Bookmark {
	if bd.recentPredMin <= 0 || bd.recentPredMin > 3 {
		return nil
	}

	threshold := bd.recentPredMin * 3
	if stats.Carnivores >= threshold && stats.Carnivores >= 6 {
		// Reset the minimum after triggering
		oldMin := bd.recentPredMin
		bd.recentPredMin = stats.Carnivores

		return &Bookmark{
			Type:        BookmarkPredatorRecovery,
			Year:        stats.Year,
			Description: fmt.Sprintf("Carnivores recovered from %d to %d", oldMin, stats.Carnivores),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkPreyCrash(stats YearStats) *Bookmark {
	if bd.recentPreyPeak == 0 {
		return nil
	}

	dropPercent := 1.0 - float64(stats.Herbivores)/float64(bd.recentPreyPeak)
	if dropPercent > 0.30 && stats.Herbivores < bd.recentPreyPeak-10 {
		// Reset peak after crash
		oldPeak := bd.recentPreyPeak
		bd.recentPreyPeak = stats.Herbivores

		return &Bookmark{
			Type:        BookmarkPreyCrash,
			Year:        stats.Year,
			Description: fmt.Sprintf("Herbivores crashed %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.Herbivores),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStableEcosystem(stats YearStats) *Bookmark {
	// Need both populations present
	if stats.Herbivores < 10 || stats.Carnivores < 3 {
		bd.stableYearsCount = 0
		return nil
	}

	window := bd.recent(4)
	if len(window) < 4 {
		return nil
	}

	herb := make([]float64, 0, 5)
	carn := make([]float64, 0, 5)
	for _, h := range window {
		herb = append(herb, float64(h.Herbivores))
		carn = append(carn, float64(h.Carnivores))
	}
	herb = append(herb, float64(stats.Herbivores))
	carn = append(carn, float64(stats.Carnivores))

	// Low variance: coefficient of variation < 20%
	if cv(herb) < 0.2 && cv(carn) < 0.2 {
		bd.stableYearsCount++
	} else {
		bd.stableYearsCount = 0
	}

	if bd.stableYearsCount == 5 { // trigger exactly once per stable stretch
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Year:        stats.Year,
			Description: fmt.Sprintf("Stable coexistence with %d herbivores, %d carnivores over 5+ years", stats.Herbivores, stats.Carnivores),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkExtinction(stats YearStats) []Bookmark {
	var out []Bookmark
	prev := bd.recent(1)
	if len(prev) == 0 {
		return nil
	}
	if stats.Herbivores == 0 && prev[0].Herbivores > 0 && !bd.preyExtinct {
		bd.preyExtinct = true
		out = append(out, Bookmark{
			Type:        BookmarkPreyExtinct,
			Year:        stats.Year,
			Description: fmt.Sprintf("Herbivores died out (%d the year before)", prev[0].Herbivores),
		})
	}
	if stats.Carnivores == 0 && prev[0].Carnivores > 0 && !bd.predExtinct {
		bd.predExtinct = true
		out = append(out, Bookmark{
			Type:        BookmarkPredatorExtinct,
			Year:        stats.Year,
			Description: fmt.Sprintf("Carnivores died out (%d the year before)", prev[0].Carnivores),
		})
	}
	// Re-arm once a population returns, e.g. after a late introduction.
	if stats.Herbivores > 0 {
		bd.preyExtinct = false
	}
	if stats.Carnivores > 0 {
		bd.predExtinct = false
	}
	return out
}

// cv is the coefficient of variation of a population series.
func cv(values []float64) float64 {
	mean, std := MeanStd(values)
	if mean == 0 {
		return 0
	}
	return std / mean
}
