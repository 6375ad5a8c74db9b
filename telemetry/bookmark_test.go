package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_PreyCrash(t *testing.T) {
	bd := NewBookmarkDetector(10)

	// Build up herbivore population
	for i := 0; i < 5; i++ {
		bd.Check(YearStats{Year: i + 1, Herbivores: 100, Carnivores: 10})
	}

	// Now crash it
	bookmarks := bd.Check(YearStats{Year: 6, Herbivores: 50, Carnivores: 10})
	if !hasBookmark(bookmarks, BookmarkPreyCrash) {
		t.Error("expected prey_crash bookmark")
	}

	// The peak was reset, so a further small dip does not fire again.
	if hasBookmark(bd.Check(YearStats{Year: 7, Herbivores: 45, Carnivores: 10}), BookmarkPreyCrash) {
		t.Error("prey_crash fired twice")
	}
}

func TestBookmarkDetector_PredatorRecovery(t *testing.T) {
	bd := NewBookmarkDetector(10)

	// Carnivore population drops to critical level
	for i := 0; i < 3; i++ {
		bd.Check(YearStats{Year: i + 1, Herbivores: 100, Carnivores: 2})
	}

	// Carnivores recover to 5x the minimum
	bookmarks := bd.Check(YearStats{Year: 4, Herbivores: 100, Carnivores: 10})
	if !hasBookmark(bookmarks, BookmarkPredatorRecovery) {
		t.Error("expected predator_recovery bookmark")
	}
}

func TestBookmarkDetector_StableEcosystem(t *testing.T) {
	bd := NewBookmarkDetector(10)

	fired := 0
	for i := 0; i < 12; i++ {
		bookmarks := bd.Check(YearStats{Year: i + 1, Herbivores: 100 + i%2, Carnivores: 20})
		if hasBookmark(bookmarks, BookmarkStableEcosystem) {
			fired++
			if i != 8 {
				t.Errorf("stable_ecosystem fired in year %d, want 9", i+1)
			}
		}
	}
	if fired != 1 {
		t.Errorf("stable_ecosystem fired %d times, want 1", fired)
	}
}

func TestBookmarkDetector_Extinction(t *testing.T) {
	bd := NewBookmarkDetector(5)
	bd.Check(YearStats{Year: 1, Herbivores: 40, Carnivores: 3})

	bookmarks := bd.Check(YearStats{Year: 2, Herbivores: 35, Carnivores: 0})
	if !hasBookmark(bookmarks, BookmarkPredatorExtinct) {
		t.Fatal("expected predator_extinct bookmark")
	}
	if hasBookmark(bookmarks, BookmarkPreyExtinct) {
		t.Error("unexpected prey_extinct bookmark")
	}
	if hasBookmark(bd.Check(YearStats{Year: 3, Herbivores: 35}), BookmarkPredatorExtinct) {
		t.Error("predator_extinct reported twice")
	}

	// A late introduction re-arms the detector.
	bd.Check(YearStats{Year: 4, Herbivores: 35, Carnivores: 5})
	if !hasBookmark(bd.Check(YearStats{Year: 5, Herbivores: 30}), BookmarkPredatorExtinct) {
		t.Error("expected a second predator_extinct after reintroduction")
	}
}
