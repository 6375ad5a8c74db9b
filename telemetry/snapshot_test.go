package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/biosim/components"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:  SnapshotVersion,
		Seed:     42,
		RNGState: []byte{1, 2, 3, 4},
		Year:     100,
		Layout:   "OOO\nOJO\nOOO",
		Params:   NewParamsState(components.DefaultParamSet()),
		Patches: []PatchState{
			{
				Row:    1,
				Col:    1,
				Fodder: 612.5,
				Animals: []AnimalState{
					{Species: components.Herbivore, Age: 3, Weight: 21.5},
					{Species: components.Carnivore, Age: 7, Weight: 33},
				},
			},
		},
		Bookmark: &Bookmark{
			Type:        BookmarkPreyCrash,
			Year:        100,
			Description: "Test bookmark",
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Seed != snapshot.Seed || loaded.Year != snapshot.Year || loaded.Layout != snapshot.Layout {
		t.Errorf("header mismatch: got %d/%d/%q", loaded.Seed, loaded.Year, loaded.Layout)
	}
	if string(loaded.RNGState) != string(snapshot.RNGState) {
		t.Errorf("RNG state mismatch: got %v", loaded.RNGState)
	}
	if len(loaded.Patches) != 1 || len(loaded.Patches[0].Animals) != 2 {
		t.Fatalf("patches = %+v", loaded.Patches)
	}
	if got := loaded.Patches[0].Animals[1]; got.Species != components.Carnivore || got.Age != 7 || got.Weight != 33 {
		t.Errorf("animal = %+v", got)
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkPreyCrash {
		t.Errorf("bookmark = %+v", loaded.Bookmark)
	}

	ps, err := loaded.Params.ParamSet()
	if err != nil {
		t.Fatalf("ParamSet: %v", err)
	}
	if ps.Species(components.Carnivore).DeltaPhiMax != 10 || ps.Landscape(components.Savannah).Alpha != 0.3 {
		t.Error("parameters not restored")
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:  SnapshotVersion,
		Year:     50,
		Bookmark: &Bookmark{Type: BookmarkPreyCrash, Year: 50},
	}
	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if expected := filepath.Join(tmpDir, "snapshot_50_prey_crash.json"); path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	path, err = SaveSnapshot(&Snapshot{Version: SnapshotVersion, Year: 30}, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if expected := filepath.Join(tmpDir, "snapshot_30.json"); path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}

func TestLoadSnapshot_VersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected version error")
	}
}
