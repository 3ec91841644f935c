package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "runs.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created, parents included
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	id, err := store.SaveRun(Run{
		Payload:  "bounce",
		Ticks:    120,
		Frames:   240,
		Dropped:  1,
		Reloads:  2,
		Duration: 2500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("SaveRun() returned non-uuid id %q: %v", id, err)
	}

	run, err := store.RunByID(id)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if run == nil {
		t.Fatal("RunByID() returned nil for a saved run")
	}
	if run.Payload != "bounce" || run.Ticks != 120 || run.Frames != 240 {
		t.Errorf("unexpected run: %+v", run)
	}
	if run.Dropped != 1 || run.Reloads != 2 {
		t.Errorf("unexpected counters: dropped=%d reloads=%d", run.Dropped, run.Reloads)
	}
	if run.Duration != 2500*time.Millisecond {
		t.Errorf("Duration = %v, want 2.5s", run.Duration)
	}
	if run.CreatedAt.IsZero() {
		t.Error("CreatedAt was not populated")
	}
}

func TestRunByIDMissing(t *testing.T) {
	store := openTestStore(t)

	run, err := store.RunByID(uuid.NewString())
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if run != nil {
		t.Errorf("expected nil for unknown id, got %+v", run)
	}
}

func TestSaveRunRejectsBadID(t *testing.T) {
	store := openTestStore(t)

	_, err := store.SaveRun(Run{ID: "not-a-uuid", Payload: "sample"})
	if err == nil {
		t.Fatal("expected error for invalid id")
	}
	if !strings.Contains(err.Error(), "invalid run id") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRecentRuns(t *testing.T) {
	store := openTestStore(t)

	for i, payload := range []string{"sample", "bounce", "sample", "game.so"} {
		if _, err := store.SaveRun(Run{Payload: payload, Ticks: uint64(i)}); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	all, err := store.RecentRuns("", 10)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("Expected 4 runs, got %d", len(all))
	}
	// Newest first
	if all[0].Payload != "game.so" || all[0].Ticks != 3 {
		t.Errorf("Expected newest run first, got %+v", all[0])
	}

	samples, err := store.RecentRuns("sample", 10)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("Expected 2 sample runs, got %d", len(samples))
	}

	limited, err := store.RecentRuns("", 1)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected 1 run with limit, got %d", len(limited))
	}
}

func TestClearRuns(t *testing.T) {
	store := openTestStore(t)

	store.SaveRun(Run{Payload: "sample"})
	store.SaveRun(Run{Payload: "bounce"})

	if err := store.ClearRuns("sample"); err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}

	runs, err := store.RecentRuns("", 10)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Payload != "bounce" {
		t.Errorf("Expected only the bounce run to remain, got %+v", runs)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := ExpandHome("~/.calendon/runs.db")
	if err != nil {
		t.Fatalf("ExpandHome() failed: %v", err)
	}
	if want := filepath.Join(home, ".calendon", "runs.db"); got != want {
		t.Errorf("ExpandHome() = %q, want %q", got, want)
	}

	if got, _ := ExpandHome("/abs/path.db"); got != "/abs/path.db" {
		t.Errorf("ExpandHome() changed an absolute path: %q", got)
	}
}
