package logging

import (
	"path/filepath"
	"testing"

	"github.com/kibbyd/spin-annealer/internal/anneal"
	"github.com/kibbyd/spin-annealer/internal/runstore"
)

func TestLogAndListEvents(t *testing.T) {
	store, err := runstore.NewStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	runID := runstore.NewRunID()
	rec := runstore.RunRecord{
		RunID:      runID,
		Seed:       1,
		Outcome:    "converged",
		Iterations: 1,
		FinalLabel: "disordered",
		FinalSpins: []int8{1, -1},
	}
	if err := store.SaveRun(rec, []anneal.IterationRecord{}); err != nil {
		t.Fatalf("save run: %v", err)
	}

	entries := []Entry{
		{RunID: runID, EventType: EventConverged, Reason: "fixed point at iteration 40"},
		{RunID: runID, EventType: EventPerturbation, DetailJSON: `{"kind":"thermal_noise"}`},
		{RunID: runID, EventType: EventTerminated},
	}
	for _, e := range entries {
		if err := LogEvent(store.DB(), e); err != nil {
			t.Fatalf("log %s: %v", e.EventType, err)
		}
	}

	got, err := ListEvents(store.DB(), runID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0].EventType != EventConverged || got[0].Reason != "fixed point at iteration 40" {
		t.Fatalf("first event mismatch: %+v", got[0])
	}
	if got[1].DetailJSON != `{"kind":"thermal_noise"}` {
		t.Fatalf("detail json mismatch: %+v", got[1])
	}
	if got[2].CreatedAt.IsZero() {
		t.Fatal("created_at not backfilled")
	}
}

func TestListEventsEmpty(t *testing.T) {
	store, err := runstore.NewStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	got, err := ListEvents(store.DB(), "nothing")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no events, got %d", len(got))
	}
}
