package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/kibbyd/spin-annealer/internal/config"
	"github.com/kibbyd/spin-annealer/internal/logging"
	"github.com/kibbyd/spin-annealer/internal/replay"
	"github.com/kibbyd/spin-annealer/internal/runstore"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to annealer_runs.db (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	last := flag.Int("last", 10, "number of most recent runs to replay (DB mode)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/annealer_runs.db [--last N]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *last)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	res, err := replay.Replay(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	if res.Description != "" {
		fmt.Printf("Fixture: %s\n\n", res.Description)
	}
	printChecks(res.Checks)

	if !res.Passed {
		return 1
	}
	return 0
}

func printChecks(checks []replay.Check) {
	fmt.Printf("%-18s| %-20s| %-20s| %s\n", "Check", "Expected", "Replayed", "Match")
	fmt.Printf("%-18s+%-21s+%-21s+%s\n",
		"------------------", "---------------------", "---------------------", "------")

	matches := 0
	for _, c := range checks {
		match := "DIFF"
		if c.OK {
			match = "OK"
			matches++
		}
		fmt.Printf("%-18s| %-20s| %-20s| %s\n", c.Name, c.Expected, c.Got, match)
	}
	fmt.Printf("\nSummary: %d checks, %d match, %d diverge\n", len(checks), matches, len(checks)-matches)
}

// #endregion fixture-mode

// #region db-mode

// runDBMode re-runs archived runs from their stored config and seed, and
// compares the terminal records. Runs with perturbation events are skipped:
// the event log records what a perturbation did, not the request that
// caused it, so their trajectories cannot be reconstructed.
func runDBMode(dbPath string, last int) int {
	store, err := runstore.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	records, err := store.ListRuns(last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list runs: %v\n", err)
		return 2
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "no archived runs found")
		return 2
	}

	fmt.Printf("%-10s| %-14s| %-14s| %s\n", "Run", "Archived", "Replayed", "Match")
	fmt.Printf("%-10s+%-15s+%-15s+%s\n",
		"----------", "---------------", "---------------", "------")

	matches, skipped, total := 0, 0, 0
	for _, rec := range records {
		perturbed, err := hasPerturbations(store, rec.RunID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "events for %s: %v\n", rec.RunID, err)
			return 2
		}
		if perturbed {
			fmt.Printf("%-10s| %-14s| %-14s| SKIP (perturbed)\n", shortID(rec.RunID), rec.Outcome, "—")
			skipped++
			continue
		}
		if rec.ConfigJSON == "" {
			fmt.Printf("%-10s| %-14s| %-14s| SKIP (no config)\n", shortID(rec.RunID), rec.Outcome, "—")
			skipped++
			continue
		}

		total++
		ok, got, err := replayRecord(rec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "replay %s: %v\n", rec.RunID, err)
			return 2
		}
		match := "DIFF"
		if ok {
			match = "OK"
			matches++
		}
		archived := fmt.Sprintf("%s@%d", rec.Outcome, rec.Iterations)
		fmt.Printf("%-10s| %-14s| %-14s| %s\n", shortID(rec.RunID), archived, got, match)
	}

	diverge := total - matches
	fmt.Printf("\nSummary: %d replayed, %d match, %d diverge, %d skipped\n", total, matches, diverge, skipped)
	if diverge > 0 {
		return 1
	}
	return 0
}

// replayRecord re-runs one archived record and reports whether the terminal
// record matches.
func replayRecord(rec runstore.RunRecord) (bool, string, error) {
	var cfg config.RunConfig
	if err := json.Unmarshal([]byte(rec.ConfigJSON), &cfg); err != nil {
		return false, "", fmt.Errorf("parse config: %w", err)
	}

	f := &replay.Fixture{
		Config: replay.FromRunConfig(cfg),
		Expected: replay.FixtureExpected{
			Outcome:     rec.Outcome,
			Iterations:  rec.Iterations,
			FinalEnergy: rec.FinalEnergy,
			FinalLabel:  rec.FinalLabel,
		},
	}
	res, err := replay.Replay(f)
	if err != nil {
		return false, "", err
	}

	got := fmt.Sprintf("%s@%d", res.Result.Outcome, res.Result.Iterations)
	ok := res.Passed && math.Abs(res.Result.FinalMagnetization-rec.FinalMagnetization) <= 1e-9
	return ok, got, nil
}

func hasPerturbations(store *runstore.Store, runID string) (bool, error) {
	events, err := logging.ListEvents(store.DB(), runID)
	if err != nil {
		return false, err
	}
	for _, e := range events {
		if e.EventType == logging.EventPerturbation {
			return true, nil
		}
	}
	return false, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion db-mode
