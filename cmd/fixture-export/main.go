package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/kibbyd/spin-annealer/internal/config"
	"github.com/kibbyd/spin-annealer/internal/logging"
	"github.com/kibbyd/spin-annealer/internal/replay"
	"github.com/kibbyd/spin-annealer/internal/runstore"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to annealer_runs.db (archive mode)")
	runID := flag.String("run", "", "archived run to export (archive mode)")
	configPath := flag.String("config", "", "run config YAML to export (config mode)")
	desc := flag.String("desc", "", "fixture description")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	archiveMode := *dbPath != "" && *runID != ""
	configMode := *configPath != ""
	if *outPath == "" || archiveMode == configMode {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --run id --out path/to/fixture.json")
		fmt.Fprintln(os.Stderr, "       fixture-export --config path/to/config.yaml --out path/to/fixture.json")
		os.Exit(2)
	}

	var err error
	if archiveMode {
		err = exportArchived(*dbPath, *runID, *desc, *outPath)
	} else {
		err = exportConfig(*configPath, *desc, *outPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region archive-mode

// exportArchived builds a fixture from one archived run. The stored config
// and seed are re-run to pin the expectations, then cross-checked against
// the archived terminal record so a drifted binary cannot silently export a
// fixture that contradicts its own archive.
func exportArchived(dbPath, runID, desc, outPath string) error {
	store, err := runstore.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	rec, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	if rec.ConfigJSON == "" {
		return fmt.Errorf("run %s has no stored config", runID)
	}

	events, err := logging.ListEvents(store.DB(), runID)
	if err != nil {
		return err
	}
	for _, e := range events {
		if e.EventType == logging.EventPerturbation {
			return fmt.Errorf("run %s was perturbed interactively; the event log does not record the requests, export from a config instead", runID)
		}
	}

	var cfg config.RunConfig
	if err := json.Unmarshal([]byte(rec.ConfigJSON), &cfg); err != nil {
		return fmt.Errorf("parse stored config: %w", err)
	}

	if desc == "" {
		desc = fmt.Sprintf("Archive export: run %s (seed %d)", runID, rec.Seed)
	}
	f := &replay.Fixture{
		Description: desc,
		Config:      replay.FromRunConfig(cfg),
	}
	if err := replay.Record(f); err != nil {
		return fmt.Errorf("record: %w", err)
	}

	if f.Expected.Outcome != rec.Outcome || f.Expected.Iterations != rec.Iterations {
		return fmt.Errorf("re-run diverged from archive: %s@%d vs %s@%d",
			f.Expected.Outcome, f.Expected.Iterations, rec.Outcome, rec.Iterations)
	}

	return writeFixture(f, outPath)
}

// #endregion archive-mode

// #region config-mode

// exportConfig builds a fixture from a YAML run config, running it once to
// pin the expectations.
func exportConfig(configPath, desc, outPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if desc == "" {
		desc = fmt.Sprintf("Config export: %s (seed %d)", configPath, cfg.Seed)
	}
	f := &replay.Fixture{
		Description: desc,
		Config:      replay.FromRunConfig(cfg),
	}
	if err := replay.Record(f); err != nil {
		return fmt.Errorf("record: %w", err)
	}

	return writeFixture(f, outPath)
}

// #endregion config-mode

// #region output

func writeFixture(f *replay.Fixture, outPath string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}

	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	fmt.Printf("Wrote fixture to %s (%d bytes, expected %s@%d)\n",
		outPath, len(data), f.Expected.Outcome, f.Expected.Iterations)
	return nil
}

// #endregion output
