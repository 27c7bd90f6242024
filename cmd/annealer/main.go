package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/kibbyd/spin-annealer/internal/anneal"
	"github.com/kibbyd/spin-annealer/internal/config"
	"github.com/kibbyd/spin-annealer/internal/logging"
	"github.com/kibbyd/spin-annealer/internal/perturb"
	"github.com/kibbyd/spin-annealer/internal/runstore"
)

// #region main
func main() {
	configPath := flag.String("config", "", "path to run config YAML (default built-in ring)")
	seed := flag.Int64("seed", 0, "override the config seed (0 keeps config value)")
	interactive := flag.Bool("interactive", false, "prompt for perturbations after each convergence")
	flag.Parse()

	dbPath := envOr("ANNEALER_DB", "annealer_runs.db")

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	store, err := runstore.NewStore(dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	runner, err := config.BuildRunner(cfg)
	if err != nil {
		log.Fatalf("failed to build runner: %v", err)
	}

	runID := runstore.NewRunID()
	fmt.Println("Spin Annealer ready.")
	fmt.Printf("  DB: %s | Run: %s | Seed: %d | Lattice: %s/%d\n",
		dbPath, runID, cfg.Seed, cfg.Lattice.Topology, cfg.Lattice.Size)

	ctx := context.Background()
	var events []logging.Entry

	res, err := runner.Run(ctx)
	if err != nil {
		log.Fatalf("run error: %v", err)
	}
	printResult(res)
	events = append(events, eventFor(runID, res, runner.Snapshot()))

	if *interactive {
		res, events = perturbLoop(ctx, runner, runID, res, events)
	}

	rec := runstore.RunRecord{
		RunID:              runID,
		Seed:               cfg.Seed,
		ConfigJSON:         configJSON(cfg),
		Outcome:            string(res.Outcome),
		Iterations:         res.Iterations,
		FinalEnergy:        res.FinalEnergy,
		FinalMagnetization: res.FinalMagnetization,
		FinalLabel:         res.FinalLabel,
		FinalSpins:         runner.Snapshot().Spins,
	}
	if err := store.SaveRun(rec, runner.Trace()); err != nil {
		log.Fatalf("save run: %v", err)
	}
	for _, e := range events {
		if err := logging.LogEvent(store.DB(), e); err != nil {
			log.Printf("logging error: %v", err)
		}
	}
	fmt.Printf("Archived run %s (%d trace rows, %d events)\n", runID, len(runner.Trace()), len(events))
}

// #endregion main

// #region perturb-loop

// perturbLoop reads perturbation commands from stdin while the run keeps
// converging. Commands:
//
//	thermal <intensity>
//	field <bias...>          (one value is broadcast to every spin)
//	contradict <index>
//	couple <i> <j> <weight>
//	quit
func perturbLoop(ctx context.Context, runner *anneal.Runner, runID string, res anneal.Result, events []logging.Entry) (anneal.Result, []logging.Entry) {
	scanner := bufio.NewScanner(os.Stdin)
	for res.Outcome == anneal.OutcomeConverged {
		fmt.Print("perturb> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		req, err := parseCommand(line, len(runner.Snapshot().Spins))
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad command: %v\n", err)
			continue
		}
		rep, err := runner.Perturb(req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "perturbation rejected: %v\n", err)
			continue
		}
		fmt.Printf("[%s] %s\n", rep.Kind, rep.Detail)
		detail, _ := json.Marshal(rep)
		events = append(events, logging.Entry{
			RunID:      runID,
			EventType:  logging.EventPerturbation,
			DetailJSON: string(detail),
		})

		res, err = runner.Run(ctx)
		if err != nil {
			log.Printf("resume error: %v", err)
			events = append(events, logging.Entry{
				RunID:     runID,
				EventType: logging.EventError,
				Reason:    err.Error(),
			})
			break
		}
		printResult(res)
		events = append(events, eventFor(runID, res, runner.Snapshot()))
	}
	return res, events
}

// parseCommand turns one REPL line into a perturbation request.
func parseCommand(line string, n int) (perturb.Request, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "thermal":
		if len(fields) != 2 {
			return perturb.Request{}, fmt.Errorf("usage: thermal <intensity>")
		}
		intensity, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return perturb.Request{}, err
		}
		return perturb.Request{Kind: perturb.KindThermalNoise, Intensity: intensity}, nil
	case "field":
		if len(fields) < 2 {
			return perturb.Request{}, fmt.Errorf("usage: field <bias...>")
		}
		bias := make([]float64, 0, len(fields)-1)
		for _, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return perturb.Request{}, err
			}
			bias = append(bias, v)
		}
		if len(bias) == 1 && n > 1 {
			uniform := make([]float64, n)
			for i := range uniform {
				uniform[i] = bias[0]
			}
			bias = uniform
		}
		return perturb.Request{Kind: perturb.KindExternalField, Bias: bias}, nil
	case "contradict":
		if len(fields) != 2 {
			return perturb.Request{}, fmt.Errorf("usage: contradict <index>")
		}
		idx, err := strconv.Atoi(fields[1])
		if err != nil {
			return perturb.Request{}, err
		}
		return perturb.Request{Kind: perturb.KindForcedContradiction, Index: idx}, nil
	case "couple":
		if len(fields) != 4 {
			return perturb.Request{}, fmt.Errorf("usage: couple <i> <j> <weight>")
		}
		i, err := strconv.Atoi(fields[1])
		if err != nil {
			return perturb.Request{}, err
		}
		j, err := strconv.Atoi(fields[2])
		if err != nil {
			return perturb.Request{}, err
		}
		w, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return perturb.Request{}, err
		}
		return perturb.Request{Kind: perturb.KindNovelCoupling, Edge: [2]int{i, j}, Weight: w}, nil
	default:
		return perturb.Request{}, fmt.Errorf("unknown command %q", fields[0])
	}
}

// #endregion perturb-loop

// #region helpers
func printResult(res anneal.Result) {
	fmt.Printf("[RUN] outcome=%s iterations=%d energy=%.4f magnetization=%.4f label=%q\n",
		res.Outcome, res.Iterations, res.FinalEnergy, res.FinalMagnetization, res.FinalLabel)
}

// eventFor maps a run outcome to its event log entry.
func eventFor(runID string, res anneal.Result, snap anneal.Snapshot) logging.Entry {
	e := logging.Entry{RunID: runID}
	switch res.Outcome {
	case anneal.OutcomeConverged:
		e.EventType = logging.EventConverged
		e.Reason = fmt.Sprintf("fixed point at iteration %d", res.Iterations)
	case anneal.OutcomeStopped:
		e.EventType = logging.EventStopped
	case anneal.OutcomeError:
		e.EventType = logging.EventError
	default:
		e.EventType = logging.EventTerminated
		e.Reason = string(res.Outcome)
	}
	detail, _ := json.Marshal(map[string]interface{}{
		"energy":     snap.Energy,
		"label":      snap.Label,
		"state_hash": snap.StateHash,
	})
	e.DetailJSON = string(detail)
	return e
}

func configJSON(cfg config.RunConfig) string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	return string(data)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
