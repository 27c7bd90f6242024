package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kibbyd/spin-annealer/internal/logging"
	"github.com/kibbyd/spin-annealer/internal/runstore"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to annealer_runs.db")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail")
	trace := flag.Int("trace", 10, "trace rows to show in detail mode (0 hides the trace)")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/annealer_runs.db [--last N] [--run id] [--trace N] [--json]")
		os.Exit(2)
	}

	store, err := runstore.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *runID != "" {
		if err := runDetailMode(store, *runID, *trace, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	} else {
		if err := runListMode(store, *last, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID         string  `json:"run_id"`
	Seed          int64   `json:"seed"`
	Outcome       string  `json:"outcome"`
	Iterations    int     `json:"iterations"`
	FinalEnergy   float64 `json:"final_energy"`
	Magnetization float64 `json:"final_magnetization"`
	Label         string  `json:"final_label"`
	CreatedAt     string  `json:"created_at"`
}

func runListMode(store *runstore.Store, last int, jsonOut bool) error {
	records, err := store.ListRuns(last)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	rows := make([]listRow, len(records))
	for i, rec := range records {
		rows[i] = listRow{
			RunID:         rec.RunID,
			Seed:          rec.Seed,
			Outcome:       rec.Outcome,
			Iterations:    rec.Iterations,
			FinalEnergy:   rec.FinalEnergy,
			Magnetization: rec.FinalMagnetization,
			Label:         rec.FinalLabel,
			CreatedAt:     rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %8s  %-14s  %6s  %10s  %7s  %-18s  %s\n",
		"Run", "Seed", "Outcome", "Iters", "Energy", "Mag", "Label", "Time")
	fmt.Printf("%-10s+-%8s+-%-14s+-%6s+-%10s+-%7s+-%-18s+-%s\n",
		"----------", "--------", "--------------", "------", "----------", "-------", "------------------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-10s  %8d  %-14s  %6d  %10.4f  %7.4f  %-18s  %s\n",
			shortID(r.RunID), r.Seed, r.Outcome, r.Iterations, r.FinalEnergy,
			r.Magnetization, r.Label, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	listRow
	Spins  string          `json:"spins"`
	Events []eventRow      `json:"events,omitempty"`
	Trace  []traceRowShort `json:"trace,omitempty"`
}

type eventRow struct {
	EventType string `json:"event_type"`
	Reason    string `json:"reason,omitempty"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}

type traceRowShort struct {
	Iteration     int     `json:"iteration"`
	Temperature   float64 `json:"temperature"`
	Energy        float64 `json:"energy"`
	Magnetization float64 `json:"magnetization"`
	Accepted      int     `json:"accepted"`
	Label         string  `json:"label"`
}

func runDetailMode(store *runstore.Store, runID string, traceN int, jsonOut bool) error {
	rec, err := store.GetRun(runID)
	if err != nil {
		return err
	}

	out := detailOutput{
		listRow: listRow{
			RunID:         rec.RunID,
			Seed:          rec.Seed,
			Outcome:       rec.Outcome,
			Iterations:    rec.Iterations,
			FinalEnergy:   rec.FinalEnergy,
			Magnetization: rec.FinalMagnetization,
			Label:         rec.FinalLabel,
			CreatedAt:     rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
		},
		Spins: renderSpins(rec.FinalSpins),
	}

	events, err := logging.ListEvents(store.DB(), rec.RunID)
	if err != nil {
		return err
	}
	for _, e := range events {
		out.Events = append(out.Events, eventRow{
			EventType: e.EventType,
			Reason:    e.Reason,
			Detail:    e.DetailJSON,
			CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}

	if traceN > 0 {
		rows, err := store.Trace(rec.RunID)
		if err != nil {
			return err
		}
		if len(rows) > traceN {
			rows = rows[len(rows)-traceN:]
		}
		for _, r := range rows {
			out.Trace = append(out.Trace, traceRowShort{
				Iteration:     r.Iteration,
				Temperature:   r.Temperature,
				Energy:        r.Energy,
				Magnetization: r.Magnetization,
				Accepted:      r.Accepted,
				Label:         r.Label,
			})
		}
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Run:           %s\n", out.RunID)
	fmt.Printf("Seed:          %d\n", out.Seed)
	fmt.Printf("Created:       %s\n", out.CreatedAt)
	fmt.Printf("Outcome:       %s\n", out.Outcome)
	fmt.Printf("Iterations:    %d\n", out.Iterations)
	fmt.Printf("Energy:        %.4f\n", out.FinalEnergy)
	fmt.Printf("Magnetization: %.4f\n", out.Magnetization)
	fmt.Printf("Label:         %s\n", out.Label)
	fmt.Printf("Spins:         %s\n", out.Spins)

	if len(out.Events) > 0 {
		fmt.Printf("\nEvents:\n")
		for _, e := range out.Events {
			line := e.EventType
			if e.Reason != "" {
				line += ": " + e.Reason
			}
			fmt.Printf("  %-22s %s\n", e.CreatedAt, line)
		}
	}

	if len(out.Trace) > 0 {
		fmt.Printf("\nTrace (last %d):\n", len(out.Trace))
		fmt.Printf("  %6s  %8s  %10s  %7s  %8s  %s\n",
			"Iter", "Temp", "Energy", "Mag", "Accepted", "Label")
		for _, r := range out.Trace {
			fmt.Printf("  %6d  %8.4f  %10.4f  %7.4f  %8d  %s\n",
				r.Iteration, r.Temperature, r.Energy, r.Magnetization, r.Accepted, r.Label)
		}
	}

	return nil
}

// #endregion detail-mode

// #region output

// renderSpins draws the spin vector as +/- glyphs.
func renderSpins(spins []int8) string {
	var b strings.Builder
	for _, s := range spins {
		if s > 0 {
			b.WriteByte('+')
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
