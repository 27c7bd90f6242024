package anneal

import "github.com/kibbyd/spin-annealer/internal/fixedpoint"

// #region phase
// Phase is the run lifecycle state.
// Initialized → Annealing → {Converged → (Perturbed → Annealing) |
// Terminated}. Converged is non-terminal only if a perturbation is
// requested; otherwise the run stops advancing and answers queries
// idempotently.
type Phase string

const (
	PhaseInitialized Phase = "initialized"
	PhaseAnnealing   Phase = "annealing"
	PhaseConverged   Phase = "converged"
	PhaseTerminated  Phase = "terminated"
)

// #endregion phase

// #region outcome
// Outcome distinguishes every stopping condition in the output record.
type Outcome string

const (
	OutcomeConverged     Outcome = "converged"
	OutcomeMaxIterations Outcome = "max_iterations"
	OutcomeStopped       Outcome = "stopped"
	OutcomeError         Outcome = "error"
)

// #endregion outcome

// #region config
// Config holds the per-run knobs. Immutable for the duration of one run.
type Config struct {
	MaxIterations int
	Window        int     // fixed-point window, consecutive identical sweeps
	Tolerance     float64 // 0 = exact state identity; >0 allows energy plateaus
}

// DefaultConfig returns the standard run configuration.
func DefaultConfig() Config {
	return Config{
		MaxIterations: 1000,
		Window:        fixedpoint.DefaultWindow,
		Tolerance:     0,
	}
}

// #endregion config

// #region records
// IterationRecord is one row of the per-iteration reporting trace.
type IterationRecord struct {
	Iteration     int
	Temperature   float64
	Energy        float64
	Magnetization float64
	Accepted      int // flips accepted during the sweep
	Label         string
	StateHash     string
}

// Snapshot is an immutable view of a run, published atomically between
// sweeps so another goroutine may observe progress without locking.
type Snapshot struct {
	Phase         Phase
	Iteration     int
	Energy        float64
	Magnetization float64
	Label         string
	StateHash     string
	Spins         []int8
}

// Result is the terminal record of a Run call.
type Result struct {
	Outcome            Outcome
	Iterations         int
	FinalEnergy        float64
	FinalMagnetization float64
	FinalLabel         string
	Trace              []IterationRecord
}

// #endregion records
