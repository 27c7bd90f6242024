package anneal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/kibbyd/spin-annealer/internal/classify"
	"github.com/kibbyd/spin-annealer/internal/fixedpoint"
	"github.com/kibbyd/spin-annealer/internal/lattice"
	"github.com/kibbyd/spin-annealer/internal/perturb"
	"github.com/kibbyd/spin-annealer/internal/rng"
	"github.com/kibbyd/spin-annealer/internal/schedule"
)

// #region errors
// ErrNumericInstability means an energy or acceptance computation produced
// a non-finite value. Terminal for that run; state mutation is gated on
// valid delta computation, so nothing is partially corrupted.
var ErrNumericInstability = errors.New("non-finite value in energy computation")

// #endregion errors

// #region runner

// Runner drives Metropolis sweeps over one lattice until a fixed point,
// the iteration cap, or a cooperative stop. It exclusively owns its
// lattice, RNG stream, and history; independent runs on separate Runners
// may execute concurrently, but a single Runner is strictly sequential.
// Stop and Snapshot are the only methods safe to call from another
// goroutine while Run is in flight.
type Runner struct {
	lat      *lattice.Lattice
	stream   *rng.Stream
	sched    schedule.Schedule
	table    classify.Table
	config   Config
	detector *fixedpoint.Detector

	energy    float64 // cached; updated incrementally on accepted flips
	iteration int
	phase     Phase
	trace     []IterationRecord

	stopFlag atomic.Bool
	snap     atomic.Pointer[Snapshot]
}

// NewRunner wires a run around the given lattice. The lattice and stream
// become owned by the runner and must not be shared with another run.
func NewRunner(lat *lattice.Lattice, stream *rng.Stream, sched schedule.Schedule, table classify.Table, config Config) (*Runner, error) {
	if lat == nil || stream == nil || sched == nil {
		return nil, fmt.Errorf("nil lattice, stream, or schedule: %w", lattice.ErrInvalidConfiguration)
	}
	if config.MaxIterations <= 0 {
		return nil, fmt.Errorf("max iterations %d: %w", config.MaxIterations, lattice.ErrInvalidConfiguration)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	detector, err := fixedpoint.NewDetector(config.Window, config.Tolerance)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		lat:      lat,
		stream:   stream,
		sched:    sched,
		table:    table,
		config:   config,
		detector: detector,
		phase:    PhaseInitialized,
	}
	r.energy = lat.Energy()
	if !isFinite(r.energy) {
		return nil, fmt.Errorf("initial energy: %w", ErrNumericInstability)
	}
	r.publish()
	return r, nil
}

// #endregion runner

// #region run

// Run performs sweeps until convergence, the iteration cap, a context
// cancellation, or a Stop call. Calling Run on a finished run is an
// idempotent read of the final result. After a perturbation, Run resumes
// from the preserved iteration counter on the same RNG stream.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	switch r.phase {
	case PhaseConverged:
		return r.result(OutcomeConverged), nil
	case PhaseTerminated:
		return r.result(OutcomeMaxIterations), nil
	}

	r.phase = PhaseAnnealing
	r.publish()

	for r.iteration < r.config.MaxIterations {
		// Cooperative checkpoint between sweeps, never mid-sweep.
		select {
		case <-ctx.Done():
			return r.result(OutcomeStopped), ctx.Err()
		default:
		}
		if r.stopFlag.CompareAndSwap(true, false) {
			return r.result(OutcomeStopped), nil
		}

		temp := r.sched.At(r.iteration)
		accepted, err := r.sweep(temp)
		if err != nil {
			r.phase = PhaseTerminated
			r.publish()
			return r.result(OutcomeError), err
		}
		r.iteration++

		rec := IterationRecord{
			Iteration:     r.iteration,
			Temperature:   temp,
			Energy:        r.energy,
			Magnetization: r.lat.Magnetization(),
			Accepted:      accepted,
			Label:         r.label(),
			StateHash:     r.lat.Hash(),
		}
		r.trace = append(r.trace, rec)
		r.detector.Observe(rec.Energy, rec.StateHash)
		r.publish()

		if r.detector.Converged() {
			r.phase = PhaseConverged
			r.publish()
			return r.result(OutcomeConverged), nil
		}
	}

	r.phase = PhaseTerminated
	r.publish()
	return r.result(OutcomeMaxIterations), nil
}

// sweep proposes one flip per spin in a seed-derived order. ΔE <= 0 is
// accepted unconditionally; otherwise acceptance costs one stream draw
// against exp(-ΔE/T). Zero temperature degenerates to greedy descent and
// draws nothing.
func (r *Runner) sweep(temp float64) (int, error) {
	if !isFinite(temp) {
		return 0, fmt.Errorf("temperature: %w", ErrNumericInstability)
	}
	accepted := 0
	for _, i := range r.stream.Perm(r.lat.Size()) {
		delta, err := r.lat.FlipDelta(i)
		if err != nil {
			return accepted, err
		}
		if !isFinite(delta) {
			return accepted, fmt.Errorf("delta at spin %d: %w", i, ErrNumericInstability)
		}

		accept := delta <= 0
		if !accept && temp > 0 {
			accept = r.stream.Float64() < math.Exp(-delta/temp)
		}
		if accept {
			if _, err := r.lat.Flip(i); err != nil {
				return accepted, err
			}
			r.energy += delta
			accepted++
		}
	}
	if !isFinite(r.energy) {
		return accepted, fmt.Errorf("cached energy: %w", ErrNumericInstability)
	}
	return accepted, nil
}

// #endregion run

// #region perturb

// Perturb applies one disturbance and re-enters the annealing phase on the
// same RNG stream. The iteration counter is preserved so fixed-point
// windows never compare pre- and post-perturbation states as contiguous;
// the detector window is cleared instead. A rejected request leaves the
// run state untouched and the run may continue.
func (r *Runner) Perturb(req perturb.Request) (perturb.Report, error) {
	rep, err := perturb.Apply(r.lat, r.stream, req)
	if err != nil {
		return perturb.Report{}, err
	}
	// Field and coupling perturbations invalidate the incremental cache.
	r.energy = r.lat.Energy()
	r.detector.Reset()
	if r.phase != PhaseTerminated {
		r.phase = PhaseAnnealing
	}
	r.publish()
	return rep, nil
}

// #endregion perturb

// #region observers

// Stop requests a halt at the next between-sweep checkpoint. The request
// is consumed by the run that observes it.
func (r *Runner) Stop() {
	r.stopFlag.Store(true)
}

// Snapshot returns the immutable view published after the most recent
// sweep. Safe to call from any goroutine.
func (r *Runner) Snapshot() Snapshot {
	return *r.snap.Load()
}

// Phase returns the current lifecycle phase.
func (r *Runner) Phase() Phase {
	return r.phase
}

// Iteration returns the number of completed sweeps.
func (r *Runner) Iteration() int {
	return r.iteration
}

// Trace returns a copy of the per-iteration records so far.
func (r *Runner) Trace() []IterationRecord {
	return append([]IterationRecord(nil), r.trace...)
}

func (r *Runner) label() string {
	return r.table.Classify(classify.Features{
		Energy:        r.energy,
		EnergyPerSpin: r.energy / float64(r.lat.Size()),
		Magnetization: r.lat.Magnetization(),
	})
}

func (r *Runner) result(out Outcome) Result {
	return Result{
		Outcome:            out,
		Iterations:         r.iteration,
		FinalEnergy:        r.energy,
		FinalMagnetization: r.lat.Magnetization(),
		FinalLabel:         r.label(),
		Trace:              append([]IterationRecord(nil), r.trace...),
	}
}

func (r *Runner) publish() {
	snap := &Snapshot{
		Phase:         r.phase,
		Iteration:     r.iteration,
		Energy:        r.energy,
		Magnetization: r.lat.Magnetization(),
		Label:         r.label(),
		StateHash:     r.lat.Hash(),
		Spins:         r.lat.Spins(),
	}
	r.snap.Store(snap)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// #endregion observers
