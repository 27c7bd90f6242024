package perturb

import (
	"fmt"

	"github.com/kibbyd/spin-annealer/internal/lattice"
	"github.com/kibbyd/spin-annealer/internal/rng"
)

// #region apply

// Apply consumes one request and applies exactly one disturbance to the
// lattice. On a rejected request (bad index, malformed bias) the lattice is
// unchanged and the run may continue; rejection is never fatal.
//
// Perturbing a non-converged lattice is permitted and has the same
// semantics: it just adds disturbance mid-run.
func Apply(lat *lattice.Lattice, stream *rng.Stream, req Request) (Report, error) {
	switch req.Kind {
	case KindThermalNoise:
		return applyThermal(lat, stream, req)
	case KindExternalField:
		return applyField(lat, req)
	case KindForcedContradiction:
		return applyContradiction(lat, req)
	case KindNovelCoupling:
		return applyCoupling(lat, req)
	default:
		return Report{}, fmt.Errorf("perturbation kind %q: %w", req.Kind, lattice.ErrInvalidConfiguration)
	}
}

// #endregion apply

// #region thermal

// applyThermal flips each spin independently with probability Intensity.
// One stream draw per spin, in index order, so the outcome is reproducible.
func applyThermal(lat *lattice.Lattice, stream *rng.Stream, req Request) (Report, error) {
	if req.Intensity < 0 || req.Intensity > 1 {
		return Report{}, fmt.Errorf("thermal intensity %f: %w", req.Intensity, lattice.ErrInvalidConfiguration)
	}
	rep := Report{Kind: KindThermalNoise}
	for i := 0; i < lat.Size(); i++ {
		if stream.Float64() < req.Intensity {
			if _, err := lat.Flip(i); err != nil {
				return Report{}, err
			}
			rep.SpinsFlipped = append(rep.SpinsFlipped, i)
		}
	}
	rep.Detail = fmt.Sprintf("flipped %d of %d spins at intensity %.3f",
		len(rep.SpinsFlipped), lat.Size(), req.Intensity)
	return rep, nil
}

// #endregion thermal

// #region field

// applyField adds a bias vector onto the external field. Spins are not
// touched directly; the new field reshapes the landscape for later sweeps.
func applyField(lat *lattice.Lattice, req Request) (Report, error) {
	if err := lat.AddField(req.Bias); err != nil {
		return Report{}, err
	}
	return Report{
		Kind:   KindExternalField,
		Detail: fmt.Sprintf("added bias vector of length %d", len(req.Bias)),
	}, nil
}

// #endregion field

// #region contradiction

// applyContradiction flips one specified spin regardless of the energy cost.
func applyContradiction(lat *lattice.Lattice, req Request) (Report, error) {
	delta, err := lat.Flip(req.Index)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Kind:         KindForcedContradiction,
		SpinsFlipped: []int{req.Index},
		Detail:       fmt.Sprintf("forced flip of spin %d (delta %.4f)", req.Index, delta),
	}, nil
}

// #endregion contradiction

// #region coupling

// applyCoupling adds one nonzero bond to the coupling graph.
func applyCoupling(lat *lattice.Lattice, req Request) (Report, error) {
	if req.Weight == 0 {
		return Report{}, fmt.Errorf("novel coupling weight must be nonzero: %w", lattice.ErrInvalidConfiguration)
	}
	if err := lat.SetCoupling(req.Edge[0], req.Edge[1], req.Weight); err != nil {
		return Report{}, err
	}
	return Report{
		Kind:   KindNovelCoupling,
		Detail: fmt.Sprintf("bond (%d,%d) set to %.4f", req.Edge[0], req.Edge[1], req.Weight),
	}, nil
}

// #endregion coupling
