package perturb

import (
	"errors"
	"testing"

	"github.com/kibbyd/spin-annealer/internal/lattice"
	"github.com/kibbyd/spin-annealer/internal/rng"
)

func TestThermalNoiseFullIntensity(t *testing.T) {
	lat, _ := lattice.NewRing(10, 1.0)
	rep, err := Apply(lat, rng.NewStream(1), Request{Kind: KindThermalNoise, Intensity: 1.0})
	if err != nil {
		t.Fatalf("thermal: %v", err)
	}
	if len(rep.SpinsFlipped) != 10 {
		t.Fatalf("intensity 1.0 should flip every spin, flipped %d", len(rep.SpinsFlipped))
	}
	for i, s := range lat.Spins() {
		if s != -1 {
			t.Fatalf("spin %d not flipped", i)
		}
	}
}

func TestThermalNoiseZeroIntensity(t *testing.T) {
	lat, _ := lattice.NewRing(10, 1.0)
	rep, err := Apply(lat, rng.NewStream(1), Request{Kind: KindThermalNoise, Intensity: 0})
	if err != nil {
		t.Fatalf("thermal: %v", err)
	}
	if len(rep.SpinsFlipped) != 0 {
		t.Fatalf("intensity 0 flipped %d spins", len(rep.SpinsFlipped))
	}
}

func TestThermalNoiseDeterministic(t *testing.T) {
	a, _ := lattice.NewRing(30, 1.0)
	b, _ := lattice.NewRing(30, 1.0)
	ra, _ := Apply(a, rng.NewStream(42), Request{Kind: KindThermalNoise, Intensity: 0.3})
	rb, _ := Apply(b, rng.NewStream(42), Request{Kind: KindThermalNoise, Intensity: 0.3})
	if len(ra.SpinsFlipped) != len(rb.SpinsFlipped) {
		t.Fatalf("flip counts diverged: %d vs %d", len(ra.SpinsFlipped), len(rb.SpinsFlipped))
	}
	for i := range ra.SpinsFlipped {
		if ra.SpinsFlipped[i] != rb.SpinsFlipped[i] {
			t.Fatalf("flip order diverged at %d", i)
		}
	}
}

func TestThermalNoiseRejectsBadIntensity(t *testing.T) {
	lat, _ := lattice.NewRing(4, 1.0)
	for _, p := range []float64{-0.1, 1.5} {
		_, err := Apply(lat, rng.NewStream(1), Request{Kind: KindThermalNoise, Intensity: p})
		if !errors.Is(err, lattice.ErrInvalidConfiguration) {
			t.Fatalf("intensity %f: expected ErrInvalidConfiguration, got %v", p, err)
		}
	}
}

func TestExternalField(t *testing.T) {
	lat, _ := lattice.NewRing(4, 1.0)
	bias := []float64{0.5, 0.5, 0.5, 0.5}
	if _, err := Apply(lat, nil, Request{Kind: KindExternalField, Bias: bias}); err != nil {
		t.Fatalf("field: %v", err)
	}
	// All +1 spins with bias h=0.5 each: E = -4 (ring) - 4*0.5 = -6.
	if got := lat.Energy(); got != -6 {
		t.Fatalf("energy after bias: expected -6, got %f", got)
	}
}

func TestExternalFieldLengthMismatch(t *testing.T) {
	lat, _ := lattice.NewRing(4, 1.0)
	before := lat.Energy()
	_, err := Apply(lat, nil, Request{Kind: KindExternalField, Bias: []float64{1, 2}})
	if !errors.Is(err, lattice.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	if lat.Energy() != before {
		t.Fatal("rejected field request mutated the lattice")
	}
}

func TestForcedContradiction(t *testing.T) {
	lat, _ := lattice.NewRing(8, 1.0)
	rep, err := Apply(lat, nil, Request{Kind: KindForcedContradiction, Index: 3})
	if err != nil {
		t.Fatalf("contradiction: %v", err)
	}
	if len(rep.SpinsFlipped) != 1 || rep.SpinsFlipped[0] != 3 {
		t.Fatalf("expected exactly spin 3 flipped, got %v", rep.SpinsFlipped)
	}
	if s, _ := lat.Spin(3); s != -1 {
		t.Fatal("spin 3 not flipped")
	}
	// The flip is applied regardless of the positive energy cost.
	if got := lat.Energy(); got != -4 {
		t.Fatalf("energy after contradiction: expected -4, got %f", got)
	}
}

func TestForcedContradictionInvalidIndex(t *testing.T) {
	lat, _ := lattice.NewRing(8, 1.0)
	before := lat.Hash()
	_, err := Apply(lat, nil, Request{Kind: KindForcedContradiction, Index: 99})
	if !errors.Is(err, lattice.ErrInvalidIndex) {
		t.Fatalf("expected ErrInvalidIndex, got %v", err)
	}
	if lat.Hash() != before {
		t.Fatal("rejected request changed the spin state")
	}
}

func TestNovelCoupling(t *testing.T) {
	lat, _ := lattice.NewRing(8, 1.0)
	_, err := Apply(lat, nil, Request{Kind: KindNovelCoupling, Edge: [2]int{0, 4}, Weight: -0.5})
	if err != nil {
		t.Fatalf("coupling: %v", err)
	}
	w, _ := lat.CouplingWeight(0, 4)
	if w != -0.5 {
		t.Fatalf("bond weight: expected -0.5, got %f", w)
	}
}

func TestNovelCouplingRejections(t *testing.T) {
	lat, _ := lattice.NewRing(8, 1.0)
	_, err := Apply(lat, nil, Request{Kind: KindNovelCoupling, Edge: [2]int{0, 4}, Weight: 0})
	if !errors.Is(err, lattice.ErrInvalidConfiguration) {
		t.Fatalf("zero weight: expected ErrInvalidConfiguration, got %v", err)
	}
	_, err = Apply(lat, nil, Request{Kind: KindNovelCoupling, Edge: [2]int{0, 80}, Weight: 1})
	if !errors.Is(err, lattice.ErrInvalidIndex) {
		t.Fatalf("bad edge: expected ErrInvalidIndex, got %v", err)
	}
}

func TestUnknownKind(t *testing.T) {
	lat, _ := lattice.NewRing(4, 1.0)
	_, err := Apply(lat, nil, Request{Kind: "cosmic_ray"})
	if !errors.Is(err, lattice.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}
