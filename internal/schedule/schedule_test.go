package schedule

import (
	"errors"
	"math"
	"testing"
)

func TestGeometricEndpoints(t *testing.T) {
	s, err := NewGeometric(1.0, 0.01, 1000)
	if err != nil {
		t.Fatalf("geometric: %v", err)
	}
	if got := s.At(0); math.Abs(got-1.0) > 1e-12 {
		t.Fatalf("start: expected 1.0, got %f", got)
	}
	if got := s.At(999); math.Abs(got-0.01) > 1e-12 {
		t.Fatalf("end: expected 0.01, got %f", got)
	}
}

func TestGeometricMonotone(t *testing.T) {
	s, _ := NewGeometric(2.0, 0.05, 200)
	prev := math.Inf(1)
	for i := 0; i < s.Steps(); i++ {
		cur := s.At(i)
		if cur > prev {
			t.Fatalf("temperature rose at step %d: %f > %f", i, cur, prev)
		}
		prev = cur
	}
}

func TestAtClampsPastEnd(t *testing.T) {
	s, _ := NewGeometric(1.0, 0.1, 10)
	if s.At(10) != s.At(9) || s.At(5000) != s.At(9) {
		t.Fatal("At did not clamp past the final step")
	}
	if s.At(-1) != s.At(0) {
		t.Fatal("At did not clamp below zero")
	}
}

func TestLinear(t *testing.T) {
	s, err := NewLinear(1.0, 0.0, 5)
	if err != nil {
		t.Fatalf("linear: %v", err)
	}
	want := []float64{1.0, 0.75, 0.5, 0.25, 0.0}
	for i, w := range want {
		if got := s.At(i); math.Abs(got-w) > 1e-12 {
			t.Fatalf("step %d: expected %f, got %f", i, w, got)
		}
	}
}

func TestConstantZeroIsGreedy(t *testing.T) {
	s, err := NewConstant(0, 100)
	if err != nil {
		t.Fatalf("constant: %v", err)
	}
	for _, step := range []int{0, 50, 99} {
		if s.At(step) != 0 {
			t.Fatalf("step %d: expected 0", step)
		}
	}
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"geometric zero steps", func() error { _, err := NewGeometric(1, 0.1, 0); return err }()},
		{"geometric zero end", func() error { _, err := NewGeometric(1, 0, 10); return err }()},
		{"geometric rising", func() error { _, err := NewGeometric(0.1, 1, 10); return err }()},
		{"linear rising", func() error { _, err := NewLinear(0.1, 0.5, 10); return err }()},
		{"linear negative", func() error { _, err := NewLinear(-1, -2, 10); return err }()},
		{"constant negative", func() error { _, err := NewConstant(-0.5, 10); return err }()},
	}
	for _, c := range cases {
		if !errors.Is(c.err, ErrInvalidConfiguration) {
			t.Fatalf("%s: expected ErrInvalidConfiguration, got %v", c.name, c.err)
		}
	}
}

func TestTemperatures(t *testing.T) {
	s, _ := NewLinear(1.0, 0.5, 3)
	temps := Temperatures(s)
	if len(temps) != 3 || temps[0] != 1.0 || temps[2] != 0.5 {
		t.Fatalf("unexpected materialization: %v", temps)
	}
}
