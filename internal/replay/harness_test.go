package replay

import (
	"testing"
)

func ringFixture() *Fixture {
	return &Fixture{
		Description: "ferromagnetic ring baseline",
		Config: FixtureConfig{
			Seed:          42,
			Size:          12,
			Topology:      "ring",
			Coupling:      1.0,
			ScheduleKind:  "geometric",
			ScheduleStart: 1.0,
			ScheduleEnd:   0.01,
			ScheduleSteps: 300,
			MaxIterations: 3000,
			Window:        5,
		},
	}
}

func TestRecordThenReplayPasses(t *testing.T) {
	f := ringFixture()
	if err := Record(f); err != nil {
		t.Fatalf("record: %v", err)
	}
	if f.Expected.Outcome == "" || f.Expected.FinalStateHash == "" {
		t.Fatalf("record left expectations empty: %+v", f.Expected)
	}

	res, err := Replay(f)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !res.Passed {
		for _, c := range res.Checks {
			if !c.OK {
				t.Errorf("check %s: expected %s, got %s", c.Name, c.Expected, c.Got)
			}
		}
		t.Fatal("recorded fixture did not replay identically")
	}
}

func TestRecordThenReplayWithPerturbations(t *testing.T) {
	f := ringFixture()
	f.Perturbations = []FixturePerturbation{
		{Kind: "forced_contradiction", Index: 3},
		{Kind: "thermal_noise", Intensity: 0.4},
	}
	if err := Record(f); err != nil {
		t.Fatalf("record: %v", err)
	}
	res, err := Replay(f)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !res.Passed {
		for _, c := range res.Checks {
			t.Logf("check %s: expected %s, got %s, ok=%v", c.Name, c.Expected, c.Got, c.OK)
		}
		t.Fatal("perturbed fixture did not replay identically")
	}
}

func TestReplayDetectsDivergence(t *testing.T) {
	f := ringFixture()
	if err := Record(f); err != nil {
		t.Fatalf("record: %v", err)
	}
	f.Expected.FinalLabel = "definitely wrong"
	f.Expected.Iterations++

	res, err := Replay(f)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if res.Passed {
		t.Fatal("replay passed against corrupted expectations")
	}
	bad := 0
	for _, c := range res.Checks {
		if !c.OK {
			bad++
		}
	}
	if bad < 2 {
		t.Fatalf("expected at least 2 failing checks, got %d", bad)
	}
}

func TestReplayRejectsInvalidConfig(t *testing.T) {
	f := ringFixture()
	f.Config.Topology = "mobius"
	if _, err := Replay(f); err == nil {
		t.Fatal("expected validation error for unknown topology")
	}
}
