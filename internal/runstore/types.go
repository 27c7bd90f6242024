package runstore

import "time"

// #region run-record
// RunRecord is the archived summary of one annealing run.
type RunRecord struct {
	RunID              string
	Seed               int64
	ConfigJSON         string
	Outcome            string
	Iterations         int
	FinalEnergy        float64
	FinalMagnetization float64
	FinalLabel         string
	FinalSpins         []int8
	CreatedAt          time.Time
}

// #endregion run-record

// #region trace-row
// TraceRow is one archived per-iteration record.
type TraceRow struct {
	RunID         string
	Iteration     int
	Temperature   float64
	Energy        float64
	Magnetization float64
	Accepted      int
	Label         string
	StateHash     string
}

// #endregion trace-row
