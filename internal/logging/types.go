package logging

import "time"

// #region event-types
// Event types written to the run_events table.
const (
	EventConverged    = "converged"
	EventPerturbation = "perturbation"
	EventTerminated   = "terminated"
	EventStopped      = "stopped"
	EventError        = "error"
)

// #endregion event-types

// #region entry
// Entry is one row of the run event log.
type Entry struct {
	RunID      string
	EventType  string
	DetailJSON string
	Reason     string
	CreatedAt  time.Time
}

// #endregion entry
