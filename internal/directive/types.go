package directive

// #region verdict
// Verdict is the outcome of evaluating one action.
type Verdict string

const (
	VerdictAllow   Verdict = "allow"
	VerdictCaution Verdict = "caution"
	VerdictDeny    Verdict = "deny"
)

// #endregion verdict

// #region veto-type
// VetoType enumerates hard veto categories.
type VetoType string

const (
	VetoParasitism   VetoType = "parasitism"
	VetoCoercion     VetoType = "coercion"
	VetoDeception    VetoType = "deception"
	VetoIrreversible VetoType = "irreversible_harm"
	VetoMalformed    VetoType = "malformed_action"
)

// #endregion veto-type

// #region action
// Action is a caller-supplied description of a proposed action. Benefits
// are signed: positive is gain, negative is cost, on whatever scale the
// caller uses consistently.
type Action struct {
	Name         string
	BenefitSelf  float64
	BenefitOther float64
	Irreversible bool
	Coerced      bool
	Deceptive    bool
}

// #endregion action

// #region config
// Config holds the evaluation thresholds.
type Config struct {
	CautionFloor float64 // mutual-benefit score below this is caution, not allow
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{CautionFloor: 0.25}
}

// #endregion config

// #region decision
// Veto is one detected hard veto condition.
type Veto struct {
	Type   VetoType
	Reason string
}

// Decision is the output of Evaluate.
type Decision struct {
	Verdict Verdict
	Reason  string
	Vetoes  []Veto  // non-empty iff Verdict is deny
	Score   float64 // 0-1 mutual-benefit composite, 0 when vetoed
}

// #endregion decision
