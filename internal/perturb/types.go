package perturb

// #region kind
// Kind enumerates the disturbance variants.
type Kind string

const (
	KindThermalNoise        Kind = "thermal_noise"
	KindExternalField       Kind = "external_field"
	KindForcedContradiction Kind = "forced_contradiction"
	KindNovelCoupling       Kind = "novel_coupling"
)

// #endregion kind

// #region request
// Request is a tagged perturbation variant, created by the caller and
// consumed exactly once. Only the fields for the tagged Kind are read.
type Request struct {
	Kind Kind

	Intensity float64   // thermal noise: per-spin flip probability in [0,1]
	Bias      []float64 // external field: added onto the field vector
	Index     int       // forced contradiction: spin to flip
	Edge      [2]int    // novel coupling: endpoints
	Weight    float64   // novel coupling: bond weight, nonzero
}

// #endregion request

// #region report
// Report describes what a successfully applied perturbation changed.
type Report struct {
	Kind         Kind
	SpinsFlipped []int
	Detail       string
}

// #endregion report
