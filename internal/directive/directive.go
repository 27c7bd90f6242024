package directive

import (
	"fmt"
	"math"
)

// #region evaluate

// Evaluate checks hard vetoes first, then scores mutual benefit. It is a
// pure function: no internal state, identical input gives identical output.
func Evaluate(a Action, cfg Config) Decision {
	var vetoes []Veto

	// --- Hard veto pass ---

	// 1. Malformed input
	if !isFinite(a.BenefitSelf) || !isFinite(a.BenefitOther) {
		vetoes = append(vetoes, Veto{
			Type:   VetoMalformed,
			Reason: "non-finite benefit value",
		})
	}

	// 2. Coercion
	if a.Coerced {
		vetoes = append(vetoes, Veto{
			Type:   VetoCoercion,
			Reason: "action obtained under coercion",
		})
	}

	// 3. Deception
	if a.Deceptive {
		vetoes = append(vetoes, Veto{
			Type:   VetoDeception,
			Reason: "action relies on deception",
		})
	}

	// 4. Parasitism: gain for self at the other's expense
	if a.BenefitSelf > 0 && a.BenefitOther < 0 {
		vetoes = append(vetoes, Veto{
			Type:   VetoParasitism,
			Reason: fmt.Sprintf("self gains %.2f while other loses %.2f", a.BenefitSelf, -a.BenefitOther),
		})
	}

	// 5. Irreversible harm
	if a.Irreversible && a.BenefitOther < 0 {
		vetoes = append(vetoes, Veto{
			Type:   VetoIrreversible,
			Reason: "irreversible action with negative benefit to other",
		})
	}

	if len(vetoes) > 0 {
		return Decision{
			Verdict: VerdictDeny,
			Reason:  fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
			Vetoes:  vetoes,
			Score:   0,
		}
	}

	// --- Soft scoring ---
	score := mutualBenefitScore(a)

	verdict := VerdictAllow
	switch {
	case score < cfg.CautionFloor:
		verdict = VerdictCaution
	case a.Irreversible:
		// Net-positive but irreversible still deserves a second look.
		verdict = VerdictCaution
	}

	return Decision{
		Verdict: verdict,
		Reason:  fmt.Sprintf("mutual benefit score %.4f", score),
		Score:   score,
	}
}

// #endregion evaluate

// #region helpers

// mutualBenefitScore produces a 0-1 composite weighting the other's
// benefit above the actor's own.
func mutualBenefitScore(a Action) float64 {
	return 0.4*clamp01(a.BenefitSelf) + 0.6*clamp01(a.BenefitOther)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// #endregion helpers
