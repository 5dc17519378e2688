package ecl

import (
	"fmt"
	"math"
)

// Result is the per-exposure outcome of the ECL aggregation.
type Result struct {
	Stage       Stage
	ECL12M      float64
	ECLLifetime float64
	// ECLAmount is the provisioned figure: ECL12M for stage 1, ECLLifetime
	// for stages 2 and 3.
	ECLAmount  float64
	PD12M      float64
	PDLifetime float64
}

// ComputeECL folds the PD curve, LGD, EAD projection and discount factors
// into a single expected credit loss. The sum runs over marginal default
// probabilities dPD_t = PD_t - PD_{t-1} (PD_0 = 0) so cumulative PD is never
// double-counted:
//
//	ECL = sum_t EAD_t * dPD_t * LGD * DF_t
//
// Stage 1 provisions only the first 12 months; stages 2 and 3 the full
// horizon. Increasing any PD_t or the LGD can only increase the result.
func ComputeECL(stage Stage, pdCurve []float64, lgd float64, eadCurve, discountFactors []float64) (Result, error) {
	n := len(pdCurve)
	if n == 0 {
		return Result{}, fmt.Errorf("empty pd curve")
	}
	if len(eadCurve) != n || len(discountFactors) != n {
		return Result{}, fmt.Errorf("curve length mismatch: pd=%d ead=%d df=%d", n, len(eadCurve), len(discountFactors))
	}

	var ecl12m, eclLifetime float64
	prevPD := 0.0
	for t := 0; t < n; t++ {
		marginal := pdCurve[t] - prevPD
		prevPD = pdCurve[t]
		loss := eadCurve[t] * marginal * lgd * discountFactors[t]
		if t < 12 {
			ecl12m += loss
		}
		eclLifetime += loss
	}

	res := Result{
		Stage:       stage,
		ECL12M:      ecl12m,
		ECLLifetime: eclLifetime,
	}
	if n >= 12 {
		res.PD12M = pdCurve[11]
	} else {
		res.PD12M = pdCurve[n-1]
	}
	res.PDLifetime = pdCurve[n-1]

	if stage == StageS1 {
		res.ECLAmount = res.ECL12M
	} else {
		res.ECLAmount = res.ECLLifetime
	}

	if math.IsNaN(res.ECLAmount) || res.ECLAmount < 0 {
		return Result{}, fmt.Errorf("numerically invalid ecl amount %v", res.ECLAmount)
	}
	return res, nil
}
