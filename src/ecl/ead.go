package ecl

import "riskengine/src/model"

// ProjectEAD projects exposure-at-default for each month t = 1..horizonMonths.
//
// Amortizing products (loans, bonds) run straight-line to zero at maturity.
// Off-balance-sheet commitments draw at the credit conversion factor and stay
// flat. Everything else is treated as revolving: constant at the larger of the
// outstanding amount and the CCF-converted limit. Values past maturity are
// zero; the returned slice always has horizonMonths entries.
func ProjectEAD(notional float64, productType string, maturityMonths, horizonMonths int, ccf float64) []float64 {
	ead := make([]float64, horizonMonths)
	if horizonMonths <= 0 {
		return ead
	}

	switch productType {
	case model.ProductLoan, model.ProductBond:
		if maturityMonths <= 0 {
			return ead
		}
		for t := 1; t <= horizonMonths; t++ {
			if t > maturityMonths {
				break
			}
			ead[t-1] = notional * float64(maturityMonths-t) / float64(maturityMonths)
		}
	case model.ProductOffBalanceSheet:
		drawn := notional * ccf
		for t := 1; t <= horizonMonths; t++ {
			if maturityMonths > 0 && t > maturityMonths {
				break
			}
			ead[t-1] = drawn
		}
	default:
		// Revolving simplification: outstanding vs. converted limit.
		level := notional
		if converted := notional * ccf; converted > level {
			level = converted
		}
		for t := 1; t <= horizonMonths; t++ {
			if maturityMonths > 0 && t > maturityMonths {
				break
			}
			ead[t-1] = level
		}
	}
	return ead
}
