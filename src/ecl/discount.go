package ecl

import "math"

// DiscountFactors returns DF_t = (1+r)^(-t/12) for t = 1..horizonMonths.
// The annual rate r comes from whichever source the scenario's discount mode
// selects (effective interest rate, risk-free plus spread, or market proxy);
// the formula itself is mode-independent.
func DiscountFactors(annualRate float64, horizonMonths int) []float64 {
	dfs := make([]float64, horizonMonths)
	for t := 1; t <= horizonMonths; t++ {
		dfs[t-1] = math.Pow(1+annualRate, -float64(t)/12)
	}
	return dfs
}
