package ecl

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// CurveMethod selects how the PD term structure is generated.
type CurveMethod string

const (
	CurveSimple  CurveMethod = "simple"
	CurveBeta    CurveMethod = "beta"
	CurveOverlay CurveMethod = "overlay"
)

// CurveOptions carries the method-specific parameters. Beta shape parameters
// are explicit inputs; calibration by rating belongs to the caller.
type CurveOptions struct {
	// BetaAlpha/BetaBeta shape the default-timing distribution for the beta
	// method. Alpha < Beta front-loads defaults.
	BetaAlpha float64
	BetaBeta  float64

	// OverlayShiftBps is the parallel PD shift applied by the overlay method,
	// in basis points.
	OverlayShiftBps float64

	// OverlayBase is the method the overlay shifts. Defaults to simple.
	OverlayBase CurveMethod
}

// DefaultCurveOptions returns a front-loaded beta shape and no overlay shift.
func DefaultCurveOptions() CurveOptions {
	return CurveOptions{BetaAlpha: 2, BetaBeta: 5, OverlayBase: CurveSimple}
}

// GeneratePDCurve produces the cumulative probability of default at each
// month t = 1..horizonMonths. All methods return a non-decreasing curve in
// [0, 1]; the function is pure, so the sequence can be regenerated at will.
func GeneratePDCurve(pd1y float64, horizonMonths int, method CurveMethod, opts CurveOptions) ([]float64, error) {
	if horizonMonths <= 0 {
		return nil, fmt.Errorf("horizon_months must be positive, got %d", horizonMonths)
	}
	if pd1y < 0 || pd1y > 1 || math.IsNaN(pd1y) {
		return nil, fmt.Errorf("pd_1y must be in [0,1], got %v", pd1y)
	}

	var curve []float64
	switch method {
	case CurveSimple:
		curve = simpleCurve(pd1y, horizonMonths)
	case CurveBeta:
		curve = betaCurve(pd1y, horizonMonths, opts.BetaAlpha, opts.BetaBeta)
	case CurveOverlay:
		base := opts.OverlayBase
		if base == "" || base == CurveOverlay {
			base = CurveSimple
		}
		baseCurve, err := GeneratePDCurve(pd1y, horizonMonths, base, opts)
		if err != nil {
			return nil, err
		}
		curve = overlayCurve(baseCurve, opts.OverlayShiftBps)
	default:
		return nil, fmt.Errorf("unknown pd curve method %q", method)
	}

	return monotonize(curve), nil
}

// simpleCurve compounds the annualized PD monthly: PD_t = 1-(1-pd1y)^(t/12).
func simpleCurve(pd1y float64, horizonMonths int) []float64 {
	curve := make([]float64, horizonMonths)
	survival := 1 - pd1y
	for t := 1; t <= horizonMonths; t++ {
		curve[t-1] = 1 - math.Pow(survival, float64(t)/12)
	}
	return curve
}

// betaCurve shapes default timing with a Beta(alpha, beta) CDF evaluated at
// t/horizon, scaled to the simple curve's terminal cumulative level so the
// overall lifetime default mass matches the compounding assumption.
func betaCurve(pd1y float64, horizonMonths int, alpha, beta float64) []float64 {
	if alpha <= 0 || beta <= 0 {
		alpha, beta = 2, 5
	}
	dist := distuv.Beta{Alpha: alpha, Beta: beta}
	terminal := 1 - math.Pow(1-pd1y, float64(horizonMonths)/12)

	curve := make([]float64, horizonMonths)
	for t := 1; t <= horizonMonths; t++ {
		curve[t-1] = terminal * dist.CDF(float64(t)/float64(horizonMonths))
	}
	return curve
}

// overlayCurve applies a parallel bps shift, clamped to [0, 1].
func overlayCurve(base []float64, shiftBps float64) []float64 {
	shift := shiftBps / 10000
	curve := make([]float64, len(base))
	for i, v := range base {
		curve[i] = clamp01(v + shift)
	}
	return curve
}

// monotonize guards against floating-point wiggle near pd1y = 1 and keeps the
// clamped overlay non-decreasing: each point becomes the running maximum,
// clamped to [0, 1].
func monotonize(curve []float64) []float64 {
	prev := 0.0
	for i, v := range curve {
		v = clamp01(v)
		if v < prev {
			v = prev
		}
		curve[i] = v
		prev = v
	}
	return curve
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
