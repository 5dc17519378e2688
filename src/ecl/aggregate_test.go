package ecl

import (
	"math"
	"testing"
)

func flatCurve(n int, v float64) []float64 {
	c := make([]float64, n)
	for i := range c {
		c[i] = v
	}
	return c
}

func TestComputeECLStage1UsesTwelveMonthSlice(t *testing.T) {
	pd, err := GeneratePDCurve(0.05, 36, CurveSimple, DefaultCurveOptions())
	if err != nil {
		t.Fatal(err)
	}
	ead := flatCurve(36, 1000)
	dfs := DiscountFactors(0.03, 36)

	res, err := ComputeECL(StageS1, pd, 0.4, ead, dfs)
	if err != nil {
		t.Fatal(err)
	}

	if res.ECLAmount != res.ECL12M {
		t.Fatalf("S1 must provision the 12-month figure: amount=%v ecl12m=%v", res.ECLAmount, res.ECL12M)
	}
	if res.ECLLifetime <= res.ECL12M {
		t.Fatalf("lifetime ECL %v must exceed 12m ECL %v over a 36m horizon", res.ECLLifetime, res.ECL12M)
	}

	// Recompute the 12-month slice by hand from marginal PDs.
	var want float64
	prev := 0.0
	for i := 0; i < 12; i++ {
		want += 1000 * (pd[i] - prev) * 0.4 * dfs[i]
		prev = pd[i]
	}
	if math.Abs(res.ECL12M-want) > 1e-9 {
		t.Fatalf("ECL12M = %v, want %v", res.ECL12M, want)
	}
}

func TestComputeECLStage2UsesLifetime(t *testing.T) {
	pd, err := GeneratePDCurve(0.05, 36, CurveSimple, DefaultCurveOptions())
	if err != nil {
		t.Fatal(err)
	}
	res, err := ComputeECL(StageS2, pd, 0.4, flatCurve(36, 1000), DiscountFactors(0.03, 36))
	if err != nil {
		t.Fatal(err)
	}
	if res.ECLAmount != res.ECLLifetime {
		t.Fatalf("S2 must provision lifetime: amount=%v lifetime=%v", res.ECLAmount, res.ECLLifetime)
	}
}

func TestComputeECLMonotoneInLGD(t *testing.T) {
	pd, err := GeneratePDCurve(0.03, 24, CurveSimple, DefaultCurveOptions())
	if err != nil {
		t.Fatal(err)
	}
	ead := flatCurve(24, 500)
	dfs := DiscountFactors(0.02, 24)

	prev := -1.0
	for _, lgd := range []float64{0.1, 0.2, 0.4, 0.8, 1.0} {
		res, err := ComputeECL(StageS2, pd, lgd, ead, dfs)
		if err != nil {
			t.Fatal(err)
		}
		if res.ECLAmount < prev {
			t.Fatalf("ECL decreased when LGD increased to %v", lgd)
		}
		prev = res.ECLAmount
	}
}

func TestComputeECLMonotoneInPD(t *testing.T) {
	ead := flatCurve(24, 500)
	dfs := DiscountFactors(0.02, 24)

	base, err := GeneratePDCurve(0.03, 24, CurveSimple, DefaultCurveOptions())
	if err != nil {
		t.Fatal(err)
	}
	baseRes, err := ComputeECL(StageS2, base, 0.4, ead, dfs)
	if err != nil {
		t.Fatal(err)
	}

	// Bump a single PD point (keeping the curve monotone) and expect no decrease.
	for _, idx := range []int{0, 11, 23} {
		bumped := make([]float64, len(base))
		copy(bumped, base)
		bumped[idx] = math.Min(1, bumped[idx]+0.01)
		for i := idx + 1; i < len(bumped); i++ {
			if bumped[i] < bumped[i-1] {
				bumped[i] = bumped[i-1]
			}
		}
		res, err := ComputeECL(StageS2, bumped, 0.4, ead, dfs)
		if err != nil {
			t.Fatal(err)
		}
		if res.ECLAmount < baseRes.ECLAmount {
			t.Fatalf("ECL decreased after bumping PD_%d", idx+1)
		}
	}
}

func TestComputeECLShortHorizon(t *testing.T) {
	pd, err := GeneratePDCurve(0.05, 6, CurveSimple, DefaultCurveOptions())
	if err != nil {
		t.Fatal(err)
	}
	res, err := ComputeECL(StageS1, pd, 0.4, flatCurve(6, 100), DiscountFactors(0.03, 6))
	if err != nil {
		t.Fatal(err)
	}
	if res.PD12M != pd[5] {
		t.Fatalf("PD12M on a 6-month horizon should be the terminal point, got %v", res.PD12M)
	}
	if res.ECLAmount != res.ECL12M || res.ECL12M != res.ECLLifetime {
		t.Fatalf("6-month horizon: 12m and lifetime must coincide, got %+v", res)
	}
}

func TestComputeECLRejectsMismatchedCurves(t *testing.T) {
	pd := flatCurve(12, 0.01)
	if _, err := ComputeECL(StageS1, pd, 0.4, flatCurve(6, 100), flatCurve(12, 1)); err == nil {
		t.Fatal("expected error for mismatched curve lengths")
	}
	if _, err := ComputeECL(StageS1, nil, 0.4, nil, nil); err == nil {
		t.Fatal("expected error for empty curves")
	}
}
