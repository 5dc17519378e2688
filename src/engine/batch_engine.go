package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"riskengine/src/ecl"
	"riskengine/src/hashing"
	"riskengine/src/model"
	"riskengine/src/repository"
	"riskengine/src/store"
)

// eclResultsKind is the artifact kind under which batch outputs are cached.
const eclResultsKind = "ecl_results"

// RateSource supplies the annual risk-free rate for a currency when the
// scenario discounts in market-proxy mode.
type RateSource interface {
	AnnualRiskFreeRate(ctx context.Context, currency string) (float64, error)
}

// SegmentRollup is one per-segment aggregate of a batch.
type SegmentRollup struct {
	SegmentID string  `json:"segment_id"`
	Exposures int     `json:"exposures"`
	TotalEAD  float64 `json:"total_ead"`
	TotalECL  float64 `json:"total_ecl"`
}

// BatchResult is the outcome of one batch invocation: the per-exposure result
// table and the deterministic per-segment rollup derived from it.
type BatchResult struct {
	RunID      string
	ScenarioID string
	Table      *store.Table
	Segments   []SegmentRollup
}

// BatchEngine runs the staged ECL computation over all exposures of a run in
// one vectorized pass. Per-exposure computations are independent; the entry
// point is wrapped by the computation cache keyed on (run_id, scenario_id,
// horizon_months, engine_version), so repeated invocations with the same
// inputs are served from the artifact store.
type BatchEngine struct {
	exposures  *repository.ExposureRepository
	scenarios  *repository.ScenarioRepository
	results    *repository.ECLResultRepository
	exceptions *repository.ExceptionRepository
	cache      *store.Cache
	rates      RateSource
	cfg        Config
}

// NewBatchEngine wires the engine with its collaborators. rates may be nil
// when no scenario uses market-proxy discounting.
func NewBatchEngine(
	exposures *repository.ExposureRepository,
	scenarios *repository.ScenarioRepository,
	results *repository.ECLResultRepository,
	exceptions *repository.ExceptionRepository,
	cache *store.Cache,
	rates RateSource,
	cfg Config,
) *BatchEngine {
	return &BatchEngine{
		exposures:  exposures,
		scenarios:  scenarios,
		results:    results,
		exceptions: exceptions,
		cache:      cache,
		rates:      rates,
		cfg:        cfg,
	}
}

// Run computes (or serves from cache) the ECL batch for one run and scenario.
// The boolean reports whether the result came from the cache. Any error
// aborts the whole batch: no partial ecl_results rows survive a failure.
func (e *BatchEngine) Run(ctx context.Context, runID, scenarioID string) (*BatchResult, bool, error) {
	overlay, err := e.scenarios.Resolve(ctx, scenarioID)
	if err != nil {
		return nil, false, err
	}
	if overlay.HorizonMonths <= 0 {
		return nil, false, &ValidationError{Field: "horizon_months", Reason: fmt.Sprintf("must be positive, got %d", overlay.HorizonMonths)}
	}

	params := hashing.Params{
		"run_id":         runID,
		"scenario_id":    scenarioID,
		"horizon_months": overlay.HorizonMonths,
		"engine_version": hashing.EngineVersion,
	}

	started := time.Now()
	table, hit, err := e.cache.GetOrComputeTable(ctx, eclResultsKind, params, func() (*store.Table, error) {
		t, err := e.computeBatch(ctx, runID, overlay)
		if err != nil {
			e.auditFailure(ctx, runID, scenarioID, err)
		}
		return t, err
	})
	if err != nil {
		return nil, false, err
	}

	segments, err := rollupSegments(table)
	if err != nil {
		return nil, false, err
	}

	logger.WithFields(map[string]interface{}{
		"component":   "BatchEngine",
		"op":          "Run",
		"run_id":      runID,
		"scenario_id": scenarioID,
		"rows":        table.NumRows(),
		"segments":    len(segments),
		"cache_hit":   hit,
		"elapsed":     time.Since(started).String(),
	}).Info("ECL batch complete")

	return &BatchResult{RunID: runID, ScenarioID: scenarioID, Table: table, Segments: segments}, hit, nil
}

// computeBatch is the cache producer: it loads, validates and computes the
// whole exposure set, persists the rows transactionally and returns the
// result table. Exposure order is fixed by the repository, so two runs over
// the same inputs emit bit-identical tables.
func (e *BatchEngine) computeBatch(ctx context.Context, runID string, overlay *model.ScenarioOverlay) (*store.Table, error) {
	exposures, err := e.exposures.LoadByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if len(exposures) == 0 {
		return nil, &ValidationError{Field: "run_id", Reason: fmt.Sprintf("run %s has no exposures", runID)}
	}

	floors, err := overlay.LGDFloors()
	if err != nil {
		return nil, &ValidationError{Field: "lgd_floor_by_class", Reason: err.Error()}
	}

	segmentFields := strings.Split(e.cfg.SegmentKey, ",")
	horizon := overlay.HorizonMonths

	n := len(exposures)
	exposureIDs := make([]int64, n)
	stages := make([]string, n)
	pd12m := make([]float64, n)
	pdLifetime := make([]float64, n)
	lgds := make([]float64, n)
	eads := make([]float64, n)
	eclAmounts := make([]float64, n)
	currencies := make([]string, n)
	segments := make([]string, n)

	rows := make([]model.ECLResult, n)
	calcDate := time.Now().UTC()

	for i := range exposures {
		exp := &exposures[i]
		if err := validateExposure(exp); err != nil {
			return nil, err
		}

		stage := ecl.ClassifyStage(ecl.StagingInput{
			PDCurrent:     exp.PDCurrent,
			PDOrigination: exp.PDOrigination,
			DaysPastDue:   exp.DaysPastDue,
			Forbearance:   exp.Forbearance,
			SICRAbsBps:    overlay.SICRThresholdAbs,
			SICRRelPct:    overlay.SICRThresholdRel,
			BackstopDays:  overlay.BackstopDays,
		})

		pdCurve, err := e.pdCurve(exp.PDCurrent, horizon, overlay.PDShiftBps)
		if err != nil {
			return nil, &ComputationError{ExposureID: exp.ID, Reason: err.Error()}
		}

		lgd := ecl.AdjustLGD(exp.LGD, exp.ExposureClass, floors, e.cfg.LGDHaircutStress)

		maturityMonths := int(math.Round(exp.MaturityYears * 12))
		eadCurve := ecl.ProjectEAD(exp.Notional, exp.ProductType, maturityMonths, horizon, exp.CCF)

		rate, err := e.discountRate(ctx, overlay, exp)
		if err != nil {
			return nil, err
		}
		dfs := ecl.DiscountFactors(rate, horizon)

		res, err := ecl.ComputeECL(stage, pdCurve, lgd, eadCurve, dfs)
		if err != nil {
			return nil, &ComputationError{ExposureID: exp.ID, Reason: err.Error()}
		}

		segment := segmentID(exp, segmentFields)

		exposureIDs[i] = int64(exp.ID)
		stages[i] = string(res.Stage)
		pd12m[i] = res.PD12M
		pdLifetime[i] = res.PDLifetime
		lgds[i] = lgd
		eads[i] = exp.EAD
		eclAmounts[i] = res.ECLAmount
		currencies[i] = exp.Currency
		segments[i] = segment

		rows[i] = model.ECLResult{
			RunID:           runID,
			ScenarioID:      overlay.ScenarioID,
			ExposureID:      exp.ID,
			Stage:           string(res.Stage),
			PD12M:           res.PD12M,
			PDLifetime:      res.PDLifetime,
			LGD:             lgd,
			EAD:             exp.EAD,
			ECLAmount:       res.ECLAmount,
			ECLCurrency:     exp.Currency,
			SegmentID:       segment,
			CalculationDate: calcDate,
		}
	}

	if err := e.results.ReplaceBatch(ctx, runID, overlay.ScenarioID, rows); err != nil {
		return nil, err
	}

	return buildResultTable(exposureIDs, stages, pd12m, pdLifetime, lgds, eads, eclAmounts, currencies, segments)
}

// pdCurve generates the term structure for one exposure. A scenario PD shift
// turns the configured base method into an overlay.
func (e *BatchEngine) pdCurve(pd1y float64, horizon int, shiftBps float64) ([]float64, error) {
	opts := ecl.CurveOptions{
		BetaAlpha:       e.cfg.BetaAlpha,
		BetaBeta:        e.cfg.BetaBeta,
		OverlayShiftBps: shiftBps,
		OverlayBase:     ecl.CurveMethod(e.cfg.PDCurveMethod),
	}
	method := ecl.CurveMethod(e.cfg.PDCurveMethod)
	if shiftBps != 0 {
		method = ecl.CurveOverlay
	}
	return ecl.GeneratePDCurve(pd1y, horizon, method, opts)
}

// classSpreads approximates a funding spread per exposure class on top of the
// scenario risk-free rate when discounting in risk_free_spread mode.
var classSpreads = map[string]float64{
	model.ExposureClassSovereign:  0.0,
	model.ExposureClassBank:       0.005,
	model.ExposureClassCorporate:  0.015,
	model.ExposureClassSME:        0.02,
	model.ExposureClassRetail:     0.025,
	model.ExposureClassRealEstate: 0.015,
}

func (e *BatchEngine) discountRate(ctx context.Context, overlay *model.ScenarioOverlay, exp *model.Exposure) (float64, error) {
	switch overlay.DiscountRateMode {
	case model.DiscountModeEffectiveInterest:
		return overlay.DiscountRate, nil
	case model.DiscountModeRiskFreeSpread:
		return overlay.DiscountRate + classSpreads[exp.ExposureClass], nil
	case model.DiscountModeMarketProxy:
		if e.rates == nil {
			return 0, &ValidationError{Field: "discount_rate_mode", Reason: "market_proxy mode requires a rate source"}
		}
		rate, err := e.rates.AnnualRiskFreeRate(ctx, exp.Currency)
		if err != nil {
			return 0, fmt.Errorf("market proxy rate for %s: %w", exp.Currency, err)
		}
		return rate, nil
	}
	return 0, &ValidationError{Field: "discount_rate_mode", Reason: fmt.Sprintf("unknown mode %q", overlay.DiscountRateMode)}
}

func validateExposure(exp *model.Exposure) error {
	checks := []struct {
		field string
		bad   bool
		why   string
	}{
		{"product_type", exp.ProductType == "", "missing"},
		{"exposure_class", exp.ExposureClass == "", "missing"},
		{"currency", exp.Currency == "", "missing"},
		{"notional", exp.Notional < 0 || math.IsNaN(exp.Notional), "negative or NaN"},
		{"ead", exp.EAD < 0 || math.IsNaN(exp.EAD), "negative or NaN"},
		{"pd_current", exp.PDCurrent < 0 || exp.PDCurrent > 1 || math.IsNaN(exp.PDCurrent), "outside [0,1]"},
		{"pd_origination", exp.PDOrigination < 0 || exp.PDOrigination > 1 || math.IsNaN(exp.PDOrigination), "outside [0,1]"},
		{"lgd", exp.LGD < 0 || exp.LGD > 1 || math.IsNaN(exp.LGD), "outside [0,1]"},
		{"ccf", exp.CCF < 0 || math.IsNaN(exp.CCF), "negative or NaN"},
		{"maturity_years", exp.MaturityYears < 0 || math.IsNaN(exp.MaturityYears), "negative or NaN"},
		{"days_past_due", exp.DaysPastDue < 0, "negative"},
	}
	for _, c := range checks {
		if c.bad {
			return &ValidationError{Field: c.field, Reason: c.why, ExposureID: exp.ID}
		}
	}
	return nil
}

func segmentID(exp *model.Exposure, fields []string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		switch strings.TrimSpace(f) {
		case "exposure_class":
			parts = append(parts, exp.ExposureClass)
		case "entity":
			parts = append(parts, exp.Entity)
		case "currency":
			parts = append(parts, exp.Currency)
		case "product_type":
			parts = append(parts, exp.ProductType)
		}
	}
	return strings.Join(parts, "|")
}

func buildResultTable(
	exposureIDs []int64,
	stages []string,
	pd12m, pdLifetime, lgds, eads, eclAmounts []float64,
	currencies, segments []string,
) (*store.Table, error) {
	t := store.NewTable()
	steps := []error{
		t.AddIntColumn("exposure_id", exposureIDs),
		t.AddStringColumn("stage", stages),
		t.AddFloatColumn("pd_12m", pd12m),
		t.AddFloatColumn("pd_lifetime", pdLifetime),
		t.AddFloatColumn("lgd", lgds),
		t.AddFloatColumn("ead", eads),
		t.AddFloatColumn("ecl_amount", eclAmounts),
		t.AddStringColumn("ecl_currency", currencies),
		t.AddStringColumn("segment_id", segments),
	}
	for _, err := range steps {
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// rollupSegments groups the result table by segment id. Aggregation goes
// through a map, so the totals do not depend on row order; the output is
// sorted by segment id for a stable listing.
func rollupSegments(t *store.Table) ([]SegmentRollup, error) {
	segmentCol, err := t.Strings("segment_id")
	if err != nil {
		return nil, err
	}
	eadCol, err := t.Floats("ead")
	if err != nil {
		return nil, err
	}
	eclCol, err := t.Floats("ecl_amount")
	if err != nil {
		return nil, err
	}

	grouped := map[string]*SegmentRollup{}
	for i, seg := range segmentCol {
		r, ok := grouped[seg]
		if !ok {
			r = &SegmentRollup{SegmentID: seg}
			grouped[seg] = r
		}
		r.Exposures++
		r.TotalEAD += eadCol[i]
		r.TotalECL += eclCol[i]
	}

	rollups := make([]SegmentRollup, 0, len(grouped))
	for _, r := range grouped {
		rollups = append(rollups, *r)
	}
	sort.Slice(rollups, func(i, j int) bool { return rollups[i].SegmentID < rollups[j].SegmentID })
	return rollups, nil
}

// auditFailure records a failed batch in the exceptions table. Best effort:
// the original error always takes precedence over an audit write failure.
func (e *BatchEngine) auditFailure(ctx context.Context, runID, scenarioID string, cause error) {
	if e.exceptions == nil {
		return
	}
	_ = e.exceptions.Insert(ctx, &model.Exception{
		Service:    "ecl_engine",
		Module:     "batch_engine",
		Method:     "Run",
		RunID:      runID,
		ScenarioID: scenarioID,
		Message:    cause.Error(),
		Level:      "error",
	})
}
