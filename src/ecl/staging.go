package ecl

import "riskengine/src/model"

// Stage is the IFRS9 credit-quality bucket of an exposure. S1 provisions a
// 12-month loss horizon, S2 and S3 the full lifetime.
type Stage string

const (
	StageS1 Stage = model.StageS1
	StageS2 Stage = model.StageS2
	StageS3 Stage = model.StageS3

	// DefaultDPD is the days-past-due count at which an exposure is
	// considered defaulted regardless of any other signal.
	DefaultDPD = 90
)

// StagingInput carries the per-exposure signals and the scenario's SICR
// thresholds. Inputs are assumed pre-validated: negative or NaN values must be
// rejected before this point.
type StagingInput struct {
	PDCurrent     float64
	PDOrigination float64
	DaysPastDue   int
	Forbearance   bool
	SICRAbsBps    float64 // absolute PD increase threshold, basis points
	SICRRelPct    float64 // relative PD increase threshold, percent
	BackstopDays  int     // days past due triggering S2, default 30
}

// ClassifyStage assigns the IFRS9 stage. Rules in priority order: 90+ days
// past due is always S3; then the S2 triggers (backstop days past due,
// forbearance, absolute SICR, relative SICR - both thresholds boundary
// inclusive); otherwise S1.
func ClassifyStage(in StagingInput) Stage {
	if in.DaysPastDue >= DefaultDPD {
		return StageS3
	}

	backstop := in.BackstopDays
	if backstop <= 0 {
		backstop = 30
	}

	if in.DaysPastDue > backstop || in.Forbearance {
		return StageS2
	}
	if in.PDCurrent-in.PDOrigination >= in.SICRAbsBps/10000 {
		return StageS2
	}
	if in.PDOrigination > 0 && in.PDCurrent/in.PDOrigination-1 >= in.SICRRelPct/100 {
		return StageS2
	}
	return StageS1
}
