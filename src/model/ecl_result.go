package model

import "time"

const (
	StageS1 = "S1"
	StageS2 = "S2"
	StageS3 = "S3"
)

// ECLResult is one row per (run, scenario, exposure) produced by the batch
// engine. A recomputation of the same batch replaces the whole row set.
type ECLResult struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	RunID           string    `gorm:"size:36;index:idx_ecl_run_scenario;not null" json:"run_id"`
	ScenarioID      string    `gorm:"size:60;index:idx_ecl_run_scenario;not null" json:"scenario_id"`
	ExposureID      uint      `gorm:"index;not null" json:"exposure_id"`
	Stage           string    `gorm:"size:2;not null" json:"stage"`
	PD12M           float64   `json:"pd_12m"`
	PDLifetime      float64   `json:"pd_lifetime"`
	LGD             float64   `json:"lgd"`
	EAD             float64   `json:"ead"`
	ECLAmount       float64   `json:"ecl_amount"`
	ECLCurrency     string    `gorm:"size:3" json:"ecl_currency"`
	SegmentID       string    `gorm:"size:120;index" json:"segment_id"`
	CalculationDate time.Time `json:"calculation_date"`
}

func (ECLResult) TableName() string {
	return "ecl_results"
}
