package model

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	DiscountModeEffectiveInterest = "effective_interest"
	DiscountModeRiskFreeSpread    = "risk_free_spread"
	DiscountModeMarketProxy       = "market_proxy"
)

// ScenarioOverlay is a named stress-parameter set applied on top of the base
// ECL assumptions. Overlays are immutable once a computed result references
// them; stress runs reference a different scenario id instead of editing one.
type ScenarioOverlay struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ScenarioID       string    `gorm:"size:60;uniqueIndex;not null" json:"scenario_id"`
	PDShiftBps       float64   `json:"pd_shift_bps"`
	LGDFloorByClass  string    `gorm:"type:text" json:"lgd_floor_by_class"`
	SICRThresholdAbs float64   `json:"sicr_threshold_abs"`
	SICRThresholdRel float64   `json:"sicr_threshold_rel"`
	BackstopDays     int       `gorm:"not null;default:30" json:"backstop_days"`
	DiscountRateMode string    `gorm:"size:30;not null;default:risk_free_spread" json:"discount_rate_mode"`
	DiscountRate     float64   `json:"discount_rate_value"`
	HorizonMonths    int       `gorm:"not null" json:"horizon_months"`
	CreatedAt        time.Time `json:"created_at"`
}

func (ScenarioOverlay) TableName() string {
	return "scenario_overlays"
}

// LGDFloors decodes the per-asset-class floor mapping stored as JSON.
// An empty column yields an empty map: a missing class means a zero floor.
func (s *ScenarioOverlay) LGDFloors() (map[string]float64, error) {
	floors := map[string]float64{}
	if s.LGDFloorByClass == "" {
		return floors, nil
	}
	if err := json.Unmarshal([]byte(s.LGDFloorByClass), &floors); err != nil {
		return nil, fmt.Errorf("invalid lgd_floor_by_class for scenario %s: %w", s.ScenarioID, err)
	}
	return floors, nil
}

// SetLGDFloors encodes the floor mapping into the serialized column.
func (s *ScenarioOverlay) SetLGDFloors(floors map[string]float64) error {
	raw, err := json.Marshal(floors)
	if err != nil {
		return fmt.Errorf("encode lgd floors: %w", err)
	}
	s.LGDFloorByClass = string(raw)
	return nil
}
