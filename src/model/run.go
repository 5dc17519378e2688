package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RunStatusPending   = "pending"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is one reproducible simulation unit. A run owns its exposures: they are
// written once by the generator at run creation and never mutated afterwards.
type Run struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	ParamsHash    string          `gorm:"size:64;index" json:"params_hash"`
	Status        string          `gorm:"size:20;not null;default:pending" json:"status"`
	ExposureCount int64           `json:"exposure_count"`
	TotalNotional decimal.Decimal `gorm:"type:numeric(28,8)" json:"total_notional"`
	ConfigJSON    string          `gorm:"type:text" json:"config_json,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Run) TableName() string {
	return "runs"
}
