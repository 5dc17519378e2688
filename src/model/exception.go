package model

import "time"

// Exception is a persisted system-level error kept for auditing failed batch
// runs. A failed ECL batch writes one row here alongside the run's failed
// status so operators can see why a scenario aborted.
type Exception struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Where the error happened
	Service string `gorm:"size:100;index" json:"service"` // e.g. "ecl_engine"
	Module  string `gorm:"size:100;index" json:"module"`  // e.g. "batch_engine"
	Method  string `gorm:"size:100" json:"method"`        // e.g. "Run"

	// What failed
	RunID      string `gorm:"size:36;index" json:"run_id,omitempty"`
	ScenarioID string `gorm:"size:60" json:"scenario_id,omitempty"`
	Message    string `gorm:"type:text" json:"message"`

	// Severity level: debug | info | warn | error | fatal
	Level string `gorm:"size:20;index" json:"level"`

	// Extra context stored as JSON (optional)
	Context string `gorm:"type:text" json:"context,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (Exception) TableName() string {
	return "exceptions"
}
