package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"riskengine/src/database"
	"riskengine/src/model"
)

// RunRepository handles read/write operations for simulation runs.
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a new repository instance using the main read/write database.
func NewRunRepository() *RunRepository {
	return &RunRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *RunRepository) WithDB(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run. The run starts in pending status.
func (r *RunRepository) Create(ctx context.Context, run *model.Run) error {
	logger.WithFields(map[string]interface{}{
		"repo":   "RunRepository",
		"op":     "Create",
		"run_id": run.ID,
	}).Debug("Creating new run")

	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "RunRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create run")
		return err
	}
	return nil
}

// FindByID fetches a single run by its UUID.
// Returns (nil, nil) if the run is not found.
func (r *RunRepository) FindByID(ctx context.Context, runID string) (*model.Run, error) {
	var run model.Run

	err := r.db.WithContext(ctx).
		Where("id = ?", runID).
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithFields(map[string]interface{}{
			"repo":   "RunRepository",
			"op":     "FindByID",
			"run_id": runID,
		}).WithError(err).Error("Failed to fetch run")
		return nil, err
	}
	return &run, nil
}

// MarkCompleted transitions a run to completed and records its totals.
func (r *RunRepository) MarkCompleted(ctx context.Context, runID string, exposureCount int64, totalNotional decimal.Decimal) error {
	logger.WithFields(map[string]interface{}{
		"repo":           "RunRepository",
		"op":             "MarkCompleted",
		"run_id":         runID,
		"exposure_count": exposureCount,
	}).Info("Marking run completed")

	return r.db.WithContext(ctx).
		Model(&model.Run{}).
		Where("id = ?", runID).
		Updates(map[string]interface{}{
			"status":         model.RunStatusCompleted,
			"exposure_count": exposureCount,
			"total_notional": totalNotional,
		}).Error
}

// MarkFailed transitions a run to failed status.
func (r *RunRepository) MarkFailed(ctx context.Context, runID string) error {
	logger.WithFields(map[string]interface{}{
		"repo":   "RunRepository",
		"op":     "MarkFailed",
		"run_id": runID,
	}).Warn("Marking run failed")

	return r.db.WithContext(ctx).
		Model(&model.Run{}).
		Where("id = ?", runID).
		Update("status", model.RunStatusFailed).Error
}
