package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"riskengine/src/database"
	"riskengine/src/model"
)

const exposureInsertBatchSize = 500

// ExposureRepository loads and writes the canonical exposure rows of a run.
// Rows are written once by the generator; the engine only reads them.
type ExposureRepository struct {
	db *gorm.DB
}

// NewExposureRepository creates a new repository instance using the main read/write database.
func NewExposureRepository() *ExposureRepository {
	return &ExposureRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *ExposureRepository) WithDB(db *gorm.DB) *ExposureRepository {
	return &ExposureRepository{db: db}
}

// BulkInsert writes the generated exposures of a run in batches.
func (r *ExposureRepository) BulkInsert(ctx context.Context, exposures []model.Exposure) error {
	if len(exposures) == 0 {
		return nil
	}

	logger.WithFields(map[string]interface{}{
		"repo":   "ExposureRepository",
		"op":     "BulkInsert",
		"run_id": exposures[0].RunID,
		"rows":   len(exposures),
	}).Debug("Bulk inserting exposures")

	err := r.db.WithContext(ctx).
		CreateInBatches(exposures, exposureInsertBatchSize).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "ExposureRepository",
			"op":   "BulkInsert",
		}).WithError(err).Error("Failed to bulk insert exposures")
		return err
	}
	return nil
}

// LoadByRun fetches all exposures owned by a run, ordered by primary key so
// repeated loads see the same row order.
func (r *ExposureRepository) LoadByRun(ctx context.Context, runID string) ([]model.Exposure, error) {
	logger.WithFields(map[string]interface{}{
		"repo":   "ExposureRepository",
		"op":     "LoadByRun",
		"run_id": runID,
	}).Debug("Loading exposures for run")

	var exposures []model.Exposure

	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("id ASC").
		Find(&exposures).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "ExposureRepository",
			"op":     "LoadByRun",
			"run_id": runID,
		}).WithError(err).Error("Failed to load exposures")
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "ExposureRepository",
		"op":          "LoadByRun",
		"run_id":      runID,
		"rows_return": len(exposures),
	}).Info("Exposures loaded")

	return exposures, nil
}

// CountByRun returns the number of exposures owned by a run.
func (r *ExposureRepository) CountByRun(ctx context.Context, runID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Exposure{}).
		Where("run_id = ?", runID).
		Count(&count).Error
	return count, err
}
