package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"riskengine/src/database"
	"riskengine/src/model"
)

const eclInsertBatchSize = 500

// SegmentTotal is one aggregated rollup row per segment of a batch.
type SegmentTotal struct {
	SegmentID string  `json:"segment_id"`
	Rows      int64   `json:"rows"`
	TotalEAD  float64 `json:"total_ead"`
	TotalECL  float64 `json:"total_ecl"`
}

// ECLResultRepository handles read/write operations for computed ECL rows.
type ECLResultRepository struct {
	db *gorm.DB
}

// NewECLResultRepository creates a new repository instance using the main read/write database.
func NewECLResultRepository() *ECLResultRepository {
	return &ECLResultRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *ECLResultRepository) WithDB(db *gorm.DB) *ECLResultRepository {
	return &ECLResultRepository{db: db}
}

// ReplaceBatch atomically replaces all result rows for (run, scenario): the
// previous batch is deleted and the new rows inserted in one transaction, so
// a failed batch never leaves partial rows behind.
func (r *ECLResultRepository) ReplaceBatch(ctx context.Context, runID, scenarioID string, rows []model.ECLResult) error {
	logger.WithFields(map[string]interface{}{
		"repo":        "ECLResultRepository",
		"op":          "ReplaceBatch",
		"run_id":      runID,
		"scenario_id": scenarioID,
		"rows":        len(rows),
	}).Debug("Replacing ECL result batch")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("run_id = ? AND scenario_id = ?", runID, scenarioID).
			Delete(&model.ECLResult{}).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(rows, eclInsertBatchSize).Error
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":        "ECLResultRepository",
			"op":          "ReplaceBatch",
			"run_id":      runID,
			"scenario_id": scenarioID,
		}).WithError(err).Error("Failed to replace ECL result batch")
		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "ECLResultRepository",
		"op":          "ReplaceBatch",
		"run_id":      runID,
		"scenario_id": scenarioID,
		"rows":        len(rows),
	}).Info("ECL result batch persisted")

	return nil
}

// ListByRunScenario fetches all result rows for (run, scenario) ordered by
// exposure id.
func (r *ECLResultRepository) ListByRunScenario(ctx context.Context, runID, scenarioID string) ([]model.ECLResult, error) {
	var results []model.ECLResult

	err := r.db.WithContext(ctx).
		Where("run_id = ? AND scenario_id = ?", runID, scenarioID).
		Order("exposure_id ASC").
		Find(&results).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":        "ECLResultRepository",
			"op":          "ListByRunScenario",
			"run_id":      runID,
			"scenario_id": scenarioID,
		}).WithError(err).Error("Failed to list ECL results")
		return nil, err
	}
	return results, nil
}

// SegmentTotals aggregates the persisted batch by segment id. Grouping in SQL
// keeps the rollup deterministic regardless of row order.
func (r *ECLResultRepository) SegmentTotals(ctx context.Context, runID, scenarioID string) ([]SegmentTotal, error) {
	var totals []SegmentTotal

	err := r.db.WithContext(ctx).
		Model(&model.ECLResult{}).
		Select("segment_id, COUNT(*) AS rows, SUM(ead) AS total_ead, SUM(ecl_amount) AS total_ecl").
		Where("run_id = ? AND scenario_id = ?", runID, scenarioID).
		Group("segment_id").
		Order("segment_id ASC").
		Scan(&totals).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":        "ECLResultRepository",
			"op":          "SegmentTotals",
			"run_id":      runID,
			"scenario_id": scenarioID,
		}).WithError(err).Error("Failed to aggregate segment totals")
		return nil, err
	}
	return totals, nil
}
