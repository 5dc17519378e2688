package repository

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"riskengine/src/database"
	"riskengine/src/model"
)

// ErrScenarioNotFound is returned when a scenario id does not resolve to a
// stored overlay. Callers treat it as a validation failure, not a cache miss.
var ErrScenarioNotFound = errors.New("scenario overlay not found")

// ScenarioRepository handles read/write operations for scenario overlays.
type ScenarioRepository struct {
	db *gorm.DB
}

// NewScenarioRepository creates a new repository instance using the main read/write database.
func NewScenarioRepository() *ScenarioRepository {
	return &ScenarioRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *ScenarioRepository) WithDB(db *gorm.DB) *ScenarioRepository {
	return &ScenarioRepository{db: db}
}

// Upsert inserts or replaces an overlay keyed by its scenario id.
func (r *ScenarioRepository) Upsert(ctx context.Context, overlay *model.ScenarioOverlay) error {
	logger.WithFields(map[string]interface{}{
		"repo":        "ScenarioRepository",
		"op":          "Upsert",
		"scenario_id": overlay.ScenarioID,
	}).Debug("Upserting scenario overlay")

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scenario_id"}},
			UpdateAll: true,
		}).
		Create(overlay).Error
}

// Resolve fetches the overlay for a scenario id.
// Returns ErrScenarioNotFound if no overlay with that id exists.
func (r *ScenarioRepository) Resolve(ctx context.Context, scenarioID string) (*model.ScenarioOverlay, error) {
	var overlay model.ScenarioOverlay

	err := r.db.WithContext(ctx).
		Where("scenario_id = ?", scenarioID).
		First(&overlay).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrScenarioNotFound, scenarioID)
		}
		logger.WithFields(map[string]interface{}{
			"repo":        "ScenarioRepository",
			"op":          "Resolve",
			"scenario_id": scenarioID,
		}).WithError(err).Error("Failed to resolve scenario overlay")
		return nil, err
	}
	return &overlay, nil
}

// SeedDefaults installs the baseline and adverse overlays if they are absent.
// The baseline applies no stress; the adverse overlay shifts PDs up 100bps,
// raises LGD floors and discounts at a stressed rate.
func (r *ScenarioRepository) SeedDefaults(ctx context.Context) error {
	baseline := &model.ScenarioOverlay{
		ScenarioID:       "baseline",
		PDShiftBps:       0,
		SICRThresholdAbs: 50,  // bps
		SICRThresholdRel: 100, // pct
		BackstopDays:     30,
		DiscountRateMode: model.DiscountModeRiskFreeSpread,
		DiscountRate:     0.03,
		HorizonMonths:    60,
	}
	if err := baseline.SetLGDFloors(map[string]float64{}); err != nil {
		return err
	}

	adverse := &model.ScenarioOverlay{
		ScenarioID:       "adverse",
		PDShiftBps:       100,
		SICRThresholdAbs: 25,
		SICRThresholdRel: 50,
		BackstopDays:     30,
		DiscountRateMode: model.DiscountModeRiskFreeSpread,
		DiscountRate:     0.05,
		HorizonMonths:    60,
	}
	if err := adverse.SetLGDFloors(map[string]float64{
		model.ExposureClassCorporate:  0.30,
		model.ExposureClassRetail:     0.20,
		model.ExposureClassSME:        0.25,
		model.ExposureClassRealEstate: 0.15,
	}); err != nil {
		return err
	}

	for _, overlay := range []*model.ScenarioOverlay{baseline, adverse} {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&model.ScenarioOverlay{}).
			Where("scenario_id = ?", overlay.ScenarioID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := r.db.WithContext(ctx).Create(overlay).Error; err != nil {
			return fmt.Errorf("failed to seed scenario %s: %w", overlay.ScenarioID, err)
		}
		logger.WithFields(map[string]interface{}{
			"repo":        "ScenarioRepository",
			"op":          "SeedDefaults",
			"scenario_id": overlay.ScenarioID,
		}).Info("Seeded scenario overlay")
	}
	return nil
}
