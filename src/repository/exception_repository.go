package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"riskengine/src/database"
	"riskengine/src/model"
)

// ExceptionRepository persists system-level errors for auditing failed batches.
type ExceptionRepository struct {
	db *gorm.DB
}

// NewExceptionRepository creates a new repository instance using the main read/write database.
func NewExceptionRepository() *ExceptionRepository {
	return &ExceptionRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *ExceptionRepository) WithDB(db *gorm.DB) *ExceptionRepository {
	return &ExceptionRepository{db: db}
}

// Insert writes one exception row. Failures are logged but returned to the
// caller; the original error being audited always takes precedence.
func (r *ExceptionRepository) Insert(ctx context.Context, exc *model.Exception) error {
	if err := r.db.WithContext(ctx).Create(exc).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "ExceptionRepository",
			"op":     "Insert",
			"module": exc.Module,
		}).WithError(err).Error("Failed to persist exception")
		return err
	}
	return nil
}
