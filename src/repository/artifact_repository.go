package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"riskengine/src/database"
	"riskengine/src/model"
)

// ArtifactRepository handles the cache_entries rows backing the artifact
// store. The payload column is only populated in inline mode; in file mode
// the row carries the file reference instead.
type ArtifactRepository struct {
	db *gorm.DB
}

// NewArtifactRepository creates a new repository instance using the main read/write database.
func NewArtifactRepository() *ArtifactRepository {
	return &ArtifactRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *ArtifactRepository) WithDB(db *gorm.DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

// Put inserts or replaces the entry keyed by (kind, params_hash).
func (r *ArtifactRepository) Put(ctx context.Context, entry *model.CacheEntry) error {
	logger.WithFields(map[string]interface{}{
		"repo":        "ArtifactRepository",
		"op":          "Put",
		"kind":        entry.Kind,
		"params_hash": entry.ParamsHash,
		"format":      entry.Format,
	}).Debug("Storing cache entry")

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}, {Name: "params_hash"}},
			UpdateAll: true,
		}).
		Create(entry).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":        "ArtifactRepository",
			"op":          "Put",
			"kind":        entry.Kind,
			"params_hash": entry.ParamsHash,
		}).WithError(err).Error("Failed to store cache entry")
		return err
	}
	return nil
}

// Get fetches the entry keyed by (kind, params_hash).
// Returns (nil, nil) if no entry exists: absence is a cache miss, not an error.
func (r *ArtifactRepository) Get(ctx context.Context, kind, paramsHash string) (*model.CacheEntry, error) {
	var entry model.CacheEntry

	err := r.db.WithContext(ctx).
		Where("kind = ? AND params_hash = ?", kind, paramsHash).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithFields(map[string]interface{}{
			"repo":        "ArtifactRepository",
			"op":          "Get",
			"kind":        kind,
			"params_hash": paramsHash,
		}).WithError(err).Error("Failed to fetch cache entry")
		return nil, err
	}
	return &entry, nil
}
