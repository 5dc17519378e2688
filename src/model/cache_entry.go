package model

import "time"

const (
	ArtifactFormatTable    = "table"
	ArtifactFormatDocument = "document"
	ArtifactFormatBlob     = "blob"
)

// CacheEntry is one persisted computation artifact keyed by (kind, params_hash).
// Either Payload holds the bytes inline or FileRef points at the file holding
// them; which one is populated depends on the configured store mode.
type CacheEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Kind       string    `gorm:"size:60;uniqueIndex:idx_cache_kind_hash;not null" json:"kind"`
	ParamsHash string    `gorm:"size:64;uniqueIndex:idx_cache_kind_hash;not null" json:"params_hash"`
	Format     string    `gorm:"size:20;not null" json:"format"`
	Name       string    `gorm:"size:120" json:"name,omitempty"`
	MimeType   string    `gorm:"size:80" json:"mime_type,omitempty"`
	Payload    []byte    `gorm:"type:bytea" json:"-"`
	FileRef    string    `gorm:"size:255" json:"file_ref,omitempty"`
	RowCount   int64     `json:"row_count"`
	CreatedAt  time.Time `json:"created_at"`
}

func (CacheEntry) TableName() string {
	return "cache_entries"
}
