package store

import (
	"context"
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"riskengine/src/repository"
)

// Store persists and retrieves named computation artifacts addressed by
// (kind, params_hash). Absence is reported through the found flag, never as
// an error: a miss is expected control flow, a failed read is not.
type Store interface {
	SaveTable(ctx context.Context, kind, paramsHash string, t *Table) (string, error)
	LoadTable(ctx context.Context, kind, paramsHash string) (*Table, bool, error)
	SaveDocument(ctx context.Context, kind, paramsHash string, doc Document) (string, error)
	LoadDocument(ctx context.Context, kind, paramsHash string) (Document, bool, error)
	SaveBlob(ctx context.Context, paramsHash, name string, data []byte, mime string) (string, error)
	LoadBlob(ctx context.Context, paramsHash, name string) ([]byte, string, bool, error)
}

// StorageError wraps an I/O or database failure inside the artifact store.
// It is never downgraded to a miss: callers must see storage failures.
type StorageError struct {
	Op   string
	Kind string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("artifact store %s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

const (
	ModeInline = "inline"
	ModeFile   = "file"
)

type Config struct {
	// Mode selects where artifact payloads live: "inline" keeps the bytes in
	// the cache_entries row, "file" writes them under Dir and persists only
	// the reference. Callers cannot observe the difference.
	Mode string `envconfig:"ARTIFACT_STORE_MODE" default:"inline"`
	Dir  string `envconfig:"ARTIFACT_STORE_DIR" default:"artifacts"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// NewStore builds the configured store backend over the given artifact
// repository.
func NewStore(cfg Config, artifacts *repository.ArtifactRepository) (Store, error) {
	switch cfg.Mode {
	case ModeInline:
		return NewDBStore(artifacts), nil
	case ModeFile:
		return NewFileStore(cfg.Dir, artifacts)
	}
	return nil, fmt.Errorf("unsupported ARTIFACT_STORE_MODE %q (want inline or file)", cfg.Mode)
}

// blobKind namespaces blob entries so a blob and a table under the same
// params hash cannot collide on the (kind, params_hash) unique index.
func blobKind(name string) string {
	return "blob/" + name
}
