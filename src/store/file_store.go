package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"

	"riskengine/src/model"
	"riskengine/src/repository"
)

// FileStore writes artifact payloads to addressable files under a base
// directory and persists only the reference in cache_entries. Layout:
// <dir>/<kind>/<params_hash>.
type FileStore struct {
	dir       string
	artifacts *repository.ArtifactRepository
}

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string, artifacts *repository.ArtifactRepository) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Op: "init", Kind: dir, Err: err}
	}
	return &FileStore{dir: dir, artifacts: artifacts}, nil
}

func (s *FileStore) path(kind, paramsHash string) string {
	// Blob kinds carry a slash; flatten it so the layout stays two levels deep.
	return filepath.Join(s.dir, strings.ReplaceAll(kind, "/", "_"), paramsHash)
}

func (s *FileStore) put(ctx context.Context, entry *model.CacheEntry, payload []byte) (string, error) {
	path := s.path(entry.Kind, entry.ParamsHash)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", &StorageError{Op: "save", Kind: entry.Kind, Err: err}
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", &StorageError{Op: "save", Kind: entry.Kind, Err: err}
	}

	entry.FileRef = path
	if err := s.artifacts.Put(ctx, entry); err != nil {
		return "", &StorageError{Op: "save", Kind: entry.Kind, Err: err}
	}

	logger.WithFields(map[string]interface{}{
		"component":   "FileStore",
		"kind":        entry.Kind,
		"params_hash": entry.ParamsHash,
		"file_ref":    path,
		"bytes":       len(payload),
	}).Debug("Artifact stored to file")

	return path, nil
}

func (s *FileStore) get(ctx context.Context, kind, paramsHash string) (*model.CacheEntry, []byte, bool, error) {
	entry, err := s.artifacts.Get(ctx, kind, paramsHash)
	if err != nil {
		return nil, nil, false, &StorageError{Op: "load", Kind: kind, Err: err}
	}
	if entry == nil {
		return nil, nil, false, nil
	}
	if entry.FileRef == "" {
		return nil, nil, false, &StorageError{Op: "load", Kind: kind, Err: fmt.Errorf("entry has no file reference")}
	}
	payload, err := os.ReadFile(entry.FileRef)
	if err != nil {
		// A referenced file that cannot be read is a storage failure, not a
		// miss: pretending otherwise would recompute over inconsistent state.
		return nil, nil, false, &StorageError{Op: "load", Kind: kind, Err: err}
	}
	return entry, payload, true, nil
}

// SaveTable persists a table artifact to a file.
func (s *FileStore) SaveTable(ctx context.Context, kind, paramsHash string, t *Table) (string, error) {
	payload, err := EncodeTable(t)
	if err != nil {
		return "", &StorageError{Op: "save", Kind: kind, Err: err}
	}
	return s.put(ctx, &model.CacheEntry{
		Kind:       kind,
		ParamsHash: paramsHash,
		Format:     model.ArtifactFormatTable,
		RowCount:   int64(t.NumRows()),
	}, payload)
}

// LoadTable fetches a table artifact; found=false means cache miss.
func (s *FileStore) LoadTable(ctx context.Context, kind, paramsHash string) (*Table, bool, error) {
	_, payload, found, err := s.get(ctx, kind, paramsHash)
	if err != nil || !found {
		return nil, false, err
	}
	t, err := DecodeTable(payload)
	if err != nil {
		return nil, false, &StorageError{Op: "decode", Kind: kind, Err: err}
	}
	return t, true, nil
}

// SaveDocument persists a document artifact to a file.
func (s *FileStore) SaveDocument(ctx context.Context, kind, paramsHash string, doc Document) (string, error) {
	payload, err := EncodeDocument(doc)
	if err != nil {
		return "", &StorageError{Op: "save", Kind: kind, Err: err}
	}
	return s.put(ctx, &model.CacheEntry{
		Kind:       kind,
		ParamsHash: paramsHash,
		Format:     model.ArtifactFormatDocument,
	}, payload)
}

// LoadDocument fetches a document artifact; found=false means cache miss.
func (s *FileStore) LoadDocument(ctx context.Context, kind, paramsHash string) (Document, bool, error) {
	_, payload, found, err := s.get(ctx, kind, paramsHash)
	if err != nil || !found {
		return nil, false, err
	}
	doc, err := DecodeDocument(payload)
	if err != nil {
		return nil, false, &StorageError{Op: "decode", Kind: kind, Err: err}
	}
	return doc, true, nil
}

// SaveBlob persists an opaque binary artifact to a file.
func (s *FileStore) SaveBlob(ctx context.Context, paramsHash, name string, data []byte, mime string) (string, error) {
	return s.put(ctx, &model.CacheEntry{
		Kind:       blobKind(name),
		ParamsHash: paramsHash,
		Format:     model.ArtifactFormatBlob,
		Name:       name,
		MimeType:   mime,
	}, data)
}

// LoadBlob fetches an opaque binary artifact; found=false means cache miss.
func (s *FileStore) LoadBlob(ctx context.Context, paramsHash, name string) ([]byte, string, bool, error) {
	entry, payload, found, err := s.get(ctx, blobKind(name), paramsHash)
	if err != nil || !found {
		return nil, "", false, err
	}
	return payload, entry.MimeType, true, nil
}
