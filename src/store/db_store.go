package store

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"riskengine/src/model"
	"riskengine/src/repository"
)

// DBStore keeps artifact payloads inline in the cache_entries table.
type DBStore struct {
	artifacts *repository.ArtifactRepository
}

// NewDBStore creates an inline-payload store over the artifact repository.
func NewDBStore(artifacts *repository.ArtifactRepository) *DBStore {
	return &DBStore{artifacts: artifacts}
}

func (s *DBStore) put(ctx context.Context, entry *model.CacheEntry) (string, error) {
	if err := s.artifacts.Put(ctx, entry); err != nil {
		return "", &StorageError{Op: "save", Kind: entry.Kind, Err: err}
	}
	ref := fmt.Sprintf("db://%s/%s", entry.Kind, entry.ParamsHash)

	logger.WithFields(map[string]interface{}{
		"component":   "DBStore",
		"kind":        entry.Kind,
		"params_hash": entry.ParamsHash,
		"bytes":       len(entry.Payload),
	}).Debug("Artifact stored inline")

	return ref, nil
}

func (s *DBStore) get(ctx context.Context, kind, paramsHash string) (*model.CacheEntry, bool, error) {
	entry, err := s.artifacts.Get(ctx, kind, paramsHash)
	if err != nil {
		return nil, false, &StorageError{Op: "load", Kind: kind, Err: err}
	}
	if entry == nil {
		return nil, false, nil
	}
	return entry, true, nil
}

// SaveTable persists a table artifact inline.
func (s *DBStore) SaveTable(ctx context.Context, kind, paramsHash string, t *Table) (string, error) {
	payload, err := EncodeTable(t)
	if err != nil {
		return "", &StorageError{Op: "save", Kind: kind, Err: err}
	}
	return s.put(ctx, &model.CacheEntry{
		Kind:       kind,
		ParamsHash: paramsHash,
		Format:     model.ArtifactFormatTable,
		Payload:    payload,
		RowCount:   int64(t.NumRows()),
	})
}

// LoadTable fetches a table artifact; found=false means cache miss.
func (s *DBStore) LoadTable(ctx context.Context, kind, paramsHash string) (*Table, bool, error) {
	entry, found, err := s.get(ctx, kind, paramsHash)
	if err != nil || !found {
		return nil, false, err
	}
	t, err := DecodeTable(entry.Payload)
	if err != nil {
		return nil, false, &StorageError{Op: "decode", Kind: kind, Err: err}
	}
	return t, true, nil
}

// SaveDocument persists a document artifact inline.
func (s *DBStore) SaveDocument(ctx context.Context, kind, paramsHash string, doc Document) (string, error) {
	payload, err := EncodeDocument(doc)
	if err != nil {
		return "", &StorageError{Op: "save", Kind: kind, Err: err}
	}
	return s.put(ctx, &model.CacheEntry{
		Kind:       kind,
		ParamsHash: paramsHash,
		Format:     model.ArtifactFormatDocument,
		Payload:    payload,
	})
}

// LoadDocument fetches a document artifact; found=false means cache miss.
func (s *DBStore) LoadDocument(ctx context.Context, kind, paramsHash string) (Document, bool, error) {
	entry, found, err := s.get(ctx, kind, paramsHash)
	if err != nil || !found {
		return nil, false, err
	}
	doc, err := DecodeDocument(entry.Payload)
	if err != nil {
		return nil, false, &StorageError{Op: "decode", Kind: kind, Err: err}
	}
	return doc, true, nil
}

// SaveBlob persists an opaque binary artifact inline.
func (s *DBStore) SaveBlob(ctx context.Context, paramsHash, name string, data []byte, mime string) (string, error) {
	return s.put(ctx, &model.CacheEntry{
		Kind:       blobKind(name),
		ParamsHash: paramsHash,
		Format:     model.ArtifactFormatBlob,
		Name:       name,
		MimeType:   mime,
		Payload:    data,
	})
}

// LoadBlob fetches an opaque binary artifact; found=false means cache miss.
func (s *DBStore) LoadBlob(ctx context.Context, paramsHash, name string) ([]byte, string, bool, error) {
	entry, found, err := s.get(ctx, blobKind(name), paramsHash)
	if err != nil || !found {
		return nil, "", false, err
	}
	return entry.Payload, entry.MimeType, true, nil
}
