package store

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"riskengine/src/hashing"
)

// Cache is the get-or-compute layer over the artifact store. Each unique
// parameter set is computed at most once per key lifetime: a stored artifact
// is served for every later call with the same logical inputs.
//
// The cache provides no locking. Concurrent calls for the same key within one
// process must be serialized by the caller; without that, the worst case is a
// redundant recomputation whose identical result overwrites the first - wasted
// work, never corruption.
type Cache struct {
	store Store
}

// NewCache creates a cache over the given store backend.
func NewCache(store Store) *Cache {
	return &Cache{store: store}
}

// GetOrComputeTable returns the cached table for (kind, params) when present
// (hit=true). On a miss it invokes producer, persists the result and returns
// it with hit=false. If producer fails, nothing is persisted and the error
// propagates. A storage failure on load propagates too: it is never treated
// as a miss.
func (c *Cache) GetOrComputeTable(
	ctx context.Context,
	kind string,
	params hashing.Params,
	producer func() (*Table, error),
) (*Table, bool, error) {

	paramsHash := hashing.Hash(params)

	cached, found, err := c.store.LoadTable(ctx, kind, paramsHash)
	if err != nil {
		return nil, false, err
	}
	if found {
		logger.WithFields(map[string]interface{}{
			"component":   "Cache",
			"kind":        kind,
			"params_hash": paramsHash,
			"rows":        cached.NumRows(),
		}).Info("Cache hit")
		return cached, true, nil
	}

	logger.WithFields(map[string]interface{}{
		"component":   "Cache",
		"kind":        kind,
		"params_hash": paramsHash,
	}).Info("Cache miss, computing")

	result, err := producer()
	if err != nil {
		return nil, false, err
	}
	if _, err := c.store.SaveTable(ctx, kind, paramsHash, result); err != nil {
		return nil, false, err
	}
	return result, false, nil
}

// GetOrComputeDocument is the document analogue of GetOrComputeTable.
func (c *Cache) GetOrComputeDocument(
	ctx context.Context,
	kind string,
	params hashing.Params,
	producer func() (Document, error),
) (Document, bool, error) {

	paramsHash := hashing.Hash(params)

	cached, found, err := c.store.LoadDocument(ctx, kind, paramsHash)
	if err != nil {
		return nil, false, err
	}
	if found {
		return cached, true, nil
	}

	result, err := producer()
	if err != nil {
		return nil, false, err
	}
	if _, err := c.store.SaveDocument(ctx, kind, paramsHash, result); err != nil {
		return nil, false, err
	}
	return result, false, nil
}
