package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// EngineVersion participates in every batch-level cache key so that artifacts
// computed by an older engine are never served after the math changes.
const EngineVersion = "1.0.0"

// Params is the logical input set of a computation. Values must be
// JSON-serializable; anything else is a programming error.
type Params map[string]interface{}

// Hash derives the content-addressed cache key for a parameter set: the
// SHA-256 of the canonical JSON encoding, as 64 lowercase hex characters.
//
// encoding/json sorts map keys (recursively, for nested maps), so two Params
// holding the same key/value pairs hash identically regardless of insertion
// order, process, or machine. SHA-256 is used for collision resistance only.
func Hash(params Params) string {
	raw, err := json.Marshal(params)
	if err != nil {
		// Non-serializable inputs are not a recoverable runtime condition.
		panic(fmt.Errorf("params not serializable: %w", err))
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
