package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// DefaultSalt is the documented insecure placeholder used when no salt is
// configured. Production deployments must override it — anyone who knows the
// salt and can read the store can forge a consistent chain.
const DefaultSalt = "default-salt-change-in-production"

// HashEngine computes the chain-linking content hash for records. It is pure:
// identical inputs always yield identical output. The salt is process-wide
// configuration and never persisted, so verification must run with the same
// salt the writer used.
type HashEngine struct {
	salt string
}

// NewHashEngine returns an engine using the given salt. An empty salt falls
// back to DefaultSalt; callers should warn loudly when that happens.
func NewHashEngine(salt string) *HashEngine {
	if salt == "" {
		salt = DefaultSalt
	}
	return &HashEngine{salt: salt}
}

// UsingDefaultSalt reports whether the engine runs on the insecure placeholder.
func (e *HashEngine) UsingDefaultSalt() bool {
	return e.salt == DefaultSalt
}

// Compute hashes prevHash || recordID || serverTS || canonicalJSON(payload) || salt
// with SHA-256 and returns the lowercase hex digest.
func (e *HashEngine) Compute(prevHash, recordID, serverTS string, payload any) (string, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	sum := sha256.Sum256([]byte(prevHash + recordID + serverTS + string(payloadJSON) + e.salt))
	return hex.EncodeToString(sum[:]), nil
}

// RecordHash recomputes the content hash of a stored record from its own
// fields, using prev as the predecessor hash input.
func (e *HashEngine) RecordHash(r *Record, prev string) (string, error) {
	return e.Compute(prev, r.RecordID, r.ServerTS, payloadOf(r))
}
