package consolidate

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/mesh-intelligence/cadence/internal/store"
	"github.com/mesh-intelligence/cadence/pkg/types"
)

// contentHash computes the idempotency key for an extracted snapshot:
// SHA-256 over its JSON encoding. Snapshot rows are sorted by natural
// id and encoding/json emits map keys in sorted order, so the same
// content always hashes the same.
func contentHash(sn *store.Snapshot) (string, error) {
	data, err := json.Marshal(sn)
	if err != nil {
		return "", types.Storagef("encode snapshot for hashing: %v", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
