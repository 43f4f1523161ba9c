package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:sha256(parts...). Slicing is deterministic,
// so a run key built from the source and profile hashes identifies the
// result exactly; the full 64-hex-char digest is kept to rule out
// collisions between unrelated documents.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes the SHA-256 hex digest of data. The pipeline uses it to
// fingerprint the source document and the encoded profile when building
// run keys.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
