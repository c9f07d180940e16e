package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds a cache key of the form prefix:hex(sha256(json(parts))).
// JSON keeps the part encoding stable across runs, so equal inputs always
// land on the same key. The full 256-bit digest is kept; artifact keys are
// never truncated.
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash returns the hex-encoded SHA-256 digest of a dataset's raw bytes.
// Artifacts are keyed by content rather than path, so renaming or moving an
// input file never invalidates its cached results.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
