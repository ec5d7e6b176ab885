package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds a stage-scoped cache key of the form prefix:hash(parts).
// DefaultKeyer passes the topology hash plus the layout or export options
// as parts, so any option change yields a distinct key. The full 256-bit
// digest is kept; topologies differing only in metadata must never
// collide.
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash returns the SHA-256 of data as a 64-char hex string. The pipeline
// hashes the raw topology bytes with it, so byte-identical uploads share
// cached render models and artifacts. FileCache reuses it to shard keys
// into filenames.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
