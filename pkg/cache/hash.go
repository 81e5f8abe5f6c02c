package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds a stage cache key of the form "<stage>:<sha256 hex>".
// The parts (repo path, revset, theme, and so on) are JSON-encoded and
// hashed, so keys stay fixed-length no matter how long a revset gets,
// while the stage prefix keeps them greppable and lets FileCache record
// which stage wrote an entry. GraphKey skips this helper: the graph stage
// is already addressed by a content hash, so it embeds the hash directly.
func hashKey(stage string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", stage, hex.EncodeToString(sum[:]))
}

// Hash returns the SHA-256 of data as a 64-character hex string. It is the
// content-address used throughout the pipeline: the commit window hash that
// keys the graph stage, the graph hash reported to API clients, and the
// snapshot id in the store all come from here.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
