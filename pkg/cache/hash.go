package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ArtifactOpts are the render options that affect the output bytes.
type ArtifactOpts struct {
	Format   string  `json:"format"`
	Layout   string  `json:"layout"`
	Scale    float64 `json:"scale,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`
	Handles  bool    `json:"handles,omitempty"`
}

// ArtifactKey returns the cache key of a render of the diagram body with
// opts. The key format is artifact:<sha256>.
func ArtifactKey(body []byte, opts ArtifactOpts) string {
	return hashKey("artifact", Hash(body), opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
