// Package cachekey derives dependency-cache keys for the deployment
// pipeline.
package cachekey

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Key maps a dependency lockfile's content plus the OS and runtime
// version to a single cache-key string. The same inputs always produce
// the same key; any change to the lockfile invalidates it.
func Key(lockfile []byte, goos, runtimeVersion string) string {
	sum := sha256.Sum256(lockfile)
	return fmt.Sprintf("deps-%s-%s-%s", goos, runtimeVersion, hex.EncodeToString(sum[:8]))
}
