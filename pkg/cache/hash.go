package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the full hex sha256 digest of data. Payload fingerprints and
// on-disk entry names derive from it; the full digest keeps distinct buffers
// from sharing a key.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
