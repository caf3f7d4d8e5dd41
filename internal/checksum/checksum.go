// Package checksum computes content digests used for optimistic concurrency.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Short returns an abbreviated digest suitable for display (revision labels
// in the UI). Falls back to the full digest when it is unexpectedly short.
func Short(digest string) string {
	if len(digest) < 12 {
		return digest
	}
	return digest[:12]
}
