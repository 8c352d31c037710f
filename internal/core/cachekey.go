package core

import (
	"crypto/sha256"
	"encoding/hex"
)

const cacheKeyPrefix = "garment-analysis:"

// ContentKey derives the response-cache key for an image payload. The key is
// a hash of the raw base64 text, so identical submissions map to the same
// entry regardless of origin.
func ContentKey(imageBase64 string) string {
	sum := sha256.Sum256([]byte(imageBase64))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
