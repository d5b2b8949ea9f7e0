package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// HashJSON fingerprints a request payload so an idempotency key cannot be
// replayed with a different body.
func HashJSON(jsonData any) string {
	data, _ := json.Marshal(jsonData)
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
