package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

func HashString(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// HashValue hashes the JSON encoding of v. Map keys are sorted by
// encoding/json, so equal values hash equally.
func HashValue(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return HashString(string(data)), nil
}
