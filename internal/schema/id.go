package schema

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID returns a random (version 4) UUID.
func NewID() string {
	return uuid.NewString()
}

// IsUUID reports whether s is a hyphenated RFC 4122 UUID.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return u.Variant() == uuid.RFC4122 && u.Version() >= 1 && u.Version() <= 8
}

// EnsureID returns id when it is a well-formed UUID, otherwise a new one.
func EnsureID(id string) string {
	if IsUUID(id) {
		return id
	}
	return NewID()
}

// DeriveID returns a stable name-based (version 5) UUID for the n-th child of
// parent, so re-processing the same source yields the same ids.
func DeriveID(parent string, n int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s#%d", parent, n))).String()
}
