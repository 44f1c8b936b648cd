package viewingkey

import (
	"crypto/sha256"
	"crypto/subtle"
)

// Equal compares two byte strings in constant time with respect to their
// contents. Inputs of different length are never equal.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Digest returns the stored form of a token.
func Digest(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}
