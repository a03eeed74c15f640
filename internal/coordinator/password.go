package coordinator

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// HashPassword returns the fixed-width hex encoding of a 256-bit one-way
// digest of the raw password. This is the only credential form ever stored.
func HashPassword(password string) string {
	sum := sha3.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword recomputes the digest and compares it to the stored hash
func VerifyPassword(password, storedHash string) bool {
	sum := sha3.Sum256([]byte(password))
	computed := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
