// Package auth holds the PIN credential primitives. PINs are never stored
// or compared in plaintext anywhere in the system.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// PinHash returns the hex-encoded SHA-256 digest of the raw PIN string.
// The same digest format is written to local and remote profile records.
func PinHash(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}

// VerifyPin reports whether the candidate PIN hashes to storedHash.
// Comparison is constant-time over the digest strings.
func VerifyPin(pin, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	candidate := PinHash(pin)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(storedHash)) == 1
}
