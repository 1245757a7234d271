package utils

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// HashToken returns the hex BLAKE2b-256 digest of token. Durable session
// stores key records by this digest instead of the raw id.
func HashToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
