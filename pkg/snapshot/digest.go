package snapshot

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Digest identifies a snapshot by content: the hex BLAKE2b-256 sum of raw,
// truncated to 32 characters.
func Digest(raw string) string {
	sum := blake2b.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:16])
}
