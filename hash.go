package chatglot

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashText computes the SHA-256 hash of the trimmed text.
func HashText(text string) string {
	trimmed := strings.TrimSpace(text)
	hash := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(hash[:])
}

// CacheKey generates a translation-cache key for a text hash and direction.
// Mode participates because adaptive results carry quality metadata a
// standard result does not.
func CacheKey(hash, sourceLang, targetLang string, mode Mode) string {
	return hash + ":" + sourceLang + ":" + targetLang + ":" + string(mode)
}
