package common

import (
	"crypto/rand"
	"encoding/base64"
)

// MakeRandTokenString generates an opaque, URL-safe random string from size
// random bytes (base64url without padding). With size >= 32 the result
// carries at least 256 bits of entropy, which is what refresh tokens use.
//
// It returns an error if the random number generator fails.
func MakeRandTokenString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
