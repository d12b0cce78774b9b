// Package password provides one-way hashing and verification of user
// passwords using argon2id, encoded in the PHC string format.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	algorithmID = "argon2id"

	defaultMemoryKB    uint32 = 64 * 1024
	defaultTime        uint32 = 3
	defaultParallelism uint8  = 2
	saltLength                = 16
	keyLength          uint32 = 32
)

// Hasher hashes and verifies passwords. The zero value is not usable; use
// NewHasher. Work factors are fixed at construction.
type Hasher struct {
	memory      uint32
	time        uint32
	parallelism uint8
}

func NewHasher() *Hasher {
	return &Hasher{
		memory:      defaultMemoryKB,
		time:        defaultTime,
		parallelism: defaultParallelism,
	}
}

// Hash derives an argon2id hash with a fresh random salt and returns it as
// a PHC string: $argon2id$v=19$m=...,t=...,p=...$<salt>$<hash>.
func (h *Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(plaintext), salt, h.time, h.memory, h.parallelism, keyLength)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.memory,
		h.time,
		h.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plaintext matches the encoded hash, using a
// constant-time comparison. A corrupt or unparseable hash yields false, not
// an error: callers cannot distinguish "wrong password" from "corrupt
// stored hash", which keeps the login path free of oracle behavior.
func (h *Hasher) Verify(plaintext, encodedHash string) bool {
	memory, timeCost, parallelism, salt, key, err := decode(encodedHash)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(plaintext), salt, timeCost, memory, parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(computed, key) == 1
}

func decode(encodedHash string) (memory, timeCost uint32, parallelism uint8, salt, key []byte, err error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithmID {
		err = errors.New("invalid PHC format")
		return
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return
	}
	if version != argon2.Version {
		err = errors.New("unsupported argon2 version")
		return
	}

	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &parallelism); err != nil {
		return
	}
	if memory == 0 || timeCost == 0 || parallelism == 0 {
		err = errors.New("invalid argon2 parameters")
		return
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return
	}
	if len(salt) == 0 || len(key) == 0 {
		err = errors.New("empty salt or hash")
	}
	return
}
