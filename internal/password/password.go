// Package password wraps bcrypt hashing behind a small hasher type so the
// cost factor is configured once at startup.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const DefaultCost = 12

type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash produces a salted bcrypt hash. The salt is generated per call, so
// hashing the same plaintext twice yields different outputs.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches the stored hash. Malformed hashes
// verify as false rather than erroring out.
func (h *Hasher) Verify(plaintext string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
