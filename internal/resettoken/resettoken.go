// Package resettoken generates single-use password reset secrets. Only the
// digest is ever persisted; the plaintext goes to the account owner.
package resettoken

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is returned when no account holds an unexpired token with the
// given digest. Wrong, expired and already used tokens are not told apart.
var ErrInvalid = errors.New("reset token invalid or expired")

const (
	DefaultTTL = time.Hour
	size       = 32
)

type Token struct {
	Plain     string
	Hash      string
	ExpiresAt time.Time
}

func Generate(now time.Time, ttl time.Duration) (Token, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return Token{}, fmt.Errorf("failed to generate reset token: %w", err)
	}

	plain := hex.EncodeToString(buf)
	return Token{
		Plain:     plain,
		Hash:      Hash(plain),
		ExpiresAt: now.Add(ttl),
	}, nil
}

func Hash(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
