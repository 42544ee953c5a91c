// Package password hashes CMS passwords with scrypt.
//
// Stored form is "<salt-hex>:<key-hex>". The hex salt string itself, not its
// decoded bytes, is the scrypt salt; existing account records depend on this.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt cost parameters. Changing any of them invalidates every stored hash.
const (
	SaltBytes = 16
	KeyLen    = 64
	CostN     = 1 << 14
	CostR     = 8
	CostP     = 1
)

// Hash derives a new stored form for plaintext using a fresh random salt.
func Hash(plaintext string) (string, error) {
	raw := make([]byte, SaltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("password salt: %w", err)
	}
	salt := hex.EncodeToString(raw)

	key, err := derive(plaintext, salt)
	if err != nil {
		return "", err
	}
	return salt + ":" + hex.EncodeToString(key), nil
}

// Verify reports whether plaintext matches stored. A malformed stored form
// yields false.
func Verify(plaintext, stored string) bool {
	salt, expected, ok := split(stored)
	if !ok {
		return false
	}

	actual, err := derive(plaintext, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(actual, expected) == 1
}

func derive(plaintext, salt string) ([]byte, error) {
	key, err := scrypt.Key([]byte(plaintext), []byte(salt), CostN, CostR, CostP, KeyLen)
	if err != nil {
		return nil, fmt.Errorf("password derive: %w", err)
	}
	return key, nil
}

func split(stored string) (salt string, key []byte, ok bool) {
	parts := strings.Split(stored, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", nil, false
	}
	key, err := hex.DecodeString(parts[1])
	if err != nil || len(key) != KeyLen {
		return "", nil, false
	}
	return parts[0], key, true
}
