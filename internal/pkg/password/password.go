// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinLength is the minimum accepted plaintext password length.
const MinLength = 8

var (
	// ErrTooShort is returned when a plaintext password is below MinLength.
	ErrTooShort = errors.New("password must be at least 8 characters long")
	// ErrCorruptHash is returned when a stored hash is not a valid bcrypt hash.
	ErrCorruptHash = errors.New("stored password hash is malformed")
)

// Hash produces a one-way salted hash of raw. The plaintext is never stored.
func Hash(raw string) (string, error) {
	if len(raw) < MinLength {
		return "", ErrTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify compares raw against a stored hash. A mismatch is (false, nil);
// only a malformed stored hash yields an error.
func Verify(raw, storedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(raw))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, ErrCorruptHash
}
