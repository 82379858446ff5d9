package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidDigest is returned when a stored digest is not a valid bcrypt hash.
var ErrInvalidDigest = errors.New("stored password digest is malformed")

// HashPassword hashes a plain text password with bcrypt. Each call embeds a
// fresh salt, so hashing the same input twice yields different digests.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a bcrypt digest with a plaintext password.
// bcrypt.ErrMismatchedHashAndPassword passes through untouched so callers can
// tell a wrong password from a corrupt digest.
func CheckPassword(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))

	if err == nil || errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return err
	}

	return ErrInvalidDigest
}
