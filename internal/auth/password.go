package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// passwordCost is the bcrypt work factor for account passwords.
const passwordCost = 12

// HashPassword returns a bcrypt digest of the password. The salt is embedded
// in the digest, so equal passwords hash differently.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks a candidate password against a stored bcrypt digest.
func VerifyPassword(stored, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
}
