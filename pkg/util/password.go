package util

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost = 12

	MinPasswordLength = 8
	// bcrypt ignores everything past 72 bytes
	MaxPasswordLength = 72
)

var ErrPasswordPolicy = errors.New("password does not meet policy")

// CheckPasswordPolicy reports whether password can be stored for an account.
// Length is counted in bytes.
func CheckPasswordPolicy(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: length must be between %d and %d bytes", ErrPasswordPolicy, MinPasswordLength, MaxPasswordLength)
	}
	return nil
}

// HashPassword applies the policy and hashes the password with bcrypt.
func HashPassword(password string) (string, error) {
	if err := CheckPasswordPolicy(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
