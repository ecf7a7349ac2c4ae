// ABOUTME: Password hashing for user accounts
// ABOUTME: bcrypt hashes with a minimum length check on new passwords
package auth

import (
	"errors"
	"fmt"

	"github.com/harperreed/kin/models"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength applies to newly set passwords only.
const MinPasswordLength = 8

// Cost is the bcrypt work factor used by HashPassword.
var Cost = bcrypt.DefaultCost

func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", models.Invalid("password", "must be at least %d characters", MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", models.Invalid("password", "is too long")
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
