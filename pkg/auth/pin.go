package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost = 12
	PINLength  = 4
)

// ValidatePIN enforces the 4-digit PIN format shared by admin and canteen
// credentials.
func ValidatePIN(pin string) error {
	if len(pin) != PINLength {
		return fmt.Errorf("PIN must be exactly %d digits", PINLength)
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return fmt.Errorf("PIN must be exactly %d digits", PINLength)
		}
	}
	return nil
}

// HashPIN hashes the admin PIN for storage. Canteen PINs are not hashed:
// the admin console lists them back to the operator.
func HashPIN(pin string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash PIN: %w", err)
	}
	return string(hashed), nil
}

// CheckPINHash compares a candidate PIN against a bcrypt hash.
func CheckPINHash(hashed, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pin)) == nil
}

// ComparePIN compares two plaintext PINs in constant time.
func ComparePIN(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}
