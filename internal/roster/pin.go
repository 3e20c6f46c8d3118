package roster

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// PINLength is the required number of digits in a member PIN.
const PINLength = 6

// DefaultPINSalt is the insecure placeholder salt; override it in production.
const DefaultPINSalt = "pin-salt-change-in-production"

// HashPIN returns the hex SHA-256 of pin+salt. The same function seeds the
// directory (counterlog pin hash) and verifies submitted PINs, so the stored
// hashes stay portable across the tools.
func HashPIN(pin, salt string) string {
	if salt == "" {
		salt = DefaultPINSalt
	}
	sum := sha256.Sum256([]byte(pin + salt))
	return hex.EncodeToString(sum[:])
}

// VerifyPIN compares a submitted PIN against a stored hash in constant time.
func VerifyPIN(pin, salt, storedHash string) bool {
	computed := HashPIN(pin, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}

// ValidatePINFormat checks that pin is exactly PINLength digits.
func ValidatePINFormat(pin string) error {
	if pin == "" {
		return fmt.Errorf("pin is required")
	}
	if len(pin) != PINLength {
		return fmt.Errorf("pin must be %d digits", PINLength)
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return fmt.Errorf("pin must contain digits only")
		}
	}
	return nil
}
