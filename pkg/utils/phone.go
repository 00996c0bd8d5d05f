package utils

import (
	"errors"
	"strings"
)

// ErrInvalidPhone is returned when a number does not reduce to 10 local digits.
var ErrInvalidPhone = errors.New("invalid phone number (must be 10 digits)")

// NormalizePhone reduces a phone number to its bare local digits: strips all
// non-digit characters, a leading zero, and the Indian country code when the
// remaining number is 12 digits. The result is not length-validated.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	digits = strings.TrimPrefix(digits, "0")
	if strings.HasPrefix(digits, "91") && len(digits) == 12 {
		digits = digits[2:]
	}
	return digits
}

// NormalizeLocalPhone is the strict form used before messaging: the cleaned
// number must be exactly 10 digits.
func NormalizeLocalPhone(raw string) (string, error) {
	digits := NormalizePhone(raw)
	if len(digits) != 10 {
		return "", ErrInvalidPhone
	}
	return digits, nil
}
