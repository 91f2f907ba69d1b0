package utils

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns bcrypt hash using the given cost. The cost is
// deliberately slow (work factor 12 by default) so offline brute force
// against a leaked hash stays expensive.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// CheckPasswordPolicy reports the first policy violation of a candidate
// password, or "" when it passes. The rules mirror the registration
// contract: at least 8 characters with lowercase, uppercase, digit and
// symbol present.
func CheckPasswordPolicy(plain string) string {
	if len(plain) < 8 {
		return "password must be at least 8 characters"
	}
	var lower, upper, digit, symbol bool
	for _, r := range plain {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	switch {
	case !lower:
		return "password must contain a lowercase letter"
	case !upper:
		return "password must contain an uppercase letter"
	case !digit:
		return "password must contain a digit"
	case !symbol:
		return "password must contain a symbol"
	}
	return ""
}
