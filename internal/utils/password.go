package utils

import (
	"crypto/rand"
	"errors"
	"math"
	"math/big"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// ErrWeakPassword is returned by ValidatePassword when a candidate
// password does not meet the minimum policy.
var ErrWeakPassword = errors.New("password must be at least 8 characters long and contain a letter and a digit")

// passwordAlphabet is the alphanumeric alphabet used for generated
// passwords. 62 symbols -> ~5.95 bits of entropy per character.
const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// HashPassword returns bcrypt hash using the given cost.
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

// ValidatePassword enforces the signup password policy: at least 8
// characters with at least one letter and one digit. Validation runs
// before hashing so a weak password is never stored.
func ValidatePassword(plain string) error {
	if len(plain) < 8 {
		return ErrWeakPassword
	}
	var hasLetter, hasDigit bool
	for _, r := range plain {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}

// GenerateStrongPassword produces a random alphanumeric password of the
// requested length, growing the length if needed to reach the minimum
// entropy target. Used only for server-initiated resets; the result is
// returned to the caller exactly once and never logged.
func GenerateStrongPassword(minEntropyBits, length int) (string, error) {
	bitsPerChar := math.Log2(float64(len(passwordAlphabet)))
	if need := int(math.Ceil(float64(minEntropyBits) / bitsPerChar)); length < need {
		length = need
	}
	max := big.NewInt(int64(len(passwordAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}
