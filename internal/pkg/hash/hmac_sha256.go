package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSHA256 implements Hash with a keyed SHA-256 digest.
//
// It is meant for high-entropy shared secrets (API keys) where bcrypt would be
// wasted work. Both sides are digested before comparison, so the compare runs
// over equal-length inputs and does not leak the length of the secret.
type HMACSHA256 struct {
	secret []byte
}

// NewHMACSHA256 creates a new hasher with a secret.
func NewHMACSHA256(secret string) *HMACSHA256 {
	return &HMACSHA256{secret: []byte(secret)}
}

// Hash returns the hex-encoded HMAC SHA-256 of str.
func (s *HMACSHA256) Hash(str string) ([]byte, error) {
	return s.gen(str), nil
}

// Verify reports whether str digests to hashed.
func (s *HMACSHA256) Verify(hashed, str string) bool {
	if hashed == "" {
		return false
	}

	return hmac.Equal([]byte(hashed), s.gen(str))
}

// Equal compares two plaintext secrets in constant time.
func (s *HMACSHA256) Equal(expected, provided string) bool {
	if expected == "" || provided == "" {
		return false
	}

	return hmac.Equal(s.gen(expected), s.gen(provided))
}

func (s *HMACSHA256) gen(str string) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(str))
	sum := h.Sum(nil)
	result := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(result, sum)
	return result
}
