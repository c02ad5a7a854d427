package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"strings"
)

// DefaultLength is the number of digits used when a non-positive length is requested.
const DefaultLength = 6

// OTP defines the contract for one-time code operations.
type OTP interface {
	// Generate returns a decimal code of exactly length digits.
	Generate(length int) (string, error)
	// Digest returns the hex encoded SHA-256 of code.
	Digest(code string) string
	// Equal reports whether code digests to digest, in constant time.
	Equal(digest, code string) bool
}

// Generator implements OTP.
type Generator struct {
	rand io.Reader
}

// NewGenerator returns a Generator backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{rand: rand.Reader}
}

// Generate returns a decimal code of exactly length digits.
//
// Each digit is uniform over 0-9: bytes >= 250 are rejected so the modulo does
// not bias low digits.
func (g *Generator) Generate(length int) (string, error) {
	if length < 1 {
		length = DefaultLength
	}

	var sb strings.Builder
	sb.Grow(length)

	buf := make([]byte, length)
	for sb.Len() < length {
		if _, err := io.ReadFull(g.rand, buf); err != nil {
			return "", err
		}

		for _, b := range buf {
			if b >= 250 {
				continue
			}

			sb.WriteByte('0' + b%10)
			if sb.Len() == length {
				break
			}
		}
	}

	return sb.String(), nil
}

// Digest returns the hex encoded SHA-256 of code.
func (g *Generator) Digest(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Equal reports whether code digests to digest.
func (g *Generator) Equal(digest, code string) bool {
	if digest == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(digest), []byte(g.Digest(code))) == 1
}
