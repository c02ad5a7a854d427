package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt hashes user passwords.
//
// With an empty pepper the password goes to bcrypt as is, which keeps hashes
// written by dashctl and by earlier tooling interchangeable. With a pepper the
// input is HMAC-SHA256(pepper, password) in base64, 44 bytes, so the pepper
// never pushes a password past bcrypt's 72 byte limit.
type Bcrypt struct {
	cost   int
	pepper []byte
}

// NewBcrypt clamps cost into bcrypt's range. Zero means bcrypt.DefaultCost.
func NewBcrypt(cost int, pepper string) *Bcrypt {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{
		cost:   min(max(cost, bcrypt.MinCost), bcrypt.MaxCost),
		pepper: []byte(pepper),
	}
}

func (h *Bcrypt) input(plaintext string) []byte {
	if len(h.pepper) == 0 {
		return []byte(plaintext)
	}
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(plaintext))
	return []byte(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

// Hash salts per call, so two hashes of one password differ.
func (h *Bcrypt) Hash(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword(h.input(plaintext), h.cost)
}

func (h *Bcrypt) Verify(hashed, plaintext string) bool {
	if hashed == "" || plaintext == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), h.input(plaintext)) == nil
}
