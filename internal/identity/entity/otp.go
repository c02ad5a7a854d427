package entity

import "time"

type OTPPurpose string

const (
	OTPPurposeLogin OTPPurpose = "login"
)

func (p OTPPurpose) String() string {
	return string(p)
}

// OneTimePassword is a ledger row. CodeHash is the SHA-256 hex digest of the
// delivered code; the plaintext is never stored.
type OneTimePassword struct {
	ID         int64
	UserID     int64
	CodeHash   string
	Purpose    OTPPurpose
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// Active reports whether the row can still be consumed at now. A code is
// still valid at the instant it expires.
func (o OneTimePassword) Active(now time.Time) bool {
	return o.ConsumedAt == nil && !now.After(o.ExpiresAt)
}
