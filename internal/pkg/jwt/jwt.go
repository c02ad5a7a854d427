// Package jwt mints and checks HS512 tokens. The app holds two instances,
// one per audience: sessions and pending OTP challenges. A token minted for
// one audience never verifies against the other.
package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AudienceSession    = "session"
	AudienceOTPPending = "otp-pending"
)

var (
	ErrInvalidSigningMethod = errors.New("invalid JWT signing method")
	ErrSigningKeyTooShort   = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")
	ErrTokenExpired         = errors.New("JWT token has expired")
	ErrInvalidToken         = errors.New("invalid token")
)

type JWT interface {
	Generate(sub Subject) (string, error)
	Verify(tokenStr string) (Claims, error)
	// TTL is the lifetime of generated tokens, used for cookie Max-Age.
	TTL() time.Duration
}

// Subject is the identity a token is minted for.
type Subject struct {
	UserID int64
	OrgID  int64
	Email  string
}

type Config struct {
	// Secret must be at least 64 bytes.
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
	Clock    interface{ Now() time.Time }
	// UUID mints the jti claim.
	UUID interface{ Generate() string }
}

// Claims are the registered claims plus the ids every handler scopes by.
// The ids are encoded as strings so browsers do not lose int64 precision.
type Claims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"user_id,string"`
	OrgID     int64  `json:"org_id,string"`
	UserEmail string `json:"user_email"`
}

type authKey struct{}

// SetAuth stores verified claims in ctx.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, authKey{}, clm)
}

// GetAuth returns the claims set by the auth middleware, or nil.
func GetAuth(ctx context.Context) *Claims {
	if clm, ok := ctx.Value(authKey{}).(Claims); ok {
		return &clm
	}
	return nil
}
