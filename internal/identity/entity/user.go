package entity

import (
	"strings"
	"time"
)

type Organization struct {
	ID        int64
	Name      string
	Slug      string
	CreatedAt time.Time
}

type User struct {
	ID           int64
	OrgID        int64
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

// NormalizeEmail is the canonical form stored in identity_users.email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
