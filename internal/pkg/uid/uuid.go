package uid

import "github.com/google/uuid"

// UUID generates version 7 UUID strings, which sort by creation time. It
// falls back to version 4 when the random source fails.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

func (*UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
