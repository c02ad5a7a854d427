package config

import (
	"io"
	"time"
)

// Config is read by every module at call time, never cached, so a reloaded
// file applies to the next request. Missing or malformed values read as the
// zero value.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetFloat64(key string) float64

	// GetSecond and GetMinute read an integer and scale it. Keys carry the
	// unit as a suffix, e.g. presign_seconds.
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration

	// GetArray accepts a YAML sequence or a comma separated string, the
	// latter being what environment overrides look like. Blank items are
	// dropped.
	GetArray(key string) []string
}
