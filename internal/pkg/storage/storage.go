// Package storage puts objects into and links objects from a single bucket.
//
// Two backends are available: AWS S3 (or any S3 compatible endpoint through
// aws-sdk-go-v2) and MinIO. The "none" driver disables object storage; every
// call then returns ErrDisabled.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrDisabled is returned by the none driver.
var ErrDisabled = errors.New("storage: disabled")

// maxPresignExpiry is the SigV4 limit shared by S3 and MinIO.
const maxPresignExpiry = 7 * 24 * time.Hour

func clampExpiry(d time.Duration) time.Duration {
	return min(max(d, time.Second), maxPresignExpiry)
}

// Storage defines object storage operations on one bucket.
type Storage interface {
	io.Closer

	// PutObject stores data and returns object metadata.
	PutObject(ctx context.Context, key string, r io.Reader, opts PutOptions) (ObjectInfo, error)
	// PresignGet returns a signed URL for downloading.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// PutOptions configures upload behavior.
type PutOptions struct {
	// Size is the expected content length; -1 when unknown.
	Size int64
	// ContentType is the MIME type for the object.
	ContentType string
	// Metadata includes custom key/value metadata.
	Metadata map[string]string
}

// ObjectInfo describes object metadata.
type ObjectInfo struct {
	// Bucket is the bucket name.
	Bucket string
	// Key is the object key.
	Key string
	// Size is the object size in bytes.
	Size int64
	// ETag is the object ETag when provided.
	ETag string
}
