// Package otp generates and checks short numeric one-time codes that are sent
// out of band (email) and typed back by the user.
//
// Codes are drawn from crypto/rand. Only the SHA-256 digest of a code is meant
// to be stored; Equal compares digests in constant time.
package otp
