// Package hash provides helpers for hashing and verifying secrets.
//
// Bcrypt is used for user passwords. HMACSHA256 is used for machine secrets such
// as the ingest API key, where a slow hash buys nothing.
package hash
