package hash

// Hash is a one-way hasher with verification.
//
// Verify never returns an error: a malformed stored hash, an unknown scheme or
// empty input all count as a mismatch.
type Hash interface {
	Hash(plaintext string) ([]byte, error)
	Verify(hashed, plaintext string) bool
}
