// Package hash provides one-way hashing for secrets. Passwords go through
// bcrypt; opaque tokens that only need lookup-equality go through keyed
// HMAC-SHA256 so the database never stores them in the clear.
package hash

// Hash hashes a plaintext secret and verifies candidates against it.
type Hash interface {
	Hash(plaintext string) ([]byte, error)
	Verify(hashed, plaintext string) bool
}
