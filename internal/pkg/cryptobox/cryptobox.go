// Package cryptobox seals short-lived secrets at rest. OTP tickets stored
// in the session cache go through it so a cache dump never exposes codes
// or pending registration payloads in the clear.
package cryptobox

// Sealer encrypts and decrypts payloads bound to a Scope.
type Sealer interface {
	// Seal returns ciphertext for the plaintext, bound to scope.
	Seal(plaintext []byte, scope Scope) ([]byte, error)
	// Open returns plaintext, failing if the scope does not match the one
	// the ciphertext was sealed under.
	Open(ciphertext []byte, scope Scope) ([]byte, error)
}

// KeyProvider supplies raw AES key material. AES-256-GCM needs 32 bytes.
type KeyProvider interface {
	Key(scope Scope) ([]byte, error)
}

// Purpose identifies what a sealed payload is for. Sealing and opening
// with different purposes never succeeds, even under the same key.
type Purpose string

const (
	// PurposeRegistrationTicket scopes pending registration tickets.
	PurposeRegistrationTicket Purpose = "registration_ticket"
	// PurposeLoginTicket scopes login OTP tickets.
	PurposeLoginTicket Purpose = "login_ticket"
)

// Scope binds a ciphertext to the browser session and purpose it was
// created for. It feeds the AES-GCM additional authenticated data.
type Scope struct {
	SessionID string
	Purpose   Purpose
}
