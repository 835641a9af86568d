// Package otp generates and checks the expiry of random numeric one-time
// passwords delivered out of band (email). Codes come from crypto/rand so
// no arithmetic relationship links one code to the next.
package otp

import (
	"crypto/rand"
	"time"

	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
)

const (
	// DefaultLength is the number of digits in a generated code.
	DefaultLength = 6

	// DefaultTTL is how long a code stays verifiable after issue.
	DefaultTTL = 5 * time.Minute
)

// Generate returns a string of length independently uniform random decimal
// digits. Leading zeros are valid, so the value must be treated as an
// opaque string, never parsed as an integer.
func Generate(length int) (string, error) {
	if length <= 0 {
		return "", goerror.NewInvalidInput(nil, "length", "otp length must be positive")
	}

	buf := make([]byte, length)
	out := make([]byte, length)

	i := 0
	for i < length {
		if _, err := rand.Read(buf[:length-i]); err != nil {
			return "", goerror.NewServer(err)
		}

		// Rejection sampling keeps every digit uniform. Bytes 250..255
		// are thrown away instead of taken modulo 10.
		for _, b := range buf[:length-i] {
			if b >= 250 {
				continue
			}
			out[i] = '0' + b%10
			i++
		}
	}

	return string(out), nil
}

// Expired reports whether a code issued at issuedAt is no longer
// verifiable at now. A nil issue time means there is nothing to verify, so
// it reads as expired. The boundary is inclusive: a code is still valid at
// exactly issuedAt+ttl.
func Expired(issuedAt *time.Time, ttl time.Duration, now time.Time) bool {
	if issuedAt == nil || issuedAt.IsZero() {
		return true
	}

	return now.After(issuedAt.Add(ttl))
}
