// Package uid provides the identifier generators used across the service:
// snowflakes for entity primary keys, UUIDs for correlation and session
// identifiers, and long random hex strings for opaque tokens.
package uid

// NumberID generates numeric identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}
