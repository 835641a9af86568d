// Package config abstracts typed access to runtime configuration.
// Implementations decide where values come from and how missing or
// malformed values degrade (zero values, never panics).
package config

import (
	"io"
	"time"
)

// Config retrieves typed configuration values by dotted key.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint16(key string) uint16
	GetFloat64(key string) float64

	// GetBinary decodes a base64-encoded value.
	GetBinary(key string) []byte

	// GetArray splits a comma-separated value.
	GetArray(key string) []string

	// GetMap parses a "k1:v1,k2:v2" value.
	GetMap(key string) map[string]string

	// Duration getters interpret the integer value in the named unit.
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
	GetHour(key string) time.Duration
	GetDay(key string) time.Duration
}
