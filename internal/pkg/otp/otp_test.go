package otp

import (
	"testing"
	"time"
)

func TestGenerate(t *testing.T) {
	t.Run("returns requested number of digits", func(t *testing.T) {
		for _, length := range []int{1, 4, 6, 8, 12} {
			code, err := Generate(length)
			if err != nil {
				t.Fatalf("Generate(%d) error = %v", length, err)
			}
			if len(code) != length {
				t.Fatalf("Generate(%d) length = %d, want %d", length, len(code), length)
			}
			for _, c := range code {
				if c < '0' || c > '9' {
					t.Fatalf("Generate(%d) produced non-digit %q in %q", length, c, code)
				}
			}
		}
	})

	t.Run("rejects non-positive length", func(t *testing.T) {
		if _, err := Generate(0); err == nil {
			t.Fatal("Generate(0) error = nil, want error")
		}
		if _, err := Generate(-3); err == nil {
			t.Fatal("Generate(-3) error = nil, want error")
		}
	})

	t.Run("codes differ across calls", func(t *testing.T) {
		seen := make(map[string]bool)
		for range 16 {
			code, err := Generate(8)
			if err != nil {
				t.Fatalf("Generate(8) error = %v", err)
			}
			seen[code] = true
		}
		if len(seen) < 2 {
			t.Fatalf("expected distinct codes, got %d unique of 16", len(seen))
		}
	})
}

func TestExpired(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := 5 * time.Minute

	tests := []struct {
		name     string
		issuedAt *time.Time
		now      time.Time
		want     bool
	}{
		{
			name:     "one second before the deadline",
			issuedAt: &issued,
			now:      issued.Add(ttl - time.Second),
			want:     false,
		},
		{
			name:     "exactly at the deadline",
			issuedAt: &issued,
			now:      issued.Add(ttl),
			want:     false,
		},
		{
			name:     "one second past the deadline",
			issuedAt: &issued,
			now:      issued.Add(ttl + time.Second),
			want:     true,
		},
		{
			name:     "nil issue time",
			issuedAt: nil,
			now:      issued,
			want:     true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Expired(tc.issuedAt, ttl, tc.now); got != tc.want {
				t.Fatalf("Expired() = %v, want %v", got, tc.want)
			}
		})
	}
}
