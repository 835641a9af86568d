// Package mail keeps the application independent from a specific email
// provider. Usecases depend on the Mail interface and Message payload;
// net/smtp delivery lives in this package, other providers can slot in.
package mail

import (
	"context"
	"io"
)

// Message is a provider-agnostic email payload.
type Message struct {
	// From is an optional explicit sender; implementations fall back to
	// their configured default.
	From string
	// To lists required recipients.
	To []string
	// Cc lists carbon copy recipients.
	Cc []string
	// Bcc lists blind carbon copy recipients.
	Bcc []string
	// Subject is the subject line.
	Subject string
	// TextBody is the plain-text body.
	TextBody string
	// HTMLBody is the optional HTML body.
	HTMLBody string
}

// Mail abstracts an email provider.
type Mail interface {
	io.Closer
	// Send dispatches the message synchronously. A non-nil error means
	// the message was not accepted for delivery.
	Send(ctx context.Context, msg Message) error
}
