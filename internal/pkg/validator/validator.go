// Package validator wraps struct validation behind a small interface so
// usecases can be tested with the real rules without dragging transport
// concerns along.
package validator

// Validator validates a tagged struct, returning nil when it passes.
type Validator interface {
	Validate(data any) error
}
