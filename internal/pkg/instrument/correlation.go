package instrument

import "context"

type correlationIDKey struct{}

// InvalidCorrelationID marks a context whose correlation value was not a string.
const InvalidCorrelationID = "[invalid_chain_id]"

// SetCorrelationID stores the request correlation ID in the context.
func SetCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// GetCorrelationID returns the correlation ID, "" when absent.
func GetCorrelationID(ctx context.Context) string {
	v := ctx.Value(correlationIDKey{})
	if v == nil {
		return ""
	}

	id, ok := v.(string)
	if !ok {
		return InvalidCorrelationID
	}

	return id
}
