package llm

import "context"

type operationKey struct{}

// WithOperation labels calls made with ctx for metrics and logs.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}

func OperationFrom(ctx context.Context) string {
	if v, ok := ctx.Value(operationKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
