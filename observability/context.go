package observability

import "context"

type operationKey struct{}

// WithOperation tags ctx with the logical operation name, for example
// "SQLMigrationServices.Get". The pipeline uses it to name spans and label
// metrics.
func WithOperation(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, operationKey{}, name)
}

// OperationFromContext returns the operation name stored by WithOperation.
func OperationFromContext(ctx context.Context) string {
	name, _ := ctx.Value(operationKey{}).(string)
	return name
}
