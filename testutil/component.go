package testutil

import "context"

// TestComponent is a test double with a start/stop lifecycle and state that
// can be reset, captured and restored between test cases.
type TestComponent interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	// Reset restores the component to its initial state.
	Reset(ctx context.Context) error

	// Snapshot captures the current state. The result can be passed to Restore.
	Snapshot(ctx context.Context) (any, error)

	// Restore returns the component to a captured state.
	Restore(ctx context.Context, snapshot any) error
}
