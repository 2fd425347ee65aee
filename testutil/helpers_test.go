package testutil_test

import (
	"context"
	"testing"

	"github.com/kbukum/armkit/testutil"
)

type mockComponent struct {
	name        string
	started     bool
	stopped     bool
	resetCalled bool
}

func (m *mockComponent) Name() string                          { return m.name }
func (m *mockComponent) Start(context.Context) error           { m.started = true; return nil }
func (m *mockComponent) Stop(context.Context) error            { m.stopped = true; return nil }
func (m *mockComponent) Reset(context.Context) error           { m.resetCalled = true; return nil }
func (m *mockComponent) Snapshot(context.Context) (any, error) { return m.started, nil }
func (m *mockComponent) Restore(context.Context, any) error    { return nil }

func TestHelpers_Setup(t *testing.T) {
	comp := &mockComponent{name: "test"}

	cleanup, err := testutil.Setup(comp)
	if err != nil {
		t.Fatalf("Setup() failed: %v", err)
	}
	if !comp.started {
		t.Error("component should be started after Setup()")
	}
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup() failed: %v", err)
	}
	if !comp.stopped {
		t.Error("component should be stopped after cleanup()")
	}
}

func TestHelpers_T(t *testing.T) {
	comp := &mockComponent{name: "test"}
	t.Run("setup", func(t *testing.T) {
		testutil.T(t).Setup(comp)
		if !comp.started {
			t.Error("component should be started after T.Setup()")
		}
	})
	if !comp.stopped {
		t.Error("component should be stopped when the subtest ends")
	}

	testutil.T(t).Reset(comp)
	if !comp.resetCalled {
		t.Error("Reset() should have been called")
	}
}
