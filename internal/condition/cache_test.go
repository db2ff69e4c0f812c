package condition

import (
	"context"
	"sync/atomic"
	"testing"
)

type countingExecutor struct {
	calls atomic.Int32
	ok    bool
	err   error
}

func (c *countingExecutor) RunCondition(ctx context.Context, src string) (bool, error) {
	c.calls.Add(1)
	return c.ok, c.err
}
func (c *countingExecutor) RunArgSpec(ctx context.Context, src string) ([]string, error) { return nil, nil }
func (c *countingExecutor) RunDescriptionScript(ctx context.Context, cmd string) (string, error) {
	return "", nil
}

func TestTestEmptySourceIsAlwaysTrue(t *testing.T) {
	c := New(&countingExecutor{})
	if !c.Test(context.Background(), "", Default) {
		t.Fatal("expected true for empty source")
	}
}

func TestTestAutosuggestNeverExecutes(t *testing.T) {
	exec := &countingExecutor{ok: true}
	c := New(exec)
	if c.Test(context.Background(), "true", Autosuggest) {
		t.Fatal("expected false under autosuggest")
	}
	if exec.calls.Load() != 0 {
		t.Fatal("expected the executor never to run under autosuggest")
	}
}

func TestTestMemoizesPerSource(t *testing.T) {
	exec := &countingExecutor{ok: true}
	c := New(exec)
	for i := 0; i < 5; i++ {
		if !c.Test(context.Background(), "test -n foo", Default) {
			t.Fatal("expected true")
		}
	}
	if exec.calls.Load() != 1 {
		t.Fatalf("expected exactly one subshell evaluation, got %d", exec.calls.Load())
	}
}

func TestTestSubshellFailureDegradesToFalse(t *testing.T) {
	exec := &countingExecutor{ok: false, err: context.DeadlineExceeded}
	c := New(exec)
	if c.Test(context.Background(), "bad", Default) {
		t.Fatal("expected false on executor error")
	}
}

func TestInvalidateAllClearsMemo(t *testing.T) {
	exec := &countingExecutor{ok: true}
	c := New(exec)
	c.Test(context.Background(), "x", Default)
	c.InvalidateAll()
	c.Test(context.Background(), "x", Default)
	if exec.calls.Load() != 2 {
		t.Fatalf("expected re-evaluation after invalidation, got %d calls", exec.calls.Load())
	}
}
