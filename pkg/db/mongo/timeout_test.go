package mongo

import (
	"context"
	"testing"
	"time"
)

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Second)
	defer cancel()
	deadline, ok := ctx.Deadline()
	if !ok || time.Until(deadline) > time.Second {
		t.Errorf("expected a deadline within 1s, got %v %v", deadline, ok)
	}

	parent, parentCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer parentCancel()
	ctx, cancel = WithTimeout(parent, time.Hour)
	defer cancel()
	deadline, _ = ctx.Deadline()
	if time.Until(deadline) > 10*time.Millisecond {
		t.Errorf("shorter parent deadline not kept")
	}

	ctx, cancel = WithTimeout(context.Background(), 0)
	defer cancel()
	if _, ok := ctx.Deadline(); ok {
		t.Errorf("zero timeout should not add a deadline")
	}
}
