package retry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "agenda/pkg/errors"
	"agenda/pkg/logger"
)

func fastPolicy() Policy {
	return Policy{MaxAttempts: 2, BaseDelay: time.Millisecond}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	e := NewExecutor(fastPolicy(), logger.Discard())
	var calls int32

	got, err := Execute(context.Background(), e, "k", func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "ok", nil
	})
	if err != nil || got != "ok" {
		t.Fatalf("Execute() = %q, %v", got, err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_RetriesUpToBudget(t *testing.T) {
	e := NewExecutor(fastPolicy(), logger.Discard())
	transient := apperrors.Unavailable("store")
	var calls int32

	_, err := Execute(context.Background(), e, "k", func(ctx context.Context) (bool, error) {
		atomic.AddInt32(&calls, 1)
		return false, transient
	})
	if calls != 3 {
		t.Errorf("expected MaxAttempts+1 = 3 calls, got %d", calls)
	}
	if err != transient {
		t.Errorf("expected the last error unchanged, got %v", err)
	}
}

func TestDo_RecoversOnLaterAttempt(t *testing.T) {
	e := NewExecutor(fastPolicy(), logger.Discard())
	var calls int32

	got, err := Execute(context.Background(), e, "", func(ctx context.Context) (int, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return 0, errors.New("connection reset")
		}
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Fatalf("Execute() = %d, %v", got, err)
	}
}

func TestDo_PermanentErrorsAreNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"validation", apperrors.Validation("name is required", nil)},
		{"conflict", apperrors.BookingConflict("slot taken", nil)},
		{"not found", apperrors.NotFound("Staff")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExecutor(fastPolicy(), logger.Discard())
			var calls int32
			_, err := e.Do(context.Background(), "k", func(ctx context.Context) (any, error) {
				atomic.AddInt32(&calls, 1)
				return nil, tt.err
			})
			if calls != 1 {
				t.Errorf("expected 1 call, got %d", calls)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("expected original error, got %v", err)
			}
		})
	}
}

func TestDo_FixedDelayBetweenAttempts(t *testing.T) {
	delay := 20 * time.Millisecond
	e := NewExecutor(Policy{MaxAttempts: 2, BaseDelay: delay}, logger.Discard())
	var stamps []time.Time

	_, _ = e.Do(context.Background(), "", func(ctx context.Context) (any, error) {
		stamps = append(stamps, time.Now())
		return nil, errors.New("boom")
	})
	if len(stamps) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(stamps))
	}
	for i := 1; i < len(stamps); i++ {
		gap := stamps[i].Sub(stamps[i-1])
		if gap < delay {
			t.Errorf("gap %d = %s, want >= %s", i, gap, delay)
		}
		if gap > 4*delay {
			t.Errorf("gap %d = %s looks exponential", i, gap)
		}
	}
}

func TestDo_CollapsesConcurrentCallsWithSameKey(t *testing.T) {
	e := NewExecutor(fastPolicy(), logger.Discard())
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})

	op := func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		return "booking-1", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 5)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = Execute(context.Background(), e, "submit:abc", op)
	}()
	<-started
	for i := 1; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Execute(context.Background(), e, "submit:abc", op)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls != 1 {
		t.Errorf("expected a single underlying call, got %d", calls)
	}
	for i, r := range results {
		if r != "booking-1" {
			t.Errorf("result %d = %q", i, r)
		}
	}
}

func TestDo_DifferentKeysDoNotCollapse(t *testing.T) {
	e := NewExecutor(fastPolicy(), logger.Discard())
	var calls int32
	var wg sync.WaitGroup
	for _, key := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			_, _ = e.Do(context.Background(), key, func(ctx context.Context) (any, error) {
				atomic.AddInt32(&calls, 1)
				time.Sleep(10 * time.Millisecond)
				return key, nil
			})
		}(key)
	}
	wg.Wait()
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_AbandonedCallerDoesNotCancelSharedCall(t *testing.T) {
	e := NewExecutor(fastPolicy(), logger.Discard())
	release := make(chan struct{})
	done := make(chan error, 1)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_, err := e.Do(ctx, "grid", func(opCtx context.Context) (any, error) {
			<-release
			done <- opCtx.Err()
			return "late", nil
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("abandoning caller should see context.Canceled, got %v", err)
		}
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	time.Sleep(10 * time.Millisecond)
	close(release)

	select {
	case opErr := <-done:
		if opErr != nil {
			t.Errorf("shared call context was cancelled: %v", opErr)
		}
	case <-time.After(time.Second):
		t.Fatal("shared call never completed")
	}
}

func TestNewExecutor_ClampsPolicy(t *testing.T) {
	e := NewExecutor(Policy{MaxAttempts: -3, BaseDelay: -time.Second}, nil)
	p := e.Policy()
	if p.MaxAttempts != 0 || p.BaseDelay != 0 || p.Retryable == nil {
		t.Errorf("policy not clamped: %+v", p)
	}
}
