package retry

import (
	"context"
	"time"

	apperrors "agenda/pkg/errors"
	"agenda/pkg/logger"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultMaxAttempts = 2
	DefaultBaseDelay   = 1000 * time.Millisecond
)

// Policy describes a bounded, fixed-delay retry budget. MaxAttempts counts
// retries, so an operation runs at most MaxAttempts+1 times.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Retryable   func(err error) bool
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Retryable:   apperrors.IsTransient,
	}
}

type Operation func(ctx context.Context) (any, error)

type Executor struct {
	policy Policy
	group  singleflight.Group
	log    *logger.Logger
}

func NewExecutor(policy Policy, log *logger.Logger) *Executor {
	if policy.MaxAttempts < 0 {
		policy.MaxAttempts = 0
	}
	if policy.BaseDelay < 0 {
		policy.BaseDelay = 0
	}
	if policy.Retryable == nil {
		policy.Retryable = apperrors.IsTransient
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Executor{policy: policy, log: log}
}

func (e *Executor) Policy() Policy {
	return e.policy
}

// Do runs op under the retry budget. Calls sharing a non-empty key while one
// is in flight receive that call's result instead of issuing their own.
//
// The shared call runs detached from the caller's cancellation: a caller whose
// ctx is done gets ctx.Err() back while the call keeps going to completion for
// anyone else waiting on it.
func (e *Executor) Do(ctx context.Context, key string, op Operation) (any, error) {
	if key == "" {
		return e.attempt(ctx, key, op)
	}

	detached := context.WithoutCancel(ctx)
	ch := e.group.DoChan(key, func() (any, error) {
		return e.attempt(detached, key, op)
	})

	select {
	case res := <-ch:
		if res.Shared {
			e.log.Debug("Collapsed duplicate call onto in-flight result", "key", key)
		}
		return res.Val, res.Err
	case <-ctx.Done():
		e.log.Debug("Caller abandoned in-flight call", "key", key, "error", ctx.Err())
		return nil, ctx.Err()
	}
}

// Execute is the typed form of Executor.Do.
func Execute[T any](ctx context.Context, e *Executor, key string, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	val, err := e.Do(ctx, key, func(ctx context.Context) (any, error) {
		return op(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := val.(T)
	if !ok {
		return zero, nil
	}
	return typed, nil
}

func (e *Executor) attempt(ctx context.Context, key string, op Operation) (any, error) {
	total := e.policy.MaxAttempts + 1
	var lastErr error

	for i := 1; i <= total; i++ {
		val, err := op(ctx)
		if err == nil {
			if i > 1 {
				e.log.Info("Operation succeeded after retry", "key", key, "attempt", i)
			}
			return val, nil
		}
		lastErr = err

		if !e.policy.Retryable(err) {
			e.log.Debug("Operation failed with permanent error", "key", key, "attempt", i, "error", err)
			return nil, err
		}
		if i == total {
			break
		}

		e.log.Warn("Operation failed, retrying",
			"key", key,
			"attempt", i,
			"max_attempts", total,
			"delay", e.policy.BaseDelay,
			"error", err,
		)
		if !wait(ctx, e.policy.BaseDelay) {
			return nil, lastErr
		}
	}

	e.log.Warn("Operation exhausted retries", "key", key, "attempts", total, "error", lastErr)
	return nil, lastErr
}

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
