package resilience

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout bounds a dispatch when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Within runs op under a deadline of d, or DefaultTimeout when d <= 0, and
// returns its value. When the deadline passes first, Within returns the
// zero value and ErrTimeout without waiting for op.
//
// op keeps running in its own goroutine after a timeout until it observes
// the cancelled context. Its value is only ever handed back through the
// return, so callers need no extra synchronization.
func Within[T any](ctx context.Context, d time.Duration, op func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		d = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := op(ctx)
		done <- outcome{value: v, err: err}
	}()

	var zero T
	select {
	case o := <-done:
		if o.err != nil && errors.Is(o.err, context.DeadlineExceeded) && expired(ctx) {
			return zero, ErrTimeout
		}
		return o.value, o.err
	case <-ctx.Done():
		if expired(ctx) {
			return zero, ErrTimeout
		}
		return zero, ctx.Err()
	}
}

// Run is Within for operations without a value.
func Run(ctx context.Context, d time.Duration, op func(context.Context) error) error {
	_, err := Within(ctx, d, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func expired(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded)
}
