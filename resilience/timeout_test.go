package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithin(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name    string
		timeout time.Duration
		op      func(context.Context) (int, error)
		want    int
		wantErr error
	}{
		{
			name:    "value",
			timeout: time.Second,
			op:      func(context.Context) (int, error) { return 7, nil },
			want:    7,
		},
		{
			name:    "value alongside error",
			timeout: time.Second,
			op:      func(context.Context) (int, error) { return 401, errBoom },
			want:    401,
			wantErr: errBoom,
		},
		{
			name:    "deadline passes",
			timeout: 10 * time.Millisecond,
			op: func(context.Context) (int, error) {
				time.Sleep(100 * time.Millisecond)
				return 7, nil
			},
			wantErr: ErrTimeout,
		},
		{
			name:    "op reports the deadline",
			timeout: 10 * time.Millisecond,
			op: func(ctx context.Context) (int, error) {
				<-ctx.Done()
				return 7, ctx.Err()
			},
			wantErr: ErrTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Within(context.Background(), tt.timeout, tt.op)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Within() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Within() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWithin_DefaultTimeout(t *testing.T) {
	_, err := Within(context.Background(), 0, func(ctx context.Context) (bool, error) {
		deadline, ok := ctx.Deadline()
		if !ok {
			t.Error("op context has no deadline")
			return false, nil
		}
		if left := time.Until(deadline); left <= DefaultTimeout-time.Second || left > DefaultTimeout {
			t.Errorf("deadline in %v, want about %v", left, DefaultTimeout)
		}
		return true, nil
	})
	if err != nil {
		t.Errorf("Within() error = %v", err)
	}
}

func TestWithin_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Within(ctx, time.Second, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Within() error = %v, want context.Canceled", err)
	}
}

func TestRun_RetriedLikeAnyFailure(t *testing.T) {
	retry := NewRetry(RetryConfig{MaxRetries: 2, InitialDelay: time.Millisecond})

	attempts := 0
	err := retry.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		n := attempts
		return Run(ctx, 5*time.Millisecond, func(ctx context.Context) error {
			if n < 3 {
				<-ctx.Done()
				return ctx.Err()
			}
			return nil
		})
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}
