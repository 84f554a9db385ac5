// Package resilience provides the retry and timeout policies applied to
// every outbound dispatch.
//
// # Retry
//
// Retry runs an operation and, on failure, waits and runs it again. With
// MaxRetries=K the operation runs at most K+1 times and the waits between
// attempts are InitialDelay, 2*InitialDelay, 4*InitialDelay and so on.
// When all attempts fail the last error is returned unchanged.
//
// Every error is retried unless RetryIf says otherwise. Waits honor
// context cancellation.
//
// # Timeout
//
// Within bounds a single dispatch and hands back its value. A dispatch
// that runs past its deadline fails with ErrTimeout, which Retry treats
// like any other failure.
//
// # Usage
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxRetries:   3,
//	    InitialDelay: time.Second,
//	})
//
//	err := retry.Execute(ctx, func(ctx context.Context) error {
//	    resp, err := resilience.Within(ctx, 10*time.Second, dispatch)
//	    ...
//	})
package resilience
