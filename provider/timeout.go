package provider

import (
	"context"
	"time"

	"github.com/chinmay1088/sats/satserr"
)

type result[T any] struct {
	value T
	err   error
}

// withTimeout runs fn in its own goroutine and waits for it until timeout
// elapses or ctx is done. fn receives a context that is cancelled when the
// wait ends; a result delivered after that is dropped. The wait never
// depends on fn honouring its context.
func withTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// buffered so an abandoned call can always deliver and exit
	done := make(chan result[T], 1)
	go func() {
		v, err := fn(callCtx)
		done <- result[T]{v, err}
	}()

	var zero T
	select {
	case r := <-done:
		return r.value, r.err
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return zero, satserr.Wrap(satserr.KindTimeout, ctx.Err(), "cancelled")
		}
		return zero, satserr.Newf(satserr.KindTimeout, "timeout after %s", timeout)
	}
}
