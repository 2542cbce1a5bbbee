package chans

import (
	"context"
	"iter"
)

// ReceiveOrDone attempts to receive a message of type T from the given channel.
// It blocks until a message arrives, the channel is closed or ctx is canceled. The boolean reports whether a
// message was received.
func ReceiveOrDone[T any](ctx context.Context, ch <-chan T) (T, bool) {
	select {
	case <-ctx.Done():
		var zero T
		return zero, false
	case data, ok := <-ch:
		return data, ok
	}
}

// ReceiveOrDoneSeq same as ReceiveOrDone but it returns an iter.Seq that can be used with for-range loops.
func ReceiveOrDoneSeq[T any](ctx context.Context, ch <-chan T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			data, ok := ReceiveOrDone(ctx, ch)
			if !ok || !yield(data) {
				return
			}
		}
	}
}

// SendOrDone sends data on ch unless ctx or done fires first. It returns ctx.Err() when the context wins, and
// errDone when done is closed.
func SendOrDone[T any](ctx context.Context, ch chan<- T, done <-chan struct{}, data T, errDone error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return errDone
	case ch <- data:
		return nil
	}
}
