package emitter

import (
	"context"
	"errors"
	"sync"

	"github.com/hedisam/filedrop/lib/chans"
	"github.com/hedisam/filedrop/server/internal/contentstore"
)

var (
	ErrClosed = errors.New("emitter closed")
)

// Emitter queues orphaned objects for the janitor. Emit is safe to call from any number of request goroutines,
// including concurrently with Close.
type Emitter struct {
	mu     sync.RWMutex
	closed bool
	ch     chan *contentstore.Orphan
	done   chan struct{}
	once   sync.Once
}

func New(bufferSize int) *Emitter {
	return &Emitter{
		ch:   make(chan *contentstore.Orphan, bufferSize),
		done: make(chan struct{}),
	}
}

func (e *Emitter) Emit(ctx context.Context, orphan *contentstore.Orphan) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return ErrClosed
	}

	return chans.SendOrDone(ctx, e.ch, e.done, orphan, ErrClosed)
}

func (e *Emitter) Chan() <-chan *contentstore.Orphan {
	return e.ch
}

func (e *Emitter) Close() {
	e.once.Do(func() {
		// unblock pending emit calls first, then wait for them to release the read lock
		close(e.done)
		e.mu.Lock()
		defer e.mu.Unlock()
		e.closed = true
		close(e.ch)
	})
}
