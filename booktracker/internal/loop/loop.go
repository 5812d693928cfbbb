// Package loop runs every state mutation of the client on one logical thread.
// Blocking work (network calls) runs on its own goroutine and posts its
// completion back, so components never need locks.
package loop

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

type Dispatcher struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
	log   *zap.Logger
}

func New(log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		wake: make(chan struct{}, 1),
		log:  log.Named("loop"),
	}
}

// Post schedules fn on the loop. Safe from any goroutine, never blocks.
func (d *Dispatcher) Post(fn func()) {
	d.mu.Lock()
	d.queue = append(d.queue, fn)
	d.mu.Unlock()
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Run executes posted tasks in order until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		if err := d.RunOnce(ctx); err != nil {
			return err
		}
	}
}

// RunOnce waits for one task and runs it on the calling goroutine.
func (d *Dispatcher) RunOnce(ctx context.Context) error {
	for {
		if fn, ok := d.next(); ok {
			d.exec(fn)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.wake:
		}
	}
}

// Pending reports the number of queued tasks.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

func (d *Dispatcher) next() (func(), bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queue) == 0 {
		return nil, false
	}
	fn := d.queue[0]
	d.queue[0] = nil
	d.queue = d.queue[1:]
	return fn, true
}

func (d *Dispatcher) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("task panic", zap.Any("recover", r), zap.Stack("stack"))
		}
	}()
	fn()
}

// Scope owns the in-flight calls of one view. Closing it cancels them and
// drops their completions.
type Scope struct {
	d      *Dispatcher
	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool
}

func (d *Dispatcher) NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{d: d, ctx: ctx, cancel: cancel}
}

func (s *Scope) Context() context.Context {
	return s.ctx
}

func (s *Scope) Closed() bool {
	return s.closed.Load()
}

func (s *Scope) Close() {
	s.closed.Store(true)
	s.cancel()
}

// Go runs call off the loop and delivers its result to done on the loop,
// unless the scope was closed in the meantime.
func Go[T any](s *Scope, call func(ctx context.Context) (T, error), done func(T, error)) {
	if s.Closed() {
		return
	}
	go func() {
		v, err := call(s.ctx)
		s.d.Post(func() {
			if s.Closed() {
				return
			}
			done(v, err)
		})
	}()
}
