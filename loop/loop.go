// Package loop provides the single event queue feed controllers live on in
// real time. Everything touching a controller (input events, host commands,
// timer callbacks) is posted to the loop and executed one at a time on the
// goroutine running Run.
package loop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"snapfeed/feed"
)

// ErrStopped is returned when work is submitted to a stopped loop.
var ErrStopped = errors.New("event loop stopped")

type Loop struct {
	log *zap.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	running bool
	stopped bool
}

func New(log *zap.Logger) *Loop {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Loop{log: log}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Post queues f for execution. It never blocks and may be called from any
// goroutine. Returns false if loop is stopped and f was dropped.
func (l *Loop) Post(f func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return false
	}
	l.queue = append(l.queue, f)
	l.cond.Signal()
	return true
}

// Call executes f on the loop and waits for it to complete. It must not be
// called from the loop itself.
func (l *Loop) Call(ctx context.Context, f func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		f()
	}) {
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes posted functions until Stop is called or ctx is cancelled.
// Functions still queued at that moment are discarded.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return errors.New("event loop is already running")
	}
	if l.stopped {
		l.mu.Unlock()
		return ErrStopped
	}
	l.running = true
	l.mu.Unlock()

	stopWatch := context.AfterFunc(ctx, l.Stop)
	defer stopWatch()

	l.log.Debug("Event loop started")
	defer l.log.Debug("Event loop finished")

	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.stopped {
			l.cond.Wait()
		}
		if l.stopped {
			l.queue = nil
			l.running = false
			l.mu.Unlock()
			return ctx.Err()
		}
		f := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.exec(f)
	}
}

// Stop makes Run return. It is safe to call more than once and from any
// goroutine, including from the loop.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stopped = true
	l.cond.Broadcast()
}

func (l *Loop) exec(f func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("Event handler failed", zap.Error(fmt.Errorf("panic: %v", r)))
		}
	}()
	f()
}

// Clock is a real time feed.Clock delivering timer callbacks through the
// loop.
type Clock struct {
	loop *Loop
}

// Clock returns real time clock bound to the loop.
func (l *Loop) Clock() *Clock {
	return &Clock{loop: l}
}

func (c *Clock) Now() time.Time {
	return time.Now()
}

func (c *Clock) AfterFunc(d time.Duration, f func()) feed.Timer {
	t := &timer{}
	t.t = time.AfterFunc(d, func() {
		c.loop.Post(func() {
			// timer could have been stopped after it expired but before its
			// callback got its turn
			if t.stopped() {
				return
			}
			f()
		})
	})
	return t
}

type timer struct {
	t *time.Timer

	mu     sync.Mutex
	cancel bool
}

func (t *timer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancel = true
	return t.t.Stop()
}

func (t *timer) stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel
}

var _ feed.Clock = (*Clock)(nil)
