package loop

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"snapfeed/feed"
)

func start(t *testing.T) (*Loop, <-chan error) {
	t.Helper()
	l := New(zaptest.NewLogger(t))
	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()
	t.Cleanup(l.Stop)
	return l, done
}

func TestLoopOrder(t *testing.T) {
	l, _ := start(t)

	var got []int
	for i := range 100 {
		l.Post(func() { got = append(got, i) })
	}
	if err := l.Call(context.Background(), func() {}); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("got[%d] = %d, want in order", i, v)
		}
	}
	if len(got) != 100 {
		t.Errorf("executed %d, want 100", len(got))
	}
}

func TestLoopStop(t *testing.T) {
	l, done := start(t)
	l.Post(l.Stop)

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after Stop")
	}
	if l.Post(func() {}) {
		t.Error("Post() after Stop accepted")
	}
	if err := l.Call(context.Background(), func() {}); !errors.Is(err, ErrStopped) {
		t.Errorf("Call() after Stop error = %v", err)
	}
	if err := l.Run(context.Background()); !errors.Is(err, ErrStopped) {
		t.Errorf("second Run() error = %v", err)
	}
}

func TestLoopContextCancel(t *testing.T) {
	l := New(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestLoopSurvivesPanic(t *testing.T) {
	l, _ := start(t)
	l.Post(func() { panic("boom") })
	ran := false
	if err := l.Call(context.Background(), func() { ran = true }); err != nil || !ran {
		t.Errorf("Call() after panic = %v ran %v", err, ran)
	}
}

func TestClockTimers(t *testing.T) {
	l, _ := start(t)
	clock := l.Clock()

	var mu sync.Mutex
	var fired []string
	record := func(s string) func() {
		return func() {
			mu.Lock()
			fired = append(fired, s)
			mu.Unlock()
		}
	}

	done := make(chan struct{})
	var stopped feed.Timer
	l.Call(context.Background(), func() {
		clock.AfterFunc(10*time.Millisecond, record("a"))
		stopped = clock.AfterFunc(20*time.Millisecond, record("x"))
		clock.AfterFunc(40*time.Millisecond, func() {
			record("b")()
			close(done)
		})
	})
	l.Call(context.Background(), func() { stopped.Stop() })

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timers did not fire")
	}
	mu.Lock()
	defer mu.Unlock()
	if !slices.Equal(fired, []string{"a", "b"}) {
		t.Errorf("fired = %v, want [a b]", fired)
	}
}

func TestClockDrivesController(t *testing.T) {
	l, _ := start(t)

	indexes := make(chan int, 4)
	var c *feed.Controller
	err := l.Call(context.Background(), func() {
		var err error
		c, err = feed.New(feed.Keys("a", "b", "c"), 800,
			feed.WithClock(l.Clock()),
			feed.WithLogger(zaptest.NewLogger(t)),
			feed.WithIdleSnapDelay(10*time.Millisecond),
			feed.WithListener(feed.Listener{OnIndexChange: func(i int) { indexes <- i }}),
		)
		if err != nil {
			t.Error(err)
			return
		}
		// resting between pages, idle timer snaps to nearest
		c.Scroll(1500, 0)
	})
	if err != nil || c == nil {
		t.Fatalf("controller setup failed: %v", err)
	}

	select {
	case i := <-indexes:
		if i != 2 {
			t.Errorf("index = %d, want 2", i)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("idle snap did not happen")
	}
	l.Call(context.Background(), c.Close)
}
