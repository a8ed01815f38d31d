package feed

import (
	"slices"
	"testing"
	"time"
)

func TestManualClockOrder(t *testing.T) {
	start := time.Unix(0, 0)
	c := NewManualClock(start)

	var fired []string
	c.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })
	c.AfterFunc(time.Second, func() {
		fired = append(fired, "a")
		c.AfterFunc(500*time.Millisecond, func() { fired = append(fired, "a2") })
	})
	c.AfterFunc(2*time.Second, func() { fired = append(fired, "c") })
	stopped := c.AfterFunc(1500*time.Millisecond, func() { fired = append(fired, "x") })
	if !stopped.Stop() {
		t.Fatal("Stop() of pending timer = false")
	}
	if stopped.Stop() {
		t.Error("second Stop() = true")
	}

	c.Advance(2 * time.Second)

	want := []string{"a", "a2", "b", "c"}
	if !slices.Equal(fired, want) {
		t.Errorf("fired = %v, want %v", fired, want)
	}
	if got := c.Now(); !got.Equal(start.Add(2 * time.Second)) {
		t.Errorf("Now() = %v, want start+2s", got)
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", c.Pending())
	}
}

func TestManualClockNowInsideCallback(t *testing.T) {
	start := time.Unix(0, 0)
	c := NewManualClock(start)

	var at time.Time
	c.AfterFunc(300*time.Millisecond, func() { at = c.Now() })
	c.Advance(time.Second)

	if !at.Equal(start.Add(300 * time.Millisecond)) {
		t.Errorf("Now() in callback = %v, want start+300ms", at)
	}
}
