package feed

import (
	"math"
	"time"

	"snapfeed/common"
)

// PageState is the paging state of a feed. It is a value: transition methods
// return the next state instead of mutating the receiver.
type PageState struct {
	CurrentIndex       int
	Phase              common.GesturePhase
	DragStartOffset    float64
	LastObservedOffset float64
	Velocity           float64
	// SuppressUntil is set while programmatic scroll to CommandOffset is in
	// flight, zero otherwise.
	SuppressUntil time.Time
	CommandOffset float64
}

// Paging holds geometry and rules transitions are evaluated with.
type Paging struct {
	PageLength float64
	ItemCount  int
	Thresholds Thresholds
	// Epsilon is the distance under which two offsets are the same position.
	Epsilon float64
}

// Decision is the outcome of a transition that may require snapping.
type Decision struct {
	Snap  bool
	Index int
}

// Command is a programmatic scroll to be issued.
type Command struct {
	Issue  bool
	Offset float64
}

func (s PageState) IsDragging() bool {
	return s.Phase == common.GesturePhaseDragging
}

func (s PageState) IsMomentumScrolling() bool {
	return s.Phase == common.GesturePhaseMomentum
}

// Suppressed reports whether scroll events at now belong to our own
// programmatic scroll.
func (s PageState) Suppressed(now time.Time) bool {
	return !s.SuppressUntil.IsZero() && now.Before(s.SuppressUntil)
}

// effectiveOffset is where viewport is or is about to be.
func (s PageState) effectiveOffset(now time.Time) float64 {
	if s.Suppressed(now) {
		return s.CommandOffset
	}
	return s.LastObservedOffset
}

// BeginDrag starts user drag. User intent wins over programmatic scroll in
// flight, so suppression is dropped.
func (s PageState) BeginDrag(offset float64) PageState {
	s.Phase = common.GesturePhaseDragging
	s.DragStartOffset = offset
	s.LastObservedOffset = offset
	s.Velocity = 0
	s.SuppressUntil = time.Time{}
	return s
}

// Move records scroll event. Second result is true when event acknowledges
// programmatic scroll in flight (viewport reached commanded offset).
func (s PageState) Move(offset, velocity float64, now time.Time, p Paging) (PageState, bool) {
	s.LastObservedOffset = offset
	s.Velocity = velocity
	if s.Suppressed(now) && math.Abs(offset-s.CommandOffset) <= p.Epsilon {
		s.SuppressUntil = time.Time{}
		return s, true
	}
	return s, false
}

// EndDrag finishes user drag. When platform reports momentum to follow, snap
// is left to EndMomentum, otherwise index is resolved right away.
func (s PageState) EndDrag(offset, velocity float64, momentum bool, p Paging) (PageState, Decision) {
	switch s.Phase {
	case common.GesturePhaseMomentum:
		// momentum handler owns final snap
		s.LastObservedOffset = offset
		return s, Decision{}
	case common.GesturePhaseDragging:
	default:
		// drag end without begin, assume gesture started at current page
		s.DragStartOffset = PageOffset(s.CurrentIndex, p.PageLength)
	}
	s.LastObservedOffset = offset
	s.Velocity = velocity
	if momentum {
		s.Phase = common.GesturePhaseMomentum
		return s, Decision{}
	}
	s.Phase = common.GesturePhaseSettling
	return s, Decision{Snap: true, Index: s.resolve(offset, velocity, p)}
}

// BeginMomentum enters inertial scrolling reported by platform. Momentum of
// our own programmatic scroll is ignored.
func (s PageState) BeginMomentum(now time.Time) (PageState, bool) {
	switch {
	case s.Phase == common.GesturePhaseMomentum:
		return s, false
	case s.Phase == common.GesturePhaseDragging:
	case s.Suppressed(now):
		return s, false
	default:
		s.DragStartOffset = s.LastObservedOffset
	}
	s.Phase = common.GesturePhaseMomentum
	return s, true
}

// EndMomentum resolves index at the end of inertial scrolling. Outside of
// momentum phase event is recorded and nothing else.
func (s PageState) EndMomentum(offset, velocity float64, p Paging) (PageState, Decision) {
	s.LastObservedOffset = offset
	if s.Phase != common.GesturePhaseMomentum {
		return s, Decision{}
	}
	s.Velocity = velocity
	s.Phase = common.GesturePhaseSettling
	return s, Decision{Snap: true, Index: s.resolve(offset, velocity, p)}
}

// Snap commits index and computes programmatic scroll needed to align
// viewport with it. User gesture in progress rejects snap unless forced,
// forced snap aborts the gesture. No scroll is issued when viewport already is
// (or is about to be) within Epsilon of the target.
func (s PageState) Snap(index int, force bool, now time.Time, timeout time.Duration, p Paging) (PageState, Command, bool) {
	if s.Phase.Gesture() && !force {
		return s, Command{}, false
	}
	index = clampIndex(index, p.ItemCount)
	target := PageOffset(index, p.PageLength)
	current := s.effectiveOffset(now)

	s.Phase = common.GesturePhaseIdle
	s.CurrentIndex = index
	if math.Abs(current-target) <= p.Epsilon {
		return s, Command{}, true
	}
	s.CommandOffset = target
	s.SuppressUntil = now.Add(timeout)
	return s, Command{Issue: true, Offset: target}, true
}

// EndSuppression ends programmatic scroll in flight, assuming it landed where
// it was commanded to.
func (s PageState) EndSuppression() PageState {
	if s.SuppressUntil.IsZero() {
		return s
	}
	s.SuppressUntil = time.Time{}
	s.LastObservedOffset = s.CommandOffset
	return s
}

// Clamp brings current index into bounds of itemCount items.
func (s PageState) Clamp(itemCount int) PageState {
	s.CurrentIndex = clampIndex(s.CurrentIndex, itemCount)
	return s
}

func (s PageState) resolve(offset, velocity float64, p Paging) int {
	delta := offset - s.DragStartOffset
	return ResolveIndex(offset, p.PageLength, p.ItemCount, ResolveContext{
		DragDelta:    &delta,
		Velocity:     velocity,
		CurrentIndex: s.CurrentIndex,
	}, p.Thresholds)
}
