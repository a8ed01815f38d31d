package feed

import (
	"testing"
	"time"

	"snapfeed/common"
)

func testPaging(count int) Paging {
	return Paging{PageLength: 800, ItemCount: count, Thresholds: DefaultThresholds(), Epsilon: 1}
}

func TestPageStateDragWithoutMomentum(t *testing.T) {
	p := testPaging(10)
	s := PageState{CurrentIndex: 1, LastObservedOffset: 800}

	s = s.BeginDrag(800)
	if !s.IsDragging() {
		t.Fatalf("Phase = %s, want dragging", s.Phase)
	}
	s, _ = s.Move(1000, 0.3, time.Time{}, p)
	s, d := s.EndDrag(1100, 0.3, false, p)
	if s.Phase != common.GesturePhaseSettling {
		t.Errorf("Phase = %s, want settling", s.Phase)
	}
	if !d.Snap || d.Index != 2 {
		t.Errorf("EndDrag() decision = %+v, want snap to 2", d)
	}
}

func TestPageStateMomentumOwnsSnap(t *testing.T) {
	p := testPaging(10)
	s := PageState{CurrentIndex: 1, LastObservedOffset: 800}

	s = s.BeginDrag(800)
	s, d := s.EndDrag(900, 3, true, p)
	if d.Snap {
		t.Fatalf("EndDrag() with momentum decided %+v, want no snap", d)
	}
	if !s.IsMomentumScrolling() {
		t.Fatalf("Phase = %s, want momentum", s.Phase)
	}
	if _, entered := s.BeginMomentum(time.Time{}); entered {
		t.Error("BeginMomentum() entered momentum twice")
	}

	// late drag end while momentum is running is ignored
	s, d = s.EndDrag(950, 3, false, p)
	if d.Snap || !s.IsMomentumScrolling() {
		t.Errorf("EndDrag() during momentum = %+v phase %s, want ignored", d, s.Phase)
	}

	s, d = s.EndMomentum(2500, 0.1, p)
	if !d.Snap || d.Index != 4 {
		t.Errorf("EndMomentum() decision = %+v, want snap to 4", d)
	}
}

func TestPageStateEndMomentumOutsideMomentum(t *testing.T) {
	s := PageState{CurrentIndex: 2}
	s, d := s.EndMomentum(1700, 0, testPaging(10))
	if d.Snap {
		t.Errorf("EndMomentum() in idle decided %+v, want nothing", d)
	}
	if s.LastObservedOffset != 1700 {
		t.Errorf("LastObservedOffset = %v, want 1700", s.LastObservedOffset)
	}
}

func TestPageStateSnap(t *testing.T) {
	p := testPaging(10)
	now := time.Unix(100, 0)
	timeout := 180 * time.Millisecond

	s := PageState{}
	s, cmd, ok := s.Snap(2, false, now, timeout, p)
	if !ok || !cmd.Issue || cmd.Offset != 1600 {
		t.Fatalf("Snap(2) = %+v %v, want scroll to 1600", cmd, ok)
	}
	if s.CurrentIndex != 2 || !s.Suppressed(now) {
		t.Errorf("Snap(2) state = %+v, want index 2 suppressed", s)
	}

	// second snap to the same page while first scroll is in flight
	s, cmd, ok = s.Snap(2, false, now.Add(10*time.Millisecond), timeout, p)
	if !ok || cmd.Issue {
		t.Errorf("repeated Snap(2) = %+v %v, want no scroll", cmd, ok)
	}

	s = s.EndSuppression()
	if s.LastObservedOffset != 1600 || s.Suppressed(now) {
		t.Errorf("EndSuppression() state = %+v", s)
	}
	if _, cmd, _ = s.Snap(2, false, now.Add(time.Second), timeout, p); cmd.Issue {
		t.Error("Snap(2) after landing issued scroll")
	}
}

func TestPageStateGesturePrecedence(t *testing.T) {
	p := testPaging(10)
	s := PageState{}.BeginDrag(0)

	if _, _, ok := s.Snap(5, false, time.Time{}, time.Second, p); ok {
		t.Error("Snap(5) during drag accepted, want rejected")
	}
	next, cmd, ok := s.Snap(5, true, time.Time{}, time.Second, p)
	if !ok || !cmd.Issue || next.CurrentIndex != 5 || next.Phase != common.GesturePhaseIdle {
		t.Errorf("forced Snap(5) = %+v %+v %v", next, cmd, ok)
	}
}

func TestPageStateMoveAcknowledges(t *testing.T) {
	p := testPaging(10)
	now := time.Unix(0, 0)
	s, _, _ := PageState{}.Snap(3, false, now, time.Second, p)

	s, ack := s.Move(1200, 0, now, p)
	if ack {
		t.Fatal("Move() half way acknowledged scroll")
	}
	s, ack = s.Move(2399.5, 0, now, p)
	if !ack || s.Suppressed(now) {
		t.Errorf("Move() at target ack = %v suppressed = %v", ack, s.Suppressed(now))
	}
}

func TestPageStateBeginMomentumWhileSuppressed(t *testing.T) {
	p := testPaging(10)
	now := time.Unix(0, 0)
	s, _, _ := PageState{}.Snap(3, false, now, time.Second, p)
	if _, entered := s.BeginMomentum(now); entered {
		t.Error("BeginMomentum() of programmatic scroll entered momentum")
	}
	if _, entered := s.BeginMomentum(now.Add(2 * time.Second)); !entered {
		t.Error("BeginMomentum() after suppression did not enter momentum")
	}
}

func TestPageStateClamp(t *testing.T) {
	s := PageState{CurrentIndex: 7}
	if got := s.Clamp(3).CurrentIndex; got != 2 {
		t.Errorf("Clamp(3) = %d, want 2", got)
	}
	if got := s.Clamp(0).CurrentIndex; got != 0 {
		t.Errorf("Clamp(0) = %d, want 0", got)
	}
}
