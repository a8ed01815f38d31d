package feed

import (
	"errors"
	"slices"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"snapfeed/media"
)

type panicHandle struct{}

func (panicHandle) Activate() error     { return nil }
func (panicHandle) Deactivate() error   { panic("native player is gone") }
func (panicHandle) SetMuted(bool) error { return nil }

func TestActiveManagerOrder(t *testing.T) {
	var calls []string
	observe := func(id, call string) { calls = append(calls, id+":"+call) }

	a := newActiveManager(zaptest.NewLogger(t), true)
	a.attach("a", media.NewRecorder("a", observe))
	a.attach("b", media.NewRecorder("b", observe))
	calls = nil

	if _, err := a.switchTo(0, "a", time.Time{}); err != nil {
		t.Fatalf("switchTo(a) error = %v", err)
	}
	old, err := a.switchTo(1, "b", time.Time{})
	if err != nil {
		t.Fatalf("switchTo(b) error = %v", err)
	}
	if old.ItemID != "a" || old.Index != 0 {
		t.Errorf("old = %+v, want a at 0", old)
	}

	want := []string{"a:mute", "a:activate", "a:deactivate", "b:mute", "b:activate"}
	if !slices.Equal(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestActiveManagerDeactivateFailure(t *testing.T) {
	a := newActiveManager(zaptest.NewLogger(t), false)
	a.handles["a"] = panicHandle{}
	b := media.NewRecorder("b", nil)
	b.DeactivateErr = errors.New("ignored")
	a.attach("b", b)

	if _, err := a.switchTo(0, "a", time.Time{}); err != nil {
		t.Fatalf("switchTo(a) error = %v", err)
	}
	if _, err := a.switchTo(1, "b", time.Time{}); err != nil {
		t.Fatalf("switchTo(b) after panic error = %v", err)
	}
	if active, muted := b.Playing(); !active || muted {
		t.Errorf("b active = %v muted = %v, want playing unmuted", active, muted)
	}
}

func TestActiveManagerNotAttached(t *testing.T) {
	a := newActiveManager(zaptest.NewLogger(t), true)
	_, err := a.switchTo(3, "ghost", time.Time{})
	if !errors.Is(err, media.ErrNotAttached) {
		t.Errorf("switchTo() error = %v, want ErrNotAttached", err)
	}
	if a.state.ItemID != "ghost" || a.state.Index != 3 {
		t.Errorf("state = %+v, slot must be taken even without handle", a.state)
	}
}

func TestActiveManagerMute(t *testing.T) {
	a := newActiveManager(zaptest.NewLogger(t), true)
	r := media.NewRecorder("a", nil)
	a.attach("a", r)
	a.switchTo(0, "a", time.Time{})

	a.setMuted(false)
	if _, muted := r.Playing(); muted {
		t.Error("active item still muted")
	}
}
