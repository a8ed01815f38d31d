package media

import (
	"errors"
	"slices"
	"testing"
	"time"

	"snapfeed/common"
)

type fakePlayer struct {
	calls    []string
	pauseErr error
}

func (p *fakePlayer) Play() error {
	p.calls = append(p.calls, "play")
	return nil
}

func (p *fakePlayer) Pause() error {
	p.calls = append(p.calls, "pause")
	return p.pauseErr
}

func (p *fakePlayer) SetMuted(m bool) error {
	if m {
		p.calls = append(p.calls, "mute")
	} else {
		p.calls = append(p.calls, "unmute")
	}
	return nil
}

func (p *fakePlayer) Seek(pos time.Duration) error {
	p.calls = append(p.calls, "seek "+pos.String())
	return nil
}

type sink []string

func (s *sink) Post(cmd string) error {
	*s = append(*s, cmd)
	return nil
}

func TestNew(t *testing.T) {
	p := &fakePlayer{}
	s := &sink{}
	tests := []struct {
		kind common.MediaKind
		want Handle
	}{
		{common.MediaKindImage, Image{}},
		{common.MediaKindVideo, &Video{Player: p}},
		{common.MediaKindEmbed, &Embed{Sink: s}},
	}
	for _, tt := range tests {
		h, err := New(tt.kind, p, s)
		if err != nil {
			t.Fatalf("New(%s) error = %v", tt.kind, err)
		}
		switch want := tt.want.(type) {
		case Image:
			if _, ok := h.(Image); !ok {
				t.Errorf("New(%s) = %T, want Image", tt.kind, h)
			}
		case *Video:
			if v, ok := h.(*Video); !ok || v.Player != want.Player {
				t.Errorf("New(%s) = %#v", tt.kind, h)
			}
		case *Embed:
			if e, ok := h.(*Embed); !ok || e.Sink != want.Sink {
				t.Errorf("New(%s) = %#v", tt.kind, h)
			}
		}
	}
	if _, err := New(common.MediaKind(42), nil, nil); err == nil {
		t.Error("New() with unknown kind succeeded")
	}
}

func TestVideo(t *testing.T) {
	p := &fakePlayer{pauseErr: errors.New("busy")}
	v := &Video{Player: p, RewindOnDeactivate: true}

	if err := v.Activate(); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	err := v.Deactivate()
	if err == nil {
		t.Error("Deactivate() lost pause error")
	}
	want := []string{"play", "pause", "mute", "seek 0s"}
	if !slices.Equal(p.calls, want) {
		t.Errorf("calls = %v, want %v", p.calls, want)
	}

	var empty *Video
	if err := empty.Activate(); !errors.Is(err, ErrNotAttached) {
		t.Errorf("Activate() without player error = %v", err)
	}
}

func TestEmbed(t *testing.T) {
	s := &sink{}
	e := &Embed{Sink: s}
	e.SetMuted(false)
	e.Activate()
	e.Deactivate()

	want := []string{CmdUnmute, CmdPlay, CmdPause, CmdMute}
	if !slices.Equal(*s, want) {
		t.Errorf("commands = %v, want %v", *s, want)
	}
	if err := (&Embed{}).Activate(); !errors.Is(err, ErrNotAttached) {
		t.Errorf("Activate() without sink error = %v", err)
	}
}

func TestRecorder(t *testing.T) {
	var seen []string
	r := NewRecorder("a", func(id, call string) { seen = append(seen, id+":"+call) })
	r.SetMuted(false)
	r.Activate()
	if active, muted := r.Playing(); !active || muted {
		t.Errorf("Playing() = %v %v, want true false", active, muted)
	}
	r.Deactivate()
	if active, muted := r.Playing(); active || !muted {
		t.Errorf("Playing() = %v %v, want false true", active, muted)
	}
	want := []string{"a:unmute", "a:activate", "a:deactivate"}
	if !slices.Equal(seen, want) {
		t.Errorf("observed = %v, want %v", seen, want)
	}
	if !slices.Equal(r.Calls(), []string{"unmute", "activate", "deactivate"}) {
		t.Errorf("Calls() = %v", r.Calls())
	}
}
