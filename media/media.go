// Package media hides platform specific media control behind a single
// capability interface. Feed controller talks to Handle only and never knows
// which kind of media item carries.
package media

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"snapfeed/common"
)

// ErrNotAttached is returned when native media view is not available (yet).
var ErrNotAttached = errors.New("media handle is not attached")

// Handle controls media of a single feed item.
type Handle interface {
	// Activate makes item eligible to play, normally starts playback.
	Activate() error
	// Deactivate stops playback and mutes item.
	Deactivate() error
	SetMuted(muted bool) error
}

// Image is media without playback.
type Image struct{}

func (Image) Activate() error     { return nil }
func (Image) Deactivate() error   { return nil }
func (Image) SetMuted(bool) error { return nil }

// Player is native video player.
type Player interface {
	Play() error
	Pause() error
	SetMuted(muted bool) error
	Seek(pos time.Duration) error
}

// Video controls native video player.
type Video struct {
	Player Player
	// RewindOnDeactivate makes item start from the beginning next time it
	// becomes active.
	RewindOnDeactivate bool
}

func (v *Video) Activate() error {
	if v == nil || v.Player == nil {
		return ErrNotAttached
	}
	return v.Player.Play()
}

func (v *Video) Deactivate() error {
	if v == nil || v.Player == nil {
		return ErrNotAttached
	}
	err := multierr.Append(v.Player.Pause(), v.Player.SetMuted(true))
	if v.RewindOnDeactivate {
		err = multierr.Append(err, v.Player.Seek(0))
	}
	return err
}

func (v *Video) SetMuted(muted bool) error {
	if v == nil || v.Player == nil {
		return ErrNotAttached
	}
	return v.Player.SetMuted(muted)
}

// Commands understood by embedded (iframe) players.
const (
	CmdPlay   = "playVideo"
	CmdPause  = "pauseVideo"
	CmdMute   = "mute"
	CmdUnmute = "unMute"
)

// CommandSink delivers commands into embedded player.
type CommandSink interface {
	Post(command string) error
}

// Embed controls player living inside embedded web view.
type Embed struct {
	Sink CommandSink
}

func (e *Embed) Activate() error {
	return e.post(CmdPlay)
}

func (e *Embed) Deactivate() error {
	return multierr.Append(e.post(CmdPause), e.post(CmdMute))
}

func (e *Embed) SetMuted(muted bool) error {
	if muted {
		return e.post(CmdMute)
	}
	return e.post(CmdUnmute)
}

func (e *Embed) post(cmd string) error {
	if e == nil || e.Sink == nil {
		return ErrNotAttached
	}
	if err := e.Sink.Post(cmd); err != nil {
		return fmt.Errorf("unable to post %q: %w", cmd, err)
	}
	return nil
}

// New returns handle of requested kind. Player is used for video, sink for
// embedded media, image ignores both.
func New(kind common.MediaKind, player Player, sink CommandSink) (Handle, error) {
	switch kind {
	case common.MediaKindImage:
		return Image{}, nil
	case common.MediaKindVideo:
		return &Video{Player: player}, nil
	case common.MediaKindEmbed:
		return &Embed{Sink: sink}, nil
	default:
		return nil, fmt.Errorf("unsupported media kind %s", kind)
	}
}
