// Package common holds enums shared between configuration, the feed core and
// the tools built around it. Generated code lives in enums_enum.go, run
// "go tool go-enum --marshal --names -f enums.go" after changing declarations.
package common

// Phase of the user gesture as seen by the feed tracker.
// ENUM(idle, dragging, settling, momentum)
type GesturePhase int

// Gesture reports whether phase belongs to an active user gesture, one that
// programmatic scrolls must not interrupt unless forced.
func (p GesturePhase) Gesture() bool {
	return p == GesturePhaseDragging || p == GesturePhaseMomentum
}

// State of a preload cache entry.
// ENUM(pending, loading, ready)
type PreloadState int

// Cost class of preloading an item, cheaper classes are requested first.
// ENUM(cached, local, remote)
type PreloadClass int

// Kind of media an item carries.
// ENUM(image, video, embed)
type MediaKind int

// Recovery status of an item native media handle.
// ENUM(ok, retrying, unrecoverable)
type ItemStatus int
