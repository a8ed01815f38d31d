package feed

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"snapfeed/media"
)

// ActiveItemState identifies the single item eligible to play media. Index is
// -1 when there is no active item.
type ActiveItemState struct {
	Index       int
	ItemID      string
	ActivatedAt time.Time
}

// activeManager owns "currently playing" slot. Nothing else in the package
// starts or stops media.
type activeManager struct {
	log     *zap.Logger
	handles map[string]media.Handle
	state   ActiveItemState
	muted   bool
}

func newActiveManager(log *zap.Logger, muted bool) *activeManager {
	return &activeManager{
		log:     log,
		handles: make(map[string]media.Handle),
		state:   ActiveItemState{Index: -1},
		muted:   muted,
	}
}

// switchTo deactivates current item and then activates item id at index.
// Deactivation failures are logged and never prevent activation. Activation
// error is returned so caller could start recovery.
func (a *activeManager) switchTo(index int, id string, now time.Time) (old ActiveItemState, err error) {
	old = a.state
	if old.ItemID != "" {
		a.deactivate(old.ItemID)
	}
	if id == "" {
		a.state = ActiveItemState{Index: -1}
		return old, nil
	}
	a.state = ActiveItemState{Index: index, ItemID: id, ActivatedAt: now}
	return old, a.activate(id)
}

// reindex moves active slot to new position of the same item.
func (a *activeManager) reindex(index int) {
	a.state.Index = index
}

func (a *activeManager) activate(id string) error {
	h, ok := a.handles[id]
	if !ok || h == nil {
		return media.ErrNotAttached
	}
	if err := h.SetMuted(a.muted); err != nil && !errors.Is(err, media.ErrNotAttached) {
		a.log.Warn("Unable to set mute state", zap.String("id", id), zap.Error(err))
	}
	return h.Activate()
}

func (a *activeManager) deactivate(id string) {
	h, ok := a.handles[id]
	if !ok || h == nil {
		return
	}
	if err := safeCall(h.Deactivate); err != nil {
		a.log.Warn("Unable to deactivate media, ignoring", zap.String("id", id), zap.Error(err))
	}
}

// attach registers handle. Handles of inactive items are deactivated right
// away to keep single active item invariant.
func (a *activeManager) attach(id string, h media.Handle) (isActive bool) {
	a.handles[id] = h
	if id == a.state.ItemID {
		return true
	}
	a.deactivate(id)
	return false
}

func (a *activeManager) detach(id string) {
	delete(a.handles, id)
}

func (a *activeManager) setMuted(muted bool) {
	a.muted = muted
	id := a.state.ItemID
	if h, ok := a.handles[id]; ok && h != nil {
		if err := h.SetMuted(muted); err != nil {
			a.log.Warn("Unable to set mute state", zap.String("id", id), zap.Error(err))
		}
	}
}

func (a *activeManager) close() {
	clear(a.handles)
	a.state = ActiveItemState{Index: -1}
}

// safeCall converts panic in media backend into error, failed pause must not
// prevent activation of the next item.
func safeCall(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("media backend panic: %v", r)
		}
	}()
	return f()
}
