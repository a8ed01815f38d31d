package feed

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"snapfeed/common"
	"snapfeed/media"
)

// Controller is the snap feed controller. See package documentation for its
// threading model.
type Controller struct {
	cfg      settings
	log      *zap.Logger
	clock    Clock
	listener Listener

	items      []Item
	positions  map[string]int
	pageLength float64
	page       PageState

	active   *activeManager
	preload  *preloader
	remount  *Remounter
	recorder ReadyRecorder

	suppressTimer Timer
	idleTimer     Timer

	busy   bool
	queue  []func()
	closed bool
}

// New creates controller for items laid out on pages of pageLength and
// settles it on the first item.
func New(items []Item, pageLength float64, opts ...Option) (*Controller, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.clock == nil {
		return nil, ErrNoClock
	}
	if !(pageLength > 0) {
		return nil, fmt.Errorf("%w: %v", ErrBadPageLength, pageLength)
	}
	positions, err := indexItems(items)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:        cfg,
		log:        cfg.log,
		clock:      cfg.clock,
		listener:   cfg.listener,
		items:      append([]Item(nil), items...),
		positions:  positions,
		pageLength: pageLength,
	}
	if r, ok := cfg.classifier.(ReadyRecorder); ok {
		c.recorder = r
	}
	c.active = newActiveManager(c.log, cfg.muted)
	c.preload = newPreloader(cfg.preload, c.clock, cfg.classifier, c.log, c.emitPreload)
	c.remount = NewRemounter(cfg.remount, c.clock, c.log, c.emitRemount, c.emitUnrecoverable)
	c.remount.post = c.do

	c.log.Debug("Feed created", zap.Int("items", len(items)), zap.Float64("page", pageLength))
	c.do(c.settle)
	return c, nil
}

// Scroll events.

// BeginDrag reports start of user drag at offset.
func (c *Controller) BeginDrag(offset float64) {
	c.do(func() {
		c.stopIdle()
		if !c.page.SuppressUntil.IsZero() {
			c.log.Debug("User drag overrides programmatic scroll")
			c.stopSuppression()
		}
		c.page = c.page.BeginDrag(offset)
	})
}

// Scroll reports scroll position change with velocity in pages per second
// equivalent units of the platform, positive towards larger offsets.
func (c *Controller) Scroll(offset, velocity float64) {
	c.do(func() {
		var ack bool
		c.page, ack = c.page.Move(offset, velocity, c.clock.Now(), c.paging())
		switch {
		case ack:
			c.stopSuppression()
		case c.page.Phase == common.GesturePhaseIdle && !c.page.Suppressed(c.clock.Now()):
			c.armIdle()
		}
	})
}

// EndDrag reports release of user drag. Momentum tells that platform will
// continue with inertial scrolling.
func (c *Controller) EndDrag(offset, velocity float64, momentum bool) {
	c.do(func() {
		var d Decision
		c.page, d = c.page.EndDrag(offset, velocity, momentum, c.paging())
		c.apply(d)
	})
}

// BeginMomentum reports start of inertial scrolling.
func (c *Controller) BeginMomentum() {
	c.do(func() {
		var entered bool
		if c.page, entered = c.page.BeginMomentum(c.clock.Now()); entered {
			c.stopIdle()
		}
	})
}

// EndMomentum reports end of inertial scrolling at offset.
func (c *Controller) EndMomentum(offset, velocity float64) {
	c.do(func() {
		var d Decision
		c.page, d = c.page.EndMomentum(offset, velocity, c.paging())
		c.apply(d)
	})
}

// ScrollSettled acknowledges that scrolling stopped at offset. Programmatic
// scroll in flight is considered complete, otherwise an idle viewport is
// snapped to the nearest page.
func (c *Controller) ScrollSettled(offset float64) {
	c.do(func() {
		now := c.clock.Now()
		if c.page.Suppressed(now) {
			c.page.LastObservedOffset = offset
			c.page.SuppressUntil = time.Time{}
			c.stopSuppression()
			return
		}
		c.page.LastObservedOffset = offset
		if c.page.Phase == common.GesturePhaseIdle {
			c.snap(NearestIndex(offset, c.pageLength, len(c.items)), true, false)
		}
	})
}

// Host commands.

// GoToIndex scrolls to index regardless of user gesture in progress.
func (c *Controller) GoToIndex(index int, animated bool) {
	c.do(func() { c.snap(index, animated, true) })
}

// Next moves one page forward.
func (c *Controller) Next() {
	c.do(func() { c.snap(c.page.CurrentIndex+1, true, true) })
}

// Prev moves one page back.
func (c *Controller) Prev() {
	c.do(func() { c.snap(c.page.CurrentIndex-1, true, true) })
}

// ScrubTo jumps to position on scrub track, 0 - first item, 1 - last.
func (c *Controller) ScrubTo(ratio float64) {
	c.do(func() { c.snap(IndexForRatio(ratio, len(c.items)), false, true) })
}

// Refresh drops preload and recovery state. Current index is kept.
func (c *Controller) Refresh() {
	c.do(func() {
		c.log.Debug("Feed refresh", zap.Int("index", c.page.CurrentIndex))
		c.preload.reset()
		c.remount.Reset()
		if id := c.active.state.ItemID; id != "" {
			if err := c.active.activate(id); err != nil {
				c.activationFailed(id, err)
			} else {
				c.remount.ReportSuccess(id)
			}
		}
		c.settle()
	})
}

// SetItems replaces feed content. Indexes are re-clamped before anything else
// happens, state of removed items is dropped together with their timers.
func (c *Controller) SetItems(items []Item) {
	c.do(func() {
		positions, err := indexItems(items)
		if err != nil {
			c.log.Error("Feed content rejected", zap.Error(err))
			return
		}
		removed := -1
		for id := range c.positions {
			if _, ok := positions[id]; ok {
				continue
			}
			if id == c.active.state.ItemID {
				// stop it while handle is still known
				old, _ := c.active.switchTo(-1, "", c.clock.Now())
				removed = old.Index
			}
			c.preload.forget(id)
			c.remount.Forget(id)
			c.active.detach(id)
		}
		prev := c.page.CurrentIndex
		c.items = append([]Item(nil), items...)
		c.positions = positions
		c.page = c.page.Clamp(len(c.items))
		if pos, ok := c.positions[c.active.state.ItemID]; ok {
			c.active.reindex(pos)
		}
		c.log.Debug("Feed content replaced", zap.Int("items", len(items)), zap.Int("index", c.page.CurrentIndex))
		if removed >= 0 {
			c.emitActive(removed, -1)
		}
		if c.page.CurrentIndex != prev && !c.closed {
			c.emitIndex(c.page.CurrentIndex)
		}
		if c.closed {
			return
		}
		if !c.page.Phase.Gesture() {
			c.snap(c.page.CurrentIndex, false, false)
			return
		}
		c.settle()
	})
}

// Resize changes page length, viewport is realigned on current index.
func (c *Controller) Resize(pageLength float64) {
	c.do(func() {
		if !(pageLength > 0) {
			c.log.Warn("Ignoring bad page length", zap.Float64("page", pageLength))
			return
		}
		c.pageLength = pageLength
		c.snap(c.page.CurrentIndex, false, true)
	})
}

// SetMuted changes mute state, only active item is ever unmuted.
func (c *Controller) SetMuted(muted bool) {
	c.do(func() { c.active.setMuted(muted) })
}

// Attach registers native media handle of item. Attaching handle of active
// item activates it and ends its recovery.
func (c *Controller) Attach(id string, h media.Handle) {
	c.do(func() {
		if _, ok := c.positions[id]; !ok {
			c.log.Debug("Ignoring handle of unknown item", zap.String("id", id))
			return
		}
		if !c.active.attach(id, h) {
			return
		}
		if err := c.active.activate(id); err != nil {
			c.activationFailed(id, err)
			return
		}
		c.remount.ReportSuccess(id)
	})
}

// Detach forgets native media handle of item.
func (c *Controller) Detach(id string) {
	c.do(func() { c.active.detach(id) })
}

// ReportAttachFailure reports that native media handle of item is unusable.
func (c *Controller) ReportAttachFailure(id string) {
	c.do(func() {
		if _, ok := c.positions[id]; ok {
			c.remount.ReportAttachFailure(id)
		}
	})
}

// ReportAttachSuccess reports that native media handle of item works.
func (c *Controller) ReportAttachSuccess(id string) {
	c.do(func() { c.remount.ReportSuccess(id) })
}

// RetryItem restarts recovery of item, used by manual retry control shown
// for unrecoverable items.
func (c *Controller) RetryItem(id string) {
	c.do(func() {
		if _, ok := c.positions[id]; ok {
			c.remount.RetryManually(id)
		}
	})
}

// PreloadDone completes preload request of item, nil err means success.
func (c *Controller) PreloadDone(id string, err error) {
	c.do(func() {
		if !c.preload.done(id, err) || c.recorder == nil {
			return
		}
		if err := c.recorder.MarkReady(id); err != nil {
			c.log.Warn("Unable to record preloaded item", zap.String("id", id), zap.Error(err))
		}
	})
}

// Close cancels all timers. After Close controller ignores all calls and
// never touches media handles, scroller or listener again.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.queue = nil
	c.cfg.scroller = nil
	c.stopSuppression()
	c.stopIdle()
	c.remount.close()
	c.preload.reset()
	c.active.close()
	c.listener = Listener{}
	c.log.Debug("Feed closed")
}

// Queries.

// State returns copy of paging state.
func (c *Controller) State() PageState {
	return c.page
}

// Active returns active item state.
func (c *Controller) Active() ActiveItemState {
	return c.active.state
}

// ActiveIndex returns index of active item, false when there is none.
func (c *Controller) ActiveIndex() (int, bool) {
	return c.active.state.Index, c.active.state.Index >= 0
}

func (c *Controller) ItemCount() int {
	return len(c.items)
}

func (c *Controller) PageLength() float64 {
	return c.pageLength
}

func (c *Controller) Muted() bool {
	return c.active.muted
}

func (c *Controller) PreloadStats() PreloadStats {
	return c.preload.stats()
}

// PreloadEntry returns preload cache entry of item.
func (c *Controller) PreloadEntry(id string) (PreloadEntry, bool) {
	return c.preload.entry(id)
}

// ItemStatus returns recovery status of item media handle.
func (c *Controller) ItemStatus(id string) common.ItemStatus {
	return c.remount.Status(id)
}

// RemountVersion returns number of remounts requested for item so far.
func (c *Controller) RemountVersion(id string) int {
	return c.remount.Version(id)
}

func (c *Controller) Closed() bool {
	return c.closed
}

// internals

// do runs handler atomically. Calls made while another handler runs are
// queued behind it.
func (c *Controller) do(fn func()) {
	if c.closed {
		return
	}
	if c.busy {
		c.queue = append(c.queue, fn)
		return
	}
	c.busy = true
	defer func() {
		c.busy = false
	}()
	fn()
	for len(c.queue) > 0 && !c.closed {
		next := c.queue[0]
		c.queue = c.queue[1:]
		next()
	}
	c.queue = nil
}

func (c *Controller) paging() Paging {
	return Paging{
		PageLength: c.pageLength,
		ItemCount:  len(c.items),
		Thresholds: c.cfg.thresholds,
		Epsilon:    c.cfg.epsilon,
	}
}

func (c *Controller) apply(d Decision) {
	if d.Snap {
		c.snap(d.Index, true, false)
	}
}

// snap aligns viewport with index and commits it. Returns false when rejected
// because of user gesture.
func (c *Controller) snap(index int, animated, force bool) bool {
	prev := c.page.CurrentIndex
	next, cmd, ok := c.page.Snap(index, force, c.clock.Now(), c.cfg.suppressTimeout, c.paging())
	if !ok {
		c.log.Debug("Snap ignored, user gesture in progress", zap.Int("index", index), zap.Stringer("phase", c.page.Phase))
		return false
	}
	c.page = next
	c.stopIdle()
	if cmd.Issue {
		// replaces command in flight if any
		c.stopSuppression()
		if c.cfg.scroller != nil {
			c.cfg.scroller.ScrollTo(cmd.Offset, animated)
		}
		c.armSuppression()
	}
	if c.page.CurrentIndex != prev {
		c.log.Debug("Index committed", zap.Int("from", prev), zap.Int("to", c.page.CurrentIndex))
		c.emitIndex(c.page.CurrentIndex)
	}
	// listener may have closed controller
	if c.closed {
		return true
	}
	c.settle()
	return true
}

// settle propagates committed index to active item and preload window.
func (c *Controller) settle() {
	if len(c.items) == 0 {
		if c.active.state.ItemID != "" {
			old, _ := c.active.switchTo(-1, "", c.clock.Now())
			c.emitActive(old.Index, -1)
		}
		return
	}
	index := c.page.CurrentIndex
	id := c.items[index].ID()
	if id != c.active.state.ItemID {
		old, err := c.active.switchTo(index, id, c.clock.Now())
		if err != nil {
			c.activationFailed(id, err)
		} else {
			c.remount.ReportSuccess(id)
		}
		if c.closed {
			return
		}
		c.emitActive(old.Index, index)
		if c.closed {
			return
		}
	}
	c.preload.schedule(c.items, index)
}

func (c *Controller) activationFailed(id string, err error) {
	c.log.Debug("Unable to activate media", zap.String("id", id), zap.Error(err))
	c.remount.ReportAttachFailure(id)
}

func (c *Controller) armSuppression() {
	if c.closed {
		return
	}
	var t Timer
	t = c.clock.AfterFunc(c.cfg.suppressTimeout, func() {
		c.do(func() {
			if c.suppressTimer != t {
				return
			}
			c.suppressTimer = nil
			c.page = c.page.EndSuppression()
		})
	})
	c.suppressTimer = t
}

func (c *Controller) stopSuppression() {
	if c.suppressTimer != nil {
		c.suppressTimer.Stop()
		c.suppressTimer = nil
	}
}

func (c *Controller) armIdle() {
	c.stopIdle()
	if c.closed || c.cfg.idleSnapDelay <= 0 {
		return
	}
	var t Timer
	t = c.clock.AfterFunc(c.cfg.idleSnapDelay, func() {
		c.do(func() {
			if c.idleTimer != t {
				return
			}
			c.idleTimer = nil
			if c.page.Phase != common.GesturePhaseIdle || c.page.Suppressed(c.clock.Now()) {
				return
			}
			c.snap(NearestIndex(c.page.LastObservedOffset, c.pageLength, len(c.items)), true, false)
		})
	})
	c.idleTimer = t
}

func (c *Controller) stopIdle() {
	if c.idleTimer != nil {
		c.idleTimer.Stop()
		c.idleTimer = nil
	}
}

func (c *Controller) emitIndex(index int) {
	if c.listener.OnIndexChange != nil {
		c.listener.OnIndexChange(index)
	}
}

func (c *Controller) emitActive(oldIndex, newIndex int) {
	if c.listener.OnActiveChange != nil {
		c.listener.OnActiveChange(oldIndex, newIndex)
	}
}

func (c *Controller) emitPreload(id string) {
	if c.listener.OnPreloadRequest != nil {
		c.listener.OnPreloadRequest(id)
	}
}

func (c *Controller) emitRemount(id string, version int) {
	if c.listener.OnRemountRequest != nil {
		c.listener.OnRemountRequest(id, version)
	}
}

func (c *Controller) emitUnrecoverable(id string) {
	if c.listener.OnUnrecoverable != nil {
		c.listener.OnUnrecoverable(id)
	}
}
