package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"snapfeed/common"
	"snapfeed/config"
	"snapfeed/feed"
	"snapfeed/loop"
	"snapfeed/media"
)

const (
	// part of a page user drags on key press
	swipeRatio = 0.4
	// how long simulated programmatic scroll takes to land
	scrollTime = 80 * time.Millisecond
	// number of recent events kept for display
	eventsKept = 8
)

var errBrokenMount = errors.New("simulated broken media mount")

// Post is a feed entry shown by viewer.
type Post struct {
	id   string
	Kind common.MediaKind
}

func (p Post) ID() string {
	return p.id
}

// Posts generates n posts, every videoEvery-th of them a video.
func Posts(n, videoEvery int) []Post {
	posts := make([]Post, 0, n)
	for i := range n {
		p := Post{id: fmt.Sprintf("post-%03d", i)}
		if videoEvery > 0 && i%videoEvery == videoEvery-1 {
			p.Kind = common.MediaKindVideo
		}
		posts = append(posts, p)
	}
	return posts
}

// Row is a state of a single post around current page.
type Row struct {
	Index   int
	ID      string
	Kind    common.MediaKind
	Preload string
	Status  common.ItemStatus
	Version int
	Playing bool
	Current bool
}

// Snapshot is everything viewer displays, taken on loop goroutine.
type Snapshot struct {
	Seq     uint64
	Index   int
	Count   int
	Phase   common.GesturePhase
	Active  string
	Muted   bool
	Preload feed.PreloadStats
	Rows    []Row
	Events  []string
	Uptime  time.Duration
}

// Feed is a live controller owned by event loop. All exported methods are safe
// to call from any goroutine, controller itself is only touched on the loop.
type Feed struct {
	log   *zap.Logger
	loop  *loop.Loop
	clock feed.Clock
	cfg   config.ViewerConfig
	posts []Post
	ctl   *feed.Controller
	start time.Time

	mounts   map[string]*media.Recorder
	failNext map[string]int
	events   []string
	seq      uint64
	// notify is called on loop goroutine after every user action
	notify func(Snapshot)
}

// NewFeed creates controller over posts. Loop must not be running yet.
func NewFeed(lp *loop.Loop, posts []Post, fc config.FeedConfig, vc config.ViewerConfig, classifier feed.Classifier, log *zap.Logger) (*Feed, error) {
	if log == nil {
		log = zap.NewNop()
	}
	f := &Feed{
		log:      log,
		loop:     lp,
		clock:    lp.Clock(),
		cfg:      vc,
		posts:    posts,
		mounts:   make(map[string]*media.Recorder),
		failNext: make(map[string]int),
	}
	f.start = f.clock.Now()

	items := make([]feed.Item, 0, len(posts))
	for _, p := range posts {
		items = append(items, p)
	}
	opts := append(fc.Options(),
		feed.WithClock(f.clock),
		feed.WithLogger(log),
		feed.WithScroller(feed.ScrollerFunc(f.scrollTo)),
		feed.WithListener(feed.Listener{
			OnIndexChange:    func(index int) { f.event("page %d", index) },
			OnActiveChange:   func(_, index int) { f.event("active %d", index) },
			OnPreloadRequest: f.preload,
			OnRemountRequest: f.remount,
			OnUnrecoverable:  func(id string) { f.event("%s is unrecoverable, press t to retry", id) },
		}),
	)
	if classifier != nil {
		opts = append(opts, feed.WithClassifier(classifier))
	}
	ctl, err := feed.New(items, vc.PageLength, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create feed: %w", err)
	}
	f.ctl = ctl
	for _, p := range posts {
		f.mount(p.id)
	}
	return f, nil
}

// SetNotify sets function receiving snapshots after user actions.
func (f *Feed) SetNotify(notify func(Snapshot)) {
	f.loop.Post(func() { f.notify = notify })
}

// Snapshot waits for current state.
func (f *Feed) Snapshot(ctx context.Context) (s Snapshot, err error) {
	err = f.loop.Call(ctx, func() { s = f.snapshot() })
	return s, err
}

// Swipe simulates user drag by a part of a page, dir > 0 - forward.
func (f *Feed) Swipe(dir int) {
	f.post(func() {
		from := f.ctl.State().LastObservedOffset
		to := from + float64(dir)*swipeRatio*f.ctl.PageLength()
		f.ctl.BeginDrag(from)
		f.ctl.Scroll((from+to)/2, float64(dir))
		f.ctl.EndDrag(to, float64(dir), false)
	})
}

// Top jumps to the first post regardless of gesture in progress.
func (f *Feed) Top() {
	f.post(func() { f.ctl.GoToIndex(0, true) })
}

func (f *Feed) ToggleMute() {
	f.post(func() {
		f.ctl.SetMuted(!f.ctl.Muted())
		f.event("muted %t", f.ctl.Muted())
	})
}

// BreakActive makes one more mount of active post fail and reports failure of
// the current one.
func (f *Feed) BreakActive() {
	f.post(func() {
		id := f.ctl.Active().ItemID
		if id == "" {
			return
		}
		f.failNext[id]++
		f.event("%s broken", id)
		f.ctl.ReportAttachFailure(id)
	})
}

// RetryActive restarts recovery of active post.
func (f *Feed) RetryActive() {
	f.post(func() {
		id := f.ctl.Active().ItemID
		if id == "" {
			return
		}
		f.failNext[id] = 0
		f.event("%s retry", id)
		f.ctl.RetryItem(id)
	})
}

func (f *Feed) Refresh() {
	f.post(func() {
		f.event("refresh")
		f.ctl.Refresh()
	})
}

// Close stops controller.
func (f *Feed) Close(ctx context.Context) error {
	return f.loop.Call(ctx, f.ctl.Close)
}

func (f *Feed) post(fn func()) {
	f.loop.Post(func() {
		fn()
		f.publish()
	})
}

func (f *Feed) publish() {
	if f.notify != nil {
		f.notify(f.snapshot())
	}
}

func (f *Feed) event(format string, args ...any) {
	f.events = append(f.events, fmt.Sprintf("%6.2fs "+format, append([]any{f.clock.Now().Sub(f.start).Seconds()}, args...)...))
	if len(f.events) > eventsKept {
		f.events = f.events[len(f.events)-eventsKept:]
	}
}

func (f *Feed) scrollTo(offset float64, animated bool) {
	delay := time.Duration(0)
	if animated {
		delay = scrollTime
	}
	f.clock.AfterFunc(delay, func() {
		f.ctl.Scroll(offset, 0)
		f.publish()
	})
}

func (f *Feed) preload(id string) {
	f.clock.AfterFunc(f.cfg.LoadDelay, func() {
		f.ctl.PreloadDone(id, nil)
		f.publish()
	})
}

func (f *Feed) remount(id string, version int) {
	f.event("remount %s v%d", id, version)
	// view is recreated by host asynchronously
	f.loop.Post(func() {
		f.mount(id)
		f.publish()
	})
}

func (f *Feed) mount(id string) {
	rec := media.NewRecorder(id, nil)
	if f.failNext[id] > 0 {
		f.failNext[id]--
		rec.ActivateErr = errBrokenMount
	}
	f.mounts[id] = rec
	f.ctl.Attach(id, rec)
}

func (f *Feed) snapshot() Snapshot {
	st := f.ctl.State()
	f.seq++
	s := Snapshot{
		Seq:     f.seq,
		Index:   st.CurrentIndex,
		Count:   f.ctl.ItemCount(),
		Phase:   st.Phase,
		Active:  f.ctl.Active().ItemID,
		Muted:   f.ctl.Muted(),
		Preload: f.ctl.PreloadStats(),
		Events:  append([]string(nil), f.events...),
		Uptime:  f.clock.Now().Sub(f.start),
	}
	from, to := max(st.CurrentIndex-2, 0), min(st.CurrentIndex+6, len(f.posts))
	for i := from; i < to; i++ {
		p := f.posts[i]
		row := Row{
			Index:   i,
			ID:      p.id,
			Kind:    p.Kind,
			Preload: "-",
			Status:  f.ctl.ItemStatus(p.id),
			Version: f.ctl.RemountVersion(p.id),
			Current: i == st.CurrentIndex,
		}
		if e, ok := f.ctl.PreloadEntry(p.id); ok {
			row.Preload = e.State.String()
		}
		if rec, ok := f.mounts[p.id]; ok {
			row.Playing, _ = rec.Playing()
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}
