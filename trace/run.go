package trace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"snapfeed/common"
	"snapfeed/config"
	"snapfeed/feed"
	"snapfeed/media"
)

// epoch is the manual clock start when Options.Start is not set.
var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

var errBrokenMount = errors.New("simulated broken media mount")

// Options control replay.
type Options struct {
	// Feed is the base feed configuration trace overrides are applied to.
	Feed       config.FeedConfig
	Classifier feed.Classifier
	Log        *zap.Logger
	Start      time.Time
}

// Entry is a single line of replay timeline.
type Entry struct {
	At   time.Duration
	Step int
	Text string
}

func (e Entry) String() string {
	return fmt.Sprintf("%8s #%03d %s", e.At, e.Step, e.Text)
}

// Snapshot is controller state at the end of replay.
type Snapshot struct {
	Index     int
	Active    string
	Phase     common.GesturePhase
	Muted     bool
	Scrolls   int
	Requested []string
	Preload   feed.PreloadStats
	Items     []ItemState
}

// ItemState describes single item known to replay.
type ItemState struct {
	ID      string
	Kind    common.MediaKind
	Status  common.ItemStatus
	Version int
	Preload string
	Mounted bool
}

// Result of a replay.
type Result struct {
	RunID    uuid.UUID
	Title    string
	Source   string
	Timeline []Entry
	Failures []Entry
	Final    Snapshot
}

// Err returns all failed expectations combined, nil when replay met every
// expectation.
func (r *Result) Err() (err error) {
	for _, f := range r.Failures {
		err = multierr.Append(err, fmt.Errorf("%w: step %d: %s", ErrExpectation, f.Step, f.Text))
	}
	return err
}

// WriteTimeline writes human readable timeline.
func (r *Result) WriteTimeline(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# %s (%s) run %s\n", r.Title, r.Source, r.RunID); err != nil {
		return err
	}
	for _, e := range r.Timeline {
		if _, err := fmt.Fprintln(w, e.String()); err != nil {
			return err
		}
	}
	for _, f := range r.Failures {
		if _, err := fmt.Fprintf(w, "FAIL %s\n", f.String()); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, r.Final.Dump())
	return err
}

type runner struct {
	tr    *Trace
	log   *zap.Logger
	clock *feed.ManualClock
	start time.Time
	c     *feed.Controller
	res   *Result
	step  int

	kinds    map[string]common.MediaKind
	failLeft map[string]int
	mounts   map[string]*media.Recorder
	// calls into controller made before it was constructed
	deferred  []func(*feed.Controller)
	scrolls   []float64
	requested []string
}

// Run replays trace. Error is returned when trace cannot be replayed at all,
// failed expectations are reported in Result.
func Run(ctx context.Context, tr *Trace, opts Options) (*Result, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	start := opts.Start
	if start.IsZero() {
		start = epoch
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("unable to generate run id: %w", err)
	}
	fc, err := tr.feedConfig(opts.Feed)
	if err != nil {
		return nil, fmt.Errorf("unable to configure feed for %s: %w", tr.Source, err)
	}

	r := &runner{
		tr:       tr,
		log:      log.Named("replay").With(zap.Stringer("run", id)),
		clock:    feed.NewManualClock(start),
		start:    start,
		res:      &Result{RunID: id, Title: tr.Title, Source: tr.Source},
		kinds:    make(map[string]common.MediaKind),
		failLeft: make(map[string]int),
		mounts:   make(map[string]*media.Recorder),
	}
	r.learn(tr.Items)

	fopts := append(fc.Options(),
		feed.WithClock(r.clock),
		feed.WithLogger(r.log),
		feed.WithScroller(feed.ScrollerFunc(r.scrollTo)),
		feed.WithListener(r.listener()),
	)
	if tr.Muted != nil {
		fopts = append(fopts, feed.WithMuted(*tr.Muted))
	}
	if opts.Classifier != nil {
		fopts = append(fopts, feed.WithClassifier(opts.Classifier))
	}

	r.log.Info("Replay started", zap.String("title", tr.Title), zap.String("source", tr.Source), zap.Int("items", len(tr.Items)), zap.Int("events", len(tr.Events)))

	c, err := feed.New(feedItems(tr.Items), tr.PageLength, fopts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create feed for %s: %w", tr.Source, err)
	}
	r.c = c
	defer c.Close()

	for _, f := range r.deferred {
		f(c)
	}
	r.deferred = nil
	for _, it := range tr.Items {
		r.mount(it.ID)
	}

	for i, ev := range tr.Events {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("replay of %s interrupted: %w", tr.Source, err)
		}
		r.step = i + 1
		r.apply(ev)
	}

	r.res.Final = r.snapshot()
	r.log.Info("Replay finished",
		zap.Int("index", r.res.Final.Index),
		zap.Int("scrolls", r.res.Final.Scrolls),
		zap.Int("failures", len(r.res.Failures)),
		zap.Duration("elapsed", r.clock.Now().Sub(r.start)))
	return r.res, nil
}

func (r *runner) note(format string, args ...any) {
	e := Entry{At: r.clock.Now().Sub(r.start), Step: r.step, Text: fmt.Sprintf(format, args...)}
	r.res.Timeline = append(r.res.Timeline, e)
	r.log.Debug("Replay", zap.Duration("at", e.At), zap.Int("step", e.Step), zap.String("event", e.Text))
}

func (r *runner) fail(format string, args ...any) {
	e := Entry{At: r.clock.Now().Sub(r.start), Step: r.step, Text: fmt.Sprintf(format, args...)}
	r.res.Failures = append(r.res.Failures, e)
	r.log.Warn("Expectation failed", zap.Int("step", e.Step), zap.String("reason", e.Text))
}

// call runs f against controller, postponing it while controller is being
// constructed.
func (r *runner) call(f func(*feed.Controller)) {
	if r.c == nil {
		r.deferred = append(r.deferred, f)
		return
	}
	f(r.c)
}

func (r *runner) listener() feed.Listener {
	return feed.Listener{
		OnIndexChange: func(index int) {
			r.note("index %d", index)
		},
		OnActiveChange: func(oldIndex, newIndex int) {
			r.note("active %d -> %d", oldIndex, newIndex)
		},
		OnPreloadRequest: func(id string) {
			r.requested = append(r.requested, id)
			r.note("preload %s", id)
			if r.tr.AutoPreload {
				r.call(func(c *feed.Controller) { c.PreloadDone(id, nil) })
			}
		},
		OnRemountRequest: func(id string, version int) {
			r.note("remount %s v%d", id, version)
			r.call(func(*feed.Controller) { r.mount(id) })
		},
		OnUnrecoverable: func(id string) {
			r.note("unrecoverable %s", id)
		},
	}
}

func (r *runner) scrollTo(offset float64, animated bool) {
	r.scrolls = append(r.scrolls, offset)
	if animated {
		r.note("scroll to %g animated", offset)
		return
	}
	r.note("scroll to %g", offset)
}

func (r *runner) observe(id, call string) {
	r.note("%s %s", id, call)
}

// learn remembers kinds and failure budgets of items not seen before.
func (r *runner) learn(specs []ItemSpec) {
	for _, s := range specs {
		if _, ok := r.kinds[s.ID]; ok {
			continue
		}
		r.kinds[s.ID] = s.Kind
		r.failLeft[s.ID] = s.FailAttach
	}
}

// mount attaches fresh media to item the way host would after (re)creating
// its view.
func (r *runner) mount(id string) {
	rec := media.NewRecorder(id, r.observe)
	if r.failLeft[id] > 0 {
		r.failLeft[id]--
		rec.ActivateErr = errBrokenMount
	}
	r.mounts[id] = rec
	r.note("mount %s %s", r.kinds[id], id)
	r.c.Attach(id, rec)
}

func animated(ev Event) bool {
	return ev.Animated == nil || *ev.Animated
}

func (r *runner) apply(ev Event) {
	c := r.c
	switch ev.Op {
	case OpDragBegin:
		c.BeginDrag(ev.Offset)
	case OpScroll:
		c.Scroll(ev.Offset, ev.Velocity)
	case OpDragEnd:
		c.EndDrag(ev.Offset, ev.Velocity, ev.Momentum)
	case OpMomentumBegin:
		c.BeginMomentum()
	case OpMomentumEnd:
		c.EndMomentum(ev.Offset, ev.Velocity)
	case OpSettled:
		c.ScrollSettled(ev.Offset)
	case OpLand:
		r.land()
	case OpSwipe:
		from := c.State().LastObservedOffset
		c.BeginDrag(from)
		c.Scroll(from+ev.Delta/2, ev.Velocity)
		c.Scroll(from+ev.Delta, ev.Velocity)
		c.EndDrag(from+ev.Delta, ev.Velocity, false)
		r.land()
	case OpAdvance:
		r.clock.Advance(time.Duration(ev.Ms) * time.Millisecond)
	case OpGoto:
		c.GoToIndex(ev.Index, animated(ev))
	case OpNext:
		c.Next()
	case OpPrev:
		c.Prev()
	case OpScrub:
		c.ScrubTo(ev.Ratio)
	case OpRefresh:
		c.Refresh()
	case OpSetItems:
		r.learn(ev.Items)
		known := make(map[string]bool, c.ItemCount())
		for id := range r.mounts {
			known[id] = true
		}
		c.SetItems(feedItems(ev.Items))
		for _, it := range ev.Items {
			if !known[it.ID] {
				r.mount(it.ID)
			}
		}
	case OpResize:
		c.Resize(ev.Page)
	case OpMute:
		c.SetMuted(ev.Muted)
	case OpAttach:
		r.mount(ev.ID)
	case OpDetach:
		delete(r.mounts, ev.ID)
		c.Detach(ev.ID)
	case OpAttachFail:
		c.ReportAttachFailure(ev.ID)
	case OpAttachOk:
		c.ReportAttachSuccess(ev.ID)
	case OpPreloadDone:
		var err error
		if ev.Error != "" {
			err = errors.New(ev.Error)
		}
		c.PreloadDone(ev.ID, err)
	case OpRetry:
		c.RetryItem(ev.ID)
	case OpExpect:
		r.check(ev.Expect)
	}
}

// land reports arrival of the last programmatic scroll.
func (r *runner) land() {
	if len(r.scrolls) == 0 {
		return
	}
	r.c.Scroll(r.scrolls[len(r.scrolls)-1], 0)
}

func (r *runner) playing() (ids []string) {
	for id, rec := range r.mounts {
		if active, _ := rec.Playing(); active {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func (r *runner) check(x *Expect) {
	c := r.c
	if x.Index != nil {
		if got := c.State().CurrentIndex; got != *x.Index {
			r.fail("index = %d, want %d", got, *x.Index)
		}
	}
	if x.Active != nil {
		if got := c.Active().ItemID; got != *x.Active {
			r.fail("active = %q, want %q", got, *x.Active)
		}
	}
	if x.Phase != nil {
		if got := c.State().Phase; got != *x.Phase {
			r.fail("phase = %s, want %s", got, *x.Phase)
		}
	}
	if x.Playing != nil {
		got := r.playing()
		switch {
		case len(got) > 1:
			r.fail("several items playing: %v", got)
		case *x.Playing == "" && len(got) != 0:
			r.fail("playing = %v, want nothing", got)
		case *x.Playing != "" && (len(got) == 0 || got[0] != *x.Playing):
			r.fail("playing = %v, want %s", got, *x.Playing)
		}
	}
	if x.Muted != nil {
		if got := c.Muted(); got != *x.Muted {
			r.fail("muted = %t, want %t", got, *x.Muted)
		}
	}
	if x.Scrolls != nil {
		if got := len(r.scrolls); got != *x.Scrolls {
			r.fail("scrolls = %d, want %d", got, *x.Scrolls)
		}
	}
	ids := make([]string, 0, len(x.Status))
	for id := range x.Status {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if got := c.ItemStatus(id); got != x.Status[id] {
			r.fail("status of %s = %s, want %s", id, got, x.Status[id])
		}
	}
	if x.Requested != nil && !slices.Equal(r.requested, x.Requested) {
		r.fail("requested = %v, want %v", r.requested, x.Requested)
	}
}

func (r *runner) snapshot() Snapshot {
	st := r.c.State()
	return Snapshot{
		Index:     st.CurrentIndex,
		Active:    r.c.Active().ItemID,
		Phase:     st.Phase,
		Muted:     r.c.Muted(),
		Scrolls:   len(r.scrolls),
		Requested: slices.Clone(r.requested),
		Preload:   r.c.PreloadStats(),
		Items:     r.items(),
	}
}

func (r *runner) items() []ItemState {
	ids := make([]string, 0, len(r.kinds))
	for id := range r.kinds {
		ids = append(ids, id)
	}
	sort.Sort(natural.StringSlice(ids))

	out := make([]ItemState, 0, len(ids))
	for _, id := range ids {
		it := ItemState{
			ID:      id,
			Kind:    r.kinds[id],
			Status:  r.c.ItemStatus(id),
			Version: r.c.RemountVersion(id),
		}
		if e, ok := r.c.PreloadEntry(id); ok {
			it.Preload = e.State.String()
		}
		_, it.Mounted = r.mounts[id]
		out = append(out, it)
	}
	return out
}
