package feed

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"snapfeed/common"
)

// PreloadWindow is the range of neighbours around active item to preload.
type PreloadWindow struct {
	Behind int
	Ahead  int
}

// PreloadPolicy configures preload scheduling.
type PreloadPolicy struct {
	Window PreloadWindow
	// MaxConcurrent limits number of requests in flight, 0 - no limit.
	MaxConcurrent int
	// CacheCap is the size after which entries far from window are evicted.
	CacheCap int
	// RetentionMargin keeps entries this many pages around window from
	// eviction.
	RetentionMargin int
}

func DefaultPreloadPolicy() PreloadPolicy {
	return PreloadPolicy{
		Window:          PreloadWindow{Behind: 2, Ahead: 5},
		MaxConcurrent:   8,
		CacheCap:        300,
		RetentionMargin: 5,
	}
}

// Window is an inclusive range of indexes. Empty window has End < Start.
type Window struct {
	Start int
	End   int
}

func (w Window) Empty() bool {
	return w.End < w.Start
}

func (w Window) Len() int {
	if w.Empty() {
		return 0
	}
	return w.End - w.Start + 1
}

func (w Window) Contains(index int) bool {
	return !w.Empty() && index >= w.Start && index <= w.End
}

// ComputeWindow returns preload window around activeIndex clamped to the feed
// bounds.
func ComputeWindow(activeIndex, itemCount int, pw PreloadWindow) Window {
	if itemCount <= 0 {
		return Window{Start: 0, End: -1}
	}
	activeIndex = clampIndex(activeIndex, itemCount)
	return Window{
		Start: max(activeIndex-max(pw.Behind, 0), 0),
		End:   min(activeIndex+max(pw.Ahead, 0), itemCount-1),
	}
}

// PreloadEntry remembers what has been requested for an item.
type PreloadEntry struct {
	ItemID      string
	State       common.PreloadState
	RequestedAt time.Time
}

// PreloadStats is a snapshot of preload cache.
type PreloadStats struct {
	Entries int
	Pending int
	Loading int
	Ready   int
}

type candidate struct {
	id       string
	class    common.PreloadClass
	distance int
	forward  bool
}

// preloader keeps preload cache and issues requests in priority order.
type preloader struct {
	policy     PreloadPolicy
	clock      Clock
	log        *zap.Logger
	classifier Classifier
	request    func(id string)

	entries map[string]*PreloadEntry
	queue   []string
	loading int
}

func newPreloader(policy PreloadPolicy, clock Clock, classifier Classifier, log *zap.Logger, request func(string)) *preloader {
	return &preloader{
		policy:     policy,
		clock:      clock,
		log:        log,
		classifier: classifier,
		request:    request,
		entries:    make(map[string]*PreloadEntry),
	}
}

// schedule makes sure every item in window around active is requested once.
func (p *preloader) schedule(items []Item, active int) {
	w := ComputeWindow(active, len(items), p.policy.Window)
	now := p.clock.Now()

	cands := make([]candidate, 0, w.Len())
	for i := w.Start; i <= w.End; i++ {
		id := items[i].ID()
		e, ok := p.entries[id]
		if ok && e.State != common.PreloadStatePending {
			continue
		}
		if !ok {
			p.entries[id] = &PreloadEntry{ItemID: id, State: common.PreloadStatePending, RequestedAt: now}
		}
		d := i - active
		cands = append(cands, candidate{id: id, class: p.classOf(items[i]), distance: max(d, -d), forward: d >= 0})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.class != b.class {
			return a.class < b.class
		}
		if a.distance != b.distance {
			return a.distance < b.distance
		}
		return a.forward && !b.forward
	})

	p.queue = p.queue[:0]
	for _, c := range cands {
		p.queue = append(p.queue, c.id)
	}
	p.pump()
	p.evict(items, w)
}

// pump requests queued items while concurrency limit allows.
func (p *preloader) pump() {
	for len(p.queue) > 0 && (p.policy.MaxConcurrent <= 0 || p.loading < p.policy.MaxConcurrent) {
		id := p.queue[0]
		p.queue = p.queue[1:]

		e, ok := p.entries[id]
		if !ok || e.State != common.PreloadStatePending {
			continue
		}
		e.State = common.PreloadStateLoading
		e.RequestedAt = p.clock.Now()
		p.loading++
		p.log.Debug("Preload requested", zap.String("id", id), zap.Int("loading", p.loading))
		p.request(id)
	}
}

// done completes request. Failed entries are dropped so item could be
// requested again when it is scheduled next time.
func (p *preloader) done(id string, err error) bool {
	e, ok := p.entries[id]
	if !ok || e.State != common.PreloadStateLoading {
		return false
	}
	p.loading--
	if err != nil {
		p.log.Debug("Preload failed", zap.String("id", id), zap.Error(err))
		delete(p.entries, id)
	} else {
		e.State = common.PreloadStateReady
	}
	p.pump()
	return err == nil
}

// evict drops entries far from window, oldest first, when cache grows over its
// cap. Requests in flight are never evicted.
func (p *preloader) evict(items []Item, w Window) {
	if p.policy.CacheCap <= 0 || len(p.entries) <= p.policy.CacheCap {
		return
	}
	keep := make(map[string]struct{})
	if !w.Empty() {
		start := max(w.Start-p.policy.RetentionMargin, 0)
		end := min(w.End+p.policy.RetentionMargin, len(items)-1)
		for i := start; i <= end; i++ {
			keep[items[i].ID()] = struct{}{}
		}
	}
	victims := make([]*PreloadEntry, 0, len(p.entries))
	for id, e := range p.entries {
		if _, ok := keep[id]; ok || e.State == common.PreloadStateLoading {
			continue
		}
		victims = append(victims, e)
	}
	sort.Slice(victims, func(i, j int) bool {
		if victims[i].RequestedAt.Equal(victims[j].RequestedAt) {
			return victims[i].ItemID < victims[j].ItemID
		}
		return victims[i].RequestedAt.Before(victims[j].RequestedAt)
	})
	for _, e := range victims {
		if len(p.entries) <= p.policy.CacheCap {
			break
		}
		delete(p.entries, e.ItemID)
	}
}

// forget removes everything known about item.
func (p *preloader) forget(id string) {
	if e, ok := p.entries[id]; ok {
		if e.State == common.PreloadStateLoading {
			p.loading--
		}
		delete(p.entries, id)
	}
}

func (p *preloader) reset() {
	clear(p.entries)
	p.queue = p.queue[:0]
	p.loading = 0
}

func (p *preloader) entry(id string) (PreloadEntry, bool) {
	if e, ok := p.entries[id]; ok {
		return *e, true
	}
	return PreloadEntry{}, false
}

func (p *preloader) stats() PreloadStats {
	st := PreloadStats{Entries: len(p.entries)}
	for _, e := range p.entries {
		switch e.State {
		case common.PreloadStatePending:
			st.Pending++
		case common.PreloadStateLoading:
			st.Loading++
		case common.PreloadStateReady:
			st.Ready++
		}
	}
	return st
}

// classOf picks the cheapest class known for item.
func (p *preloader) classOf(it Item) common.PreloadClass {
	class := common.PreloadClassRemote
	if c, ok := it.(Classified); ok {
		class = min(class, c.PreloadClass())
	}
	if p.classifier != nil {
		if c, ok := p.classifier.Classify(it.ID()); ok {
			class = min(class, c)
		}
	}
	return class
}
