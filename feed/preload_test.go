package feed

import (
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"snapfeed/common"
)

type classed struct {
	id    string
	class common.PreloadClass
}

func (c classed) ID() string                        { return c.id }
func (c classed) PreloadClass() common.PreloadClass { return c.class }

type mapClassifier map[string]common.PreloadClass

func (m mapClassifier) Classify(id string) (common.PreloadClass, bool) {
	c, ok := m[id]
	return c, ok
}

func numbered(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Key(fmt.Sprintf("item-%02d", i))
	}
	return items
}

func TestComputeWindow(t *testing.T) {
	pw := DefaultPreloadPolicy().Window
	tests := []struct {
		active, count int
		want          Window
	}{
		{10, 20, Window{8, 15}},
		{0, 20, Window{0, 5}},
		{19, 20, Window{17, 19}},
		{1, 3, Window{0, 2}},
		{5, 0, Window{0, -1}},
	}
	for _, tt := range tests {
		got := ComputeWindow(tt.active, tt.count, pw)
		if got != tt.want {
			t.Errorf("ComputeWindow(%d, %d) = %+v, want %+v", tt.active, tt.count, got, tt.want)
		}
	}
	if !ComputeWindow(0, 0, pw).Empty() {
		t.Error("window of empty feed is not empty")
	}
}

func TestPreloaderWindowRequestedOnce(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	policy := DefaultPreloadPolicy()
	policy.MaxConcurrent = 0

	var requested []string
	p := newPreloader(policy, clock, nil, zaptest.NewLogger(t), func(id string) { requested = append(requested, id) })
	items := numbered(20)

	for range 3 {
		p.schedule(items, 10)
	}

	want := []string{"item-10", "item-11", "item-09", "item-12", "item-08", "item-13", "item-14", "item-15"}
	if !slices.Equal(requested, want) {
		t.Errorf("requested = %v, want %v", requested, want)
	}
	if st := p.stats(); st.Loading != 8 || st.Entries != 8 {
		t.Errorf("stats() = %+v, want 8 loading", st)
	}
}

func TestPreloaderClassOrder(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	var requested []string
	classifier := mapClassifier{"d": common.PreloadClassCached}
	p := newPreloader(DefaultPreloadPolicy(), clock, classifier, zaptest.NewLogger(t), func(id string) { requested = append(requested, id) })

	items := []Item{
		Key("a"),
		classed{"b", common.PreloadClassLocal},
		Key("c"),
		Key("d"),
		classed{"e", common.PreloadClassLocal},
	}
	p.schedule(items, 0)

	want := []string{"d", "b", "e", "a", "c"}
	if !slices.Equal(requested, want) {
		t.Errorf("requested = %v, want %v", requested, want)
	}
}

func TestPreloaderConcurrencyAndFailures(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	policy := DefaultPreloadPolicy()
	policy.MaxConcurrent = 2

	var requested []string
	p := newPreloader(policy, clock, nil, zaptest.NewLogger(t), func(id string) { requested = append(requested, id) })
	items := numbered(4)
	p.schedule(items, 0)

	if len(requested) != 2 {
		t.Fatalf("requested %v, want 2 in flight", requested)
	}
	if !p.done("item-00", nil) {
		t.Error("done(item-00) = false, want true")
	}
	if p.done("item-00", nil) {
		t.Error("second done(item-00) = true, want false")
	}
	if p.done("item-01", errors.New("network")) {
		t.Error("failed done(item-01) = true")
	}
	if len(requested) != 4 {
		t.Fatalf("requested %v, want all 4", requested)
	}
	if _, ok := p.entry("item-01"); ok {
		t.Error("failed entry kept")
	}

	p.done("item-02", nil)
	p.done("item-03", nil)

	// failed item is requested again on the next schedule
	p.schedule(items, 0)
	if requested[len(requested)-1] != "item-01" {
		t.Errorf("requested = %v, want item-01 again", requested)
	}
	if e, _ := p.entry("item-00"); e.State != common.PreloadStateReady {
		t.Errorf("item-00 state = %s, want ready", e.State)
	}
}

func TestPreloaderEviction(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	policy := PreloadPolicy{Window: PreloadWindow{Behind: 0, Ahead: 1}, CacheCap: 4, RetentionMargin: 1}

	p := newPreloader(policy, clock, nil, zaptest.NewLogger(t), func(string) {})
	items := numbered(20)
	for i := 0; i < 10; i++ {
		p.schedule(items, i)
		p.done(items[i].ID(), nil)
		p.done(items[i+1].ID(), nil)
		clock.Advance(time.Second)
	}

	if st := p.stats(); st.Entries > 4 {
		t.Errorf("stats() = %+v, want at most 4 entries", st)
	}
	for _, id := range []string{"item-08", "item-09", "item-10"} {
		if _, ok := p.entry(id); !ok {
			t.Errorf("entry %s evicted", id)
		}
	}
	if _, ok := p.entry("item-00"); ok {
		t.Error("oldest entry item-00 kept")
	}
}
