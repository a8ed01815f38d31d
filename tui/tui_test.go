package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap/zaptest"

	"snapfeed/common"
	"snapfeed/config"
	"snapfeed/loop"
)

func startFeed(t *testing.T, n int) *Feed {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	vc := cfg.Viewer
	vc.LoadDelay = time.Hour

	log := zaptest.NewLogger(t)
	lp := loop.New(log)
	f, err := NewFeed(lp, Posts(n, 3), cfg.Feed, vc, nil, log)
	if err != nil {
		t.Fatalf("NewFeed() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = lp.Run(ctx)
	}()
	t.Cleanup(func() {
		_ = f.Close(context.Background())
		cancel()
		<-done
	})
	return f
}

func snapshot(t *testing.T, f *Feed) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := f.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	return s
}

func TestPosts(t *testing.T) {
	posts := Posts(6, 3)
	if len(posts) != 6 {
		t.Fatalf("Posts() = %d posts, want 6", len(posts))
	}
	if posts[0].ID() != "post-000" || posts[5].ID() != "post-005" {
		t.Errorf("Posts() ids = %s..%s", posts[0].ID(), posts[5].ID())
	}
	var videos []int
	for i, p := range posts {
		if p.Kind == common.MediaKindVideo {
			videos = append(videos, i)
		}
	}
	if len(videos) != 2 || videos[0] != 2 || videos[1] != 5 {
		t.Errorf("video posts = %v, want [2 5]", videos)
	}
	for _, p := range Posts(4, 0) {
		if p.Kind != common.MediaKindImage {
			t.Errorf("Posts(4, 0) has %s post", p.Kind)
		}
	}
}

func TestFeedStartsOnFirstPost(t *testing.T) {
	f := startFeed(t, 10)
	s := snapshot(t, f)

	if s.Index != 0 || s.Count != 10 || s.Active != "post-000" {
		t.Errorf("snapshot = index %d of %d active %q", s.Index, s.Count, s.Active)
	}
	if !s.Muted {
		t.Error("feed starts unmuted")
	}
	if len(s.Rows) == 0 || !s.Rows[0].Current || !s.Rows[0].Playing {
		t.Errorf("first row = %+v, want current and playing", s.Rows)
	}
	if s.Preload.Loading == 0 {
		t.Errorf("Preload = %+v, want requests in flight", s.Preload)
	}
}

func TestFeedActions(t *testing.T) {
	f := startFeed(t, 10)

	f.Swipe(1)
	s := snapshot(t, f)
	if s.Index != 1 || s.Active != "post-001" {
		t.Fatalf("after swipe index %d active %q, want 1 post-001", s.Index, s.Active)
	}

	f.ToggleMute()
	if s = snapshot(t, f); s.Muted {
		t.Error("ToggleMute() left feed muted")
	}

	f.BreakActive()
	s = snapshot(t, f)
	var row Row
	for _, r := range s.Rows {
		if r.ID == "post-001" {
			row = r
		}
	}
	if row.Status != common.ItemStatusRetrying {
		t.Errorf("broken post status = %s, want retrying", row.Status)
	}

	f.RetryActive()
	snapshot(t, f)
	// remounted media is attached by the next loop turn
	s = snapshot(t, f)
	for _, r := range s.Rows {
		if r.ID != "post-001" {
			continue
		}
		if r.Status != common.ItemStatusOk || r.Version != 1 || !r.Playing {
			t.Errorf("retried post = %+v, want ok v1 playing", r)
		}
	}

	f.Top()
	if s = snapshot(t, f); s.Index != 0 || s.Active != "post-000" {
		t.Errorf("after Top() index %d active %q", s.Index, s.Active)
	}

	f.Refresh()
	s = snapshot(t, f)
	if s.Index != 0 || len(s.Events) == 0 || !strings.Contains(s.Events[len(s.Events)-1], "refresh") {
		t.Errorf("after Refresh() index %d events %v", s.Index, s.Events)
	}
	if len(s.Events) > eventsKept {
		t.Errorf("events kept = %d, want at most %d", len(s.Events), eventsKept)
	}
}

func TestFeedNotify(t *testing.T) {
	f := startFeed(t, 5)
	got := make(chan Snapshot, 16)
	f.SetNotify(func(s Snapshot) { got <- s })

	f.Swipe(1)
	select {
	case s := <-got:
		if s.Index != 1 {
			t.Errorf("notified index = %d, want 1", s.Index)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot published after swipe")
	}
}

func TestModel(t *testing.T) {
	f := startFeed(t, 10)
	m := NewModel(f)
	if !strings.Contains(m.render(), "loading") {
		t.Errorf("render() before snapshot = %q", m.render())
	}

	msg := m.Init()()
	next, _ := m.Update(msg)
	m = next.(Model)
	next, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(Model)

	out := m.render()
	for _, want := range []string{"page 1/10", "post-000", "muted", "q quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("render() lacks %q:\n%s", want, out)
		}
	}
	if !m.View().AltScreen {
		t.Error("View() is not in alt screen")
	}

	if _, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyDown}); cmd != nil {
		t.Error("swipe key returned command")
	}
	if s := snapshot(t, f); s.Index != 1 {
		t.Errorf("after down key index = %d, want 1", s.Index)
	}

	m.Update(tea.KeyPressMsg{Code: 'm', Text: "m"})
	if s := snapshot(t, f); s.Muted {
		t.Error("m key did not unmute")
	}

	// stale snapshot is ignored
	stale := m.snap
	stale.Seq = 0
	stale.Index = 7
	next, _ = m.Update(snapshotMsg(stale))
	if next.(Model).snap.Index == 7 {
		t.Error("stale snapshot replaced newer one")
	}

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	if cmd == nil {
		t.Fatal("q key returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q key does not quit")
	}
}
