// Package tui is an interactive terminal viewer driving live feed controller
// with keyboard instead of touch.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"snapfeed/common"
	"snapfeed/config"
	"snapfeed/feed"
	"snapfeed/loop"
)

type keyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Top     key.Binding
	Mute    key.Binding
	Break   key.Binding
	Retry   key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Next:    key.NewBinding(key.WithKeys("down", "j", "space"), key.WithHelp("↓/j", "swipe up")),
	Prev:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "swipe down")),
	Top:     key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Mute:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
	Break:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "break media")),
	Retry:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "retry")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Top, k.Mute, k.Break, k.Retry, k.Refresh, k.Quit}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	currentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	faintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#7D56F4")).Padding(0, 1)
)

// snapshotMsg delivers new feed state to the program.
type snapshotMsg Snapshot

// Model is bubbletea model of the viewer. It never touches controller
// directly, all actions are posted to the feed loop.
type Model struct {
	feed  *Feed
	snap  Snapshot
	ready bool
	width int
}

func NewModel(f *Feed) Model {
	return Model{feed: f}
}

func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		s, err := m.feed.Snapshot(context.Background())
		if err != nil {
			return nil
		}
		return snapshotMsg(s)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		// snapshots are sent concurrently and may arrive out of order
		if m.ready && msg.Seq < m.snap.Seq {
			break
		}
		m.snap = Snapshot(msg)
		m.ready = true
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Next):
			m.feed.Swipe(1)
		case key.Matches(msg, keys.Prev):
			m.feed.Swipe(-1)
		case key.Matches(msg, keys.Top):
			m.feed.Top()
		case key.Matches(msg, keys.Mute):
			m.feed.ToggleMute()
		case key.Matches(msg, keys.Break):
			m.feed.BreakActive()
		case key.Matches(msg, keys.Retry):
			m.feed.RetryActive()
		case key.Matches(msg, keys.Refresh):
			m.feed.Refresh()
		}
	}
	return m, nil
}

func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m Model) render() string {
	if !m.ready {
		return "loading feed..."
	}
	s := m.snap

	var b strings.Builder
	sound := "sound on"
	if s.Muted {
		sound = "muted"
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("page %d/%d", s.Index+1, s.Count)))
	fmt.Fprintf(&b, "  %s  %s  active %s\n", s.Phase, sound, orDash(s.Active))
	fmt.Fprintf(&b, "preload: %d entries, %d loading, %d ready\n\n", s.Preload.Entries, s.Preload.Loading, s.Preload.Ready)

	for _, r := range s.Rows {
		line := fmt.Sprintf("%4d %-9s %-6s %-8s %-13s v%d", r.Index, r.ID, r.Kind, r.Preload, r.Status, r.Version)
		if r.Playing {
			line += "  ▶"
		}
		switch {
		case r.Current:
			line = currentStyle.Render("> " + line)
		case r.Status != common.ItemStatusOk:
			line = failStyle.Render("  " + line)
		default:
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	events := faintStyle.Render(strings.Join(s.Events, "\n"))
	body := lipgloss.JoinVertical(lipgloss.Left, b.String(), events)
	if m.width > 0 {
		body = boxStyle.Width(min(m.width, 72)).Render(body)
	} else {
		body = boxStyle.Render(body)
	}

	var help []string
	for _, k := range keys.help() {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	return body + "\n" + faintStyle.Render(strings.Join(help, " • ")) + "\n"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Run shows interactive viewer until user quits or ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, classifier feed.Classifier, log *zap.Logger, opts ...tea.ProgramOption) error {
	lp := loop.New(log.Named("loop"))
	f, err := NewFeed(lp, Posts(cfg.Viewer.Items, cfg.Viewer.VideoEvery), cfg.Feed, cfg.Viewer, classifier, log.Named("feed"))
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(f), append([]tea.ProgramOption{tea.WithContext(runCtx)}, opts...)...)
	// Send blocks until program reads the message, never call it on the
	// loop goroutine before program started or after it exited
	f.SetNotify(func(s Snapshot) {
		go p.Send(snapshotMsg(s))
	})

	done := make(chan error, 1)
	go func() { done <- lp.Run(runCtx) }()

	_, err = p.Run()
	closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second)
	if cerr := f.Close(closeCtx); cerr != nil {
		log.Debug("Unable to close feed", zap.Error(cerr))
	}
	closeCancel()
	cancel()
	lp.Stop()
	<-done
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("viewer failed: %w", err)
	}
	return nil
}
