package trace

import (
	"fmt"
	"strconv"
	"strings"
)

// treeWriter formats nested state as indented lines.
type treeWriter struct {
	w *strings.Builder
}

func newTreeWriter() *treeWriter {
	return &treeWriter{w: &strings.Builder{}}
}

func (tw treeWriter) String() string {
	return tw.w.String()
}

func (tw treeWriter) line(depth int, format string, args ...any) {
	for range depth {
		tw.w.WriteString("  ")
	}
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

func (tw treeWriter) list(depth int, label string, values []string) {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, strconv.Quote(v))
	}
	tw.line(depth, "%s: [%s]", label, strings.Join(quoted, " "))
}

// Dump returns indented description of the snapshot.
func (s Snapshot) Dump() string {
	tw := newTreeWriter()
	tw.line(0, "final state")
	tw.line(1, "index: %d", s.Index)
	tw.line(1, "active: %s", strconv.Quote(s.Active))
	tw.line(1, "phase: %s", s.Phase)
	tw.line(1, "muted: %t", s.Muted)
	tw.line(1, "scrolls: %d", s.Scrolls)
	tw.list(1, "requested", s.Requested)
	tw.line(1, "preload")
	tw.line(2, "entries: %d", s.Preload.Entries)
	tw.line(2, "pending: %d", s.Preload.Pending)
	tw.line(2, "loading: %d", s.Preload.Loading)
	tw.line(2, "ready: %d", s.Preload.Ready)
	if len(s.Items) > 0 {
		tw.line(1, "items")
		for _, it := range s.Items {
			tw.line(2, "%s", it.ID)
			tw.line(3, "kind: %s", it.Kind)
			tw.line(3, "status: %s", it.Status)
			if it.Version > 0 {
				tw.line(3, "version: %d", it.Version)
			}
			if it.Preload != "" {
				tw.line(3, "preload: %s", it.Preload)
			}
			if it.Mounted {
				tw.line(3, "mounted")
			}
		}
	}
	return tw.String()
}
