package replay

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"snapfeed/config"
	"snapfeed/trace"
)

const failing = `title: Wrong index
page_length: 800
items: [{id: a}, {id: b}]
events:
  - op: next
  - op: expect
    expect: {index: 0}
`

const passing = `title: Next page
page_length: 800
items: [{id: a}, {id: b}]
events:
  - op: next
  - op: expect
    expect: {index: 1, active: b}
`

func newReplayer(t *testing.T) *Replayer {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	log := zaptest.NewLogger(t)
	return &Replayer{Options: trace.Options{Feed: cfg.Feed, Log: log}, Log: log}
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessSamples(t *testing.T) {
	r := newReplayer(t)
	var out bytes.Buffer
	r.Out = &out
	r.Strict = true

	sum, err := r.Process(context.Background(), filepath.Join("..", "trace", "testdata"))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if sum.Traces != 3 || sum.Failed != 0 || sum.Broken != 0 {
		t.Errorf("Process() summary = %+v, want 3 passed", sum)
	}
	// natural order of files
	titles := []string{"# Broken video recovers", "# Swipe forward and back", "# Unrecoverable clip and manual retry"}
	var got []string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.HasPrefix(line, "# ") {
			got = append(got, line[:strings.Index(line, " (")])
		}
	}
	if !slices.Equal(got, titles) {
		t.Errorf("timelines = %v, want %v", got, titles)
	}
}

func TestProcessStrict(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "ok.yaml", passing)
	write(t, dir, "bad.yaml", failing)

	r := newReplayer(t)
	sum, err := r.Process(context.Background(), dir)
	if err != nil {
		t.Errorf("Process() without strict error = %v", err)
	}
	if sum.Traces != 2 || sum.Failed != 1 {
		t.Errorf("Process() summary = %+v", sum)
	}

	r = newReplayer(t)
	r.Strict = true
	_, err = r.Process(context.Background(), dir)
	if !errors.Is(err, trace.ErrExpectation) {
		t.Errorf("Process() strict error = %v, want ErrExpectation", err)
	}
	if err != nil && !strings.Contains(err.Error(), "Wrong index") {
		t.Errorf("Process() error = %v, want trace title", err)
	}
}

func TestProcessBrokenTraces(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "ok.yaml", passing)
	write(t, dir, "broken.yaml", "title: [\n")
	write(t, dir, "notes.txt", "not a trace")

	r := newReplayer(t)
	sum, err := r.Process(context.Background(), dir)
	if err == nil {
		t.Error("Process() with broken trace succeeded")
	}
	if sum.Traces != 1 || sum.Broken != 1 {
		t.Errorf("Process() summary = %+v, want 1 replayed and 1 broken", sum)
	}

	if _, err := r.Process(context.Background(), filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Process() with missing source succeeded")
	}
}

func TestProcessNothing(t *testing.T) {
	r := newReplayer(t)
	if _, err := r.Process(context.Background(), t.TempDir()); err == nil {
		t.Error("Process() of empty directory succeeded")
	}
}

func TestProcessArchive(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "traces.zip")
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	for name, content := range map[string]string{"set/10.yaml": failing, "set/9.yaml": passing, "readme.md": "#"} {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	w.Close()
	f.Close()

	r := newReplayer(t)
	var out bytes.Buffer
	r.Out = &out
	sum, err := r.Process(context.Background(), zipPath)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if sum.Traces != 2 || sum.Failed != 1 {
		t.Errorf("Process() summary = %+v", sum)
	}
	text := out.String()
	if strings.Index(text, "# Next page") > strings.Index(text, "# Wrong index") {
		t.Errorf("set/9.yaml replayed after set/10.yaml:\n%s", text)
	}
	if !strings.Contains(text, zipPath+"/set/9.yaml") {
		t.Errorf("timeline does not name source in archive:\n%s", text)
	}
}

func TestProcessReport(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.yaml", passing)
	write(t, dir, "b.yaml", failing)

	rc := config.ReporterConfig{Destination: filepath.Join(t.TempDir(), "report.zip")}
	rpt, err := rc.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	r := newReplayer(t)
	r.Report = rpt
	if _, err := r.Process(context.Background(), dir); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	zr, err := zip.OpenReader(rc.Destination)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	want := []string{"MANIFEST", "replay/001-next-page.txt", "replay/002-wrong-index.txt"}
	if !slices.Equal(names, want) {
		t.Errorf("report entries = %v, want %v", names, want)
	}
}

func TestProcessExport(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.yaml", passing)
	write(t, dir, "b.yaml", failing)

	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	namer, err := NewNamer(cfg.Replay.NameTemplate)
	if err != nil {
		t.Fatalf("NewNamer() error = %v", err)
	}

	r := newReplayer(t)
	r.Namer = namer
	r.Export = t.TempDir()
	if _, err := r.Process(context.Background(), dir); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	for _, name := range []string{"001-next-page.txt", "002-wrong-index.txt"} {
		data, err := os.ReadFile(filepath.Join(r.Export, name))
		if err != nil {
			t.Errorf("exported timeline %s: %v", name, err)
			continue
		}
		if !strings.HasPrefix(string(data), "# ") {
			t.Errorf("exported timeline %s = %q", name, data)
		}
	}
}

func TestNamer(t *testing.T) {
	v := Values{Number: 7, Title: "Swipe / back", Slug: "swipe-back", SourceFile: "swipe", Failures: 2}
	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{"default", "", "007-swipe-back.txt"},
		{"sprig", `{{ .SourceFile | upper }}{{ if not .Passed }}-{{ .Failures }}-failed{{ end }}.log`, "SWIPE-2-failed.log"},
		{"separators removed", `{{ .Title }}`, "Swipe  back"},
		{"leading dots", `..{{ .Number }}`, "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewNamer(tt.tmpl)
			if err != nil {
				t.Fatalf("NewNamer() error = %v", err)
			}
			got, err := n.Name(v)
			if err != nil {
				t.Fatalf("Name() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := NewNamer("{{ .Title"); err == nil {
		t.Error("NewNamer() with broken template succeeded")
	}
	n, _ := NewNamer("{{ .NoSuchField }}")
	if _, err := n.Name(v); err == nil {
		t.Error("Name() with unknown field succeeded")
	}
}
