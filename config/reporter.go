package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/maruel/natural"
	"go.uber.org/multierr"

	"snapfeed/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates initialized empty reporter. When destination cannot be
// created report goes to temporary directory.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	r := &Report{entries: make(map[string]entry), created: time.Now()}

	if f, err := os.Create(conf.Destination); err == nil {
		r.file = f
	} else if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err == nil {
		r.file = f
	} else {
		return nil, fmt.Errorf("unable to create report: %w", err)
	}
	return r, nil
}

type entry struct {
	// source is what caller asked for, path is what will be archived
	source string
	path   string
	stamp  time.Time
	data   []byte
}

// Report accumulates files and data for debug report archive. Nil *Report is
// valid and ignores everything, so callers do not have to check whether
// report was requested.
type Report struct {
	mu      sync.Mutex
	entries map[string]entry
	file    *os.File
	created time.Time
	// directory with snapshots made by StoreCopy
	tmp string
}

// Close writes archive and removes snapshots.
func (r *Report) Close() (err error) {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	defer func() {
		if r.tmp != "" {
			err = multierr.Append(err, os.RemoveAll(r.tmp))
			r.tmp = ""
		}
	}()
	if r.file == nil {
		return nil
	}
	err = r.finalize()
	err = multierr.Append(err, r.file.Close())
	r.file = nil
	return err
}

// Name returns absolute name of archive being prepared.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store references file which will be read when report is closed, so the
// latest content gets archived. Log files are stored this way.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, exists := r.entries[name]; exists && old.source != path {
		panic(fmt.Sprintf("report entry [%s] is already taken by %s, refusing %s", name, old.source, path))
	}
	e := entry{source: path, path: path}
	if p, err := filepath.Abs(path); err == nil {
		e.path = p
	}
	r.entries[name] = e
}

// StoreData puts data into report under name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		panic(fmt.Sprintf("report entry [%s] is already taken", name))
	}
	r.entries[name] = entry{data: data, stamp: time.Now()}
}

// StoreCopy snapshots file as it is now. Storing under the same name again
// keeps both snapshots, later one gets timestamp suffix.
func (r *Report) StoreCopy(name, path string) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	src, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("unable to copy %s into report: not a regular file", path)
	}

	e := entry{source: path, stamp: time.Now()}
	if _, exists := r.entries[name]; exists {
		name = fmt.Sprintf("%s-%d", name, e.stamp.UnixNano())
	}
	if r.tmp == "" {
		if r.tmp, err = os.MkdirTemp("", misc.GetAppName()+"-r-"); err != nil {
			return err
		}
	}
	if e.path, err = copyFile(r.tmp, src, info.ModTime()); err != nil {
		return err
	}
	r.entries[name] = e
	return nil
}

// copyFile copies src into dir under unique name preserving modification
// time.
func copyFile(dir, src string, modTime time.Time) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.CreateTemp(dir, filepath.Base(src)+".*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	if err := os.Chtimes(out.Name(), modTime, modTime); err != nil {
		return "", err
	}
	return out.Name(), nil
}

func (r *Report) sortedNames() []string {
	names := make([]string, 0, len(r.entries))
	for k := range r.entries {
		names = append(names, k)
	}
	sort.Sort(natural.StringSlice(names))
	return names
}

// finalize writes manifest followed by every entry in manifest order.
// Referenced files which disappeared are listed in manifest only.
func (r *Report) finalize() error {
	arc := zip.NewWriter(r.file)

	now := time.Now()
	names := r.sortedNames()

	manifest := new(bytes.Buffer)
	fmt.Fprintf(manifest, "%s %s (%s)\ncreated %s, closed after %s\n\n",
		misc.GetAppName(), misc.GetVersion(), misc.GetGitHash(), r.created.UTC().Format(time.RFC3339), now.Sub(r.created).Round(time.Millisecond))
	for _, name := range names {
		e := r.entries[name]
		stamp := e.stamp
		if stamp.IsZero() {
			stamp = now
		}
		source := e.source
		if source == "" {
			source = "-"
		}
		fmt.Fprintf(manifest, "%s\t%s\t%s\n", stamp.UTC().Format(time.RFC3339), name, source)
	}

	err := saveFile(arc, "MANIFEST", now, manifest)
	for _, name := range names {
		if err != nil {
			break
		}
		e := r.entries[name]
		if e.data != nil {
			err = saveFile(arc, name, e.stamp, bytes.NewReader(e.data))
			continue
		}
		err = saveReferenced(arc, name, e.path)
	}
	return multierr.Append(err, arc.Close())
}

func saveReferenced(arc *zip.Writer, name, path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return saveFile(arc, name, info.ModTime(), f)
}

func saveFile(dst *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
