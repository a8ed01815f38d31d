// Package replay implements "replay" command: it replays recorded scroll
// traces and checks their expectations.
package replay

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"snapfeed/archive"
	"snapfeed/config"
	"snapfeed/state"
	"snapfeed/trace"
)

// Extensions of trace files.
var Extensions = []string{".yaml", ".yml"}

// Summary counts replayed traces.
type Summary struct {
	Traces int
	Failed int
	Broken int
}

func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("replay")

	if cmd.Args().Len() == 0 {
		return errors.New("no trace has been specified")
	}
	if err := env.OpenStore(); err != nil {
		return err
	}

	namer, err := NewNamer(env.Cfg.Replay.NameTemplate)
	if err != nil {
		return err
	}
	r := &Replayer{
		Options: trace.Options{Feed: env.Cfg.Feed, Log: log},
		Report:  env.Rpt,
		Namer:   namer,
		Export:  cmd.String("export"),
		Strict:  cmd.Bool("strict"),
		Log:     log,
	}
	if r.Export != "" {
		if err := os.MkdirAll(r.Export, 0755); err != nil {
			return fmt.Errorf("unable to create export directory: %w", err)
		}
	}
	if env.Store != nil {
		r.Options.Classifier = env.Store
	}
	if cmd.Bool("timeline") {
		r.Out = os.Stdout
	}

	log.Info("Processing starting", zap.Strings("sources", cmd.Args().Slice()), zap.Bool("strict", r.Strict))
	defer func(start time.Time) {
		log.Info("Processing completed",
			zap.Int("traces", r.summary.Traces),
			zap.Int("failed", r.summary.Failed),
			zap.Int("broken", r.summary.Broken),
			zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	_, err = r.Process(ctx, cmd.Args().Slice()...)
	return err
}

// Replayer replays traces from files, directories and zip archives.
type Replayer struct {
	Options trace.Options
	// Report receives timeline of every replayed trace, may be nil.
	Report *config.Report
	// Namer names timelines in report and export directory.
	Namer *Namer
	// Export is a directory timelines are written to when set.
	Export string
	// Out receives timelines when set.
	Out io.Writer
	// Strict makes failed expectations an error.
	Strict bool
	Log    *zap.Logger

	summary Summary
}

// Process replays every trace found in sources. Traces which cannot be read
// or replayed are always errors, failed expectations only in strict mode.
func (r *Replayer) Process(ctx context.Context, sources ...string) (Summary, error) {
	if r.Log == nil {
		r.Log = zap.NewNop()
	}
	var err error
	for _, src := range sources {
		if e := ctx.Err(); e != nil {
			return r.summary, multierr.Append(err, e)
		}
		err = multierr.Append(err, r.source(ctx, src))
	}
	if r.summary.Traces == 0 && err == nil {
		err = errors.New("no traces were found")
	}
	return r.summary, err
}

func (r *Replayer) source(ctx context.Context, src string) error {
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}
	switch {
	case fi.IsDir():
		return r.dir(ctx, src)
	case isArchive(src):
		return r.archive(ctx, src)
	default:
		tr, err := trace.Load(src)
		if err != nil {
			r.summary.Broken++
			return err
		}
		return r.replay(ctx, tr)
	}
}

// dir replays traces and archives under directory in natural order.
func (r *Replayer) dir(ctx context.Context, dir string) error {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			r.Log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if isArchive(path) || archive.Matches(path, Extensions) {
			files = append(files, path)
			return nil
		}
		r.Log.Debug("Skipping file, not recognized as trace or archive", zap.String("file", path))
		return nil
	})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		r.Log.Debug("Nothing to process", zap.String("dir", dir))
		return nil
	}
	sort.Sort(natural.StringSlice(files))

	var errs error
	for _, f := range files {
		errs = multierr.Append(errs, r.source(ctx, f))
	}
	return errs
}

func (r *Replayer) archive(ctx context.Context, path string) error {
	var errs error
	err := archive.Walk(path, Extensions, func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			r.summary.Broken++
			errs = multierr.Append(errs, fmt.Errorf("unable to open %s in %s: %w", f.Name, arc, err))
			return nil
		}
		defer rc.Close()

		tr, err := trace.Read(rc, arc+"/"+f.Name)
		if err != nil {
			r.summary.Broken++
			errs = multierr.Append(errs, err)
			return nil
		}
		errs = multierr.Append(errs, r.replay(ctx, tr))
		return nil
	})
	return multierr.Append(err, errs)
}

func (r *Replayer) replay(ctx context.Context, tr *trace.Trace) error {
	res, err := trace.Run(ctx, tr, r.Options)
	if err != nil {
		r.summary.Broken++
		return err
	}
	r.summary.Traces++

	var buf bytes.Buffer
	if err := res.WriteTimeline(&buf); err != nil {
		return err
	}
	name, err := r.Namer.Name(newValues(r.summary.Traces, tr, res))
	if err != nil {
		return err
	}
	if r.Report != nil {
		r.Report.StoreData("replay/"+name, buf.Bytes())
	}
	if r.Export != "" {
		if err := os.WriteFile(filepath.Join(r.Export, name), buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("unable to export timeline: %w", err)
		}
	}
	if r.Out != nil {
		if _, err := r.Out.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("unable to write timeline: %w", err)
		}
	}

	if len(res.Failures) == 0 {
		r.Log.Info("Trace passed", zap.String("title", tr.Title), zap.String("source", tr.Source), zap.Stringer("run", res.RunID))
		return nil
	}
	r.summary.Failed++
	r.Log.Warn("Trace failed", zap.String("title", tr.Title), zap.String("source", tr.Source), zap.Stringer("run", res.RunID), zap.Int("failures", len(res.Failures)))
	if r.Strict {
		return fmt.Errorf("trace %q (%s): %w", tr.Title, tr.Source, res.Err())
	}
	return nil
}

func isArchive(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zip")
}
