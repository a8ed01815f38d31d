// Package state defines shared program state.
package state

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"snapfeed/config"
	"snapfeed/store"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// Store is nil unless preload store is enabled in configuration and has
	// been opened.
	Store *store.Store

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &LocalEnv{start: time.Now()})
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// OpenStore opens preload store when configuration asks for it. Calling it
// more than once is harmless.
func (e *LocalEnv) OpenStore() error {
	if e.Store != nil || e.Cfg == nil || !e.Cfg.Store.Enable {
		return nil
	}
	s, err := store.Open(e.Cfg.Store.Path, e.Log)
	if err != nil {
		return fmt.Errorf("unable to open preload store: %w", err)
	}
	s.MaxAge = e.Cfg.Store.MaxAge
	s.MaxEntries = e.Cfg.Store.MaxEntries
	e.Store = s
	return nil
}

// Close releases resources held by environment.
func (e *LocalEnv) Close() (err error) {
	if e.Store == nil {
		return nil
	}
	err = e.Store.Close()
	e.Store = nil
	// database is complete only after it has been closed
	if e.Rpt != nil && e.Cfg.Store.Path != ":memory:" {
		err = multierr.Append(err, e.Rpt.StoreCopy("preload.db", e.Cfg.Store.Path))
	}
	return err
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
