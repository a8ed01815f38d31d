package state

import (
	"archive/zip"
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"snapfeed/config"
)

func TestEnvFromContext(t *testing.T) {
	t.Run("valid context", func(t *testing.T) {
		env := EnvFromContext(ContextWithEnv(context.Background()))
		if env == nil {
			t.Fatal("EnvFromContext() returned nil")
		}
		if env.start.IsZero() {
			t.Error("Environment start time not set")
		}
	})

	t.Run("panic on missing env", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic when env not in context")
			}
		}()
		EnvFromContext(context.Background())
	})
}

func TestLocalEnv_Uptime(t *testing.T) {
	env := &LocalEnv{start: time.Now().Add(-time.Minute)}
	if up := env.Uptime(); up < time.Minute || up > 2*time.Minute {
		t.Errorf("Uptime() = %v, want about a minute", up)
	}
}

func TestLocalEnv_RedirectStdLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	env := &LocalEnv{Log: zap.New(core)}

	env.RedirectStdLog()
	log.Print("from standard logger")
	env.RestoreStdLog()

	if logs.FilterMessage("from standard logger").Len() != 1 {
		t.Errorf("standard log entries = %v, want redirected message", logs.All())
	}

	// nothing to redirect to
	env = &LocalEnv{}
	env.RedirectStdLog()
	if env.restoreStdLog != nil {
		t.Error("restoreStdLog set without logger")
	}
	env.RestoreStdLog()
}

func storeConfig(t *testing.T, path string) *config.Config {
	t.Helper()
	cfg := &config.Config{Version: 1}
	cfg.Store = config.StoreConfig{
		Enable:     true,
		Path:       path,
		MaxAge:     time.Hour,
		MaxEntries: 7,
	}
	return cfg
}

func TestLocalEnv_OpenStore(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		env := &LocalEnv{Cfg: &config.Config{Version: 1}}
		if err := env.OpenStore(); err != nil {
			t.Fatalf("OpenStore() error = %v", err)
		}
		if env.Store != nil {
			t.Error("Store opened while disabled")
		}
		if err := env.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	t.Run("enabled", func(t *testing.T) {
		cfg := storeConfig(t, filepath.Join(t.TempDir(), "cache", "preload.db"))
		env := &LocalEnv{Cfg: cfg, Log: zaptest.NewLogger(t)}
		if err := env.OpenStore(); err != nil {
			t.Fatalf("OpenStore() error = %v", err)
		}
		if env.Store == nil {
			t.Fatal("Store not opened")
		}
		if env.Store.MaxAge != time.Hour || env.Store.MaxEntries != 7 {
			t.Errorf("Store limits = %v/%d, want 1h/7", env.Store.MaxAge, env.Store.MaxEntries)
		}
		opened := env.Store
		if err := env.OpenStore(); err != nil || env.Store != opened {
			t.Error("second OpenStore() replaced store")
		}
		if err := env.Store.MarkReady("item-01"); err != nil {
			t.Fatalf("MarkReady() error = %v", err)
		}
		if err := env.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
		if env.Store != nil {
			t.Error("Store not released on Close")
		}
		if _, err := os.Stat(cfg.Store.Path); err != nil {
			t.Errorf("database file missing: %v", err)
		}
	})
}

func TestLocalEnv_CloseReportsStore(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "report.zip")
	rpt, err := (&config.ReporterConfig{Destination: dest}).Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	env := &LocalEnv{Cfg: storeConfig(t, filepath.Join(dir, "preload.db")), Rpt: rpt, Log: zaptest.NewLogger(t)}
	if err := env.OpenStore(); err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	if err := env.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("report Close() error = %v", err)
	}

	zr, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	var found bool
	for _, f := range zr.File {
		found = found || f.Name == "preload.db"
	}
	if !found {
		t.Error("store database is not in report")
	}
}

func TestLocalEnv_CloseSkipsMemoryStore(t *testing.T) {
	rpt := &config.Report{}
	env := &LocalEnv{Cfg: storeConfig(t, ":memory:"), Rpt: rpt, Log: zaptest.NewLogger(t)}
	if err := env.OpenStore(); err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	// in-memory database cannot be copied, it is simply skipped
	if err := env.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
