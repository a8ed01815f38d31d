// Package store keeps track of feed items whose content has been preloaded,
// so it could be requested first after restart.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"snapfeed/common"
	"snapfeed/feed"
)

const schema = `
CREATE TABLE IF NOT EXISTS preload (
	id       TEXT PRIMARY KEY,
	ready_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS preload_ready_at ON preload(ready_at);
`

const (
	DefaultMaxAge     = 24 * time.Hour
	DefaultMaxEntries = 300
)

// Stats describes store content.
type Stats struct {
	Entries int
	Expired int
	Oldest  time.Time
	Newest  time.Time
}

// Store is a persistent set of preloaded item identifiers. It is safe for
// concurrent use.
type Store struct {
	MaxAge     time.Duration
	MaxEntries int
	// Now is used by methods without explicit time, time.Now by default.
	Now func() time.Time

	log  *zap.Logger
	mu   sync.Mutex
	conn *sqlite.Conn
}

// Open opens (creating when necessary) store database at path. Empty path or
// ":memory:" opens transient in-memory store.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		conn *sqlite.Conn
		err  error
	)
	if path == "" || path == ":memory:" {
		conn, err = sqlite.OpenConn(":memory:", sqlite.OpenReadWrite, sqlite.OpenMemory)
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("unable to create store directory: %w", err)
		}
		conn, err = sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenWAL)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open preload store: %w", err)
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to prepare preload store: %w", err)
	}
	log.Debug("Preload store opened", zap.String("path", path))

	return &Store{
		MaxAge:     DefaultMaxAge,
		MaxEntries: DefaultMaxEntries,
		Now:        time.Now,
		log:        log,
		conn:       conn,
	}, nil
}

// Close closes database. Store must not be used afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	if err != nil {
		return fmt.Errorf("unable to close preload store: %w", err)
	}
	return nil
}

// MarkReadyAt records item as preloaded at time at.
func (s *Store) MarkReadyAt(id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := sqlitex.Execute(s.conn,
		`INSERT INTO preload(id, ready_at) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET ready_at = excluded.ready_at`,
		&sqlitex.ExecOptions{Args: []any{id, at.UnixMilli()}})
	if err != nil {
		return fmt.Errorf("unable to record %q: %w", id, err)
	}
	return nil
}

// MarkReady implements feed.ReadyRecorder.
func (s *Store) MarkReady(id string) error {
	return s.MarkReadyAt(id, s.Now())
}

// IsCached reports whether item was preloaded no longer than MaxAge before
// now.
func (s *Store) IsCached(id string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found bool
	err := sqlitex.Execute(s.conn,
		`SELECT 1 FROM preload WHERE id = ? AND ready_at > ?`,
		&sqlitex.ExecOptions{
			Args: []any{id, now.Add(-s.MaxAge).UnixMilli()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				return nil
			},
		})
	if err != nil {
		return false, fmt.Errorf("unable to look up %q: %w", id, err)
	}
	return found, nil
}

// Classify implements feed.Classifier, items cached in the store are the
// cheapest to preload.
func (s *Store) Classify(id string) (common.PreloadClass, bool) {
	cached, err := s.IsCached(id, s.Now())
	if err != nil {
		s.log.Warn("Unable to classify item", zap.String("id", id), zap.Error(err))
		return 0, false
	}
	if !cached {
		return 0, false
	}
	return common.PreloadClassCached, true
}

// Prune removes expired entries and then oldest entries above MaxEntries.
// Returns number of removed entries.
func (s *Store) Prune(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int
	err := sqlitex.Execute(s.conn, `DELETE FROM preload WHERE ready_at <= ?`,
		&sqlitex.ExecOptions{Args: []any{now.Add(-s.MaxAge).UnixMilli()}})
	if err != nil {
		return 0, fmt.Errorf("unable to remove expired entries: %w", err)
	}
	removed += s.conn.Changes()

	if s.MaxEntries > 0 {
		err = sqlitex.Execute(s.conn,
			`DELETE FROM preload WHERE id IN (
				SELECT id FROM preload ORDER BY ready_at DESC, id DESC LIMIT -1 OFFSET ?
			)`,
			&sqlitex.ExecOptions{Args: []any{s.MaxEntries}})
		if err != nil {
			return removed, fmt.Errorf("unable to trim entries: %w", err)
		}
		removed += s.conn.Changes()
	}
	if removed > 0 {
		s.log.Debug("Preload store pruned", zap.Int("removed", removed))
	}
	return removed, nil
}

// Stats returns store content summary relative to now.
func (s *Store) Stats(now time.Time) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st Stats
	err := sqlitex.Execute(s.conn,
		`SELECT count(*), coalesce(sum(ready_at <= ?), 0), coalesce(min(ready_at), 0), coalesce(max(ready_at), 0) FROM preload`,
		&sqlitex.ExecOptions{
			Args: []any{now.Add(-s.MaxAge).UnixMilli()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				st.Entries = stmt.ColumnInt(0)
				st.Expired = stmt.ColumnInt(1)
				if st.Entries > 0 {
					st.Oldest = time.UnixMilli(stmt.ColumnInt64(2))
					st.Newest = time.UnixMilli(stmt.ColumnInt64(3))
				}
				return nil
			},
		})
	if err != nil {
		return Stats{}, fmt.Errorf("unable to collect store stats: %w", err)
	}
	return st, nil
}

var (
	_ feed.Classifier    = (*Store)(nil)
	_ feed.ReadyRecorder = (*Store)(nil)
)
