package feed

import (
	"time"

	"go.uber.org/zap"

	"snapfeed/common"
)

// RemountPolicy configures recovery of media handles which failed to attach.
type RemountPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func DefaultRemountPolicy() RemountPolicy {
	return RemountPolicy{MaxAttempts: 3, BaseDelay: time.Second}
}

// Delay returns minimal time between failure and retry number attempts+1:
// BaseDelay * 2^attempts.
func (p RemountPolicy) Delay(attempts int) time.Duration {
	return p.BaseDelay * time.Duration(1<<uint(max(attempts, 0)))
}

// RemountRecord is the per item bookkeeping of attach failures. The record,
// not the item, decides whether more attempts are permitted.
type RemountRecord struct {
	ItemID      string
	Attempts    int
	LastAttempt time.Time
}

type remountRecord struct {
	RemountRecord
	timer    Timer
	terminal bool
}

// Remounter tracks attach failures per item and schedules remounts with
// exponential backoff. After MaxAttempts retries the item is declared
// unrecoverable and nothing is attempted automatically any more.
//
// Remounter is instance scoped and single threaded, post is used to deliver
// timer callbacks onto owner's event queue.
type Remounter struct {
	policy RemountPolicy
	clock  Clock
	log    *zap.Logger
	post   func(func())

	onRemount       func(id string, version int)
	onUnrecoverable func(id string)

	records  map[string]*remountRecord
	versions map[string]int
	closed   bool
}

// NewRemounter creates Remounter. Callbacks may be nil.
func NewRemounter(policy RemountPolicy, clock Clock, log *zap.Logger, onRemount func(string, int), onUnrecoverable func(string)) *Remounter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Remounter{
		policy:          policy,
		clock:           clock,
		log:             log,
		post:            func(f func()) { f() },
		onRemount:       onRemount,
		onUnrecoverable: onUnrecoverable,
		records:         make(map[string]*remountRecord),
		versions:        make(map[string]int),
	}
}

// ReportAttachFailure records failure and arms retry timer. Failures reported
// while retry is pending are folded into it, failure after last permitted
// retry makes item unrecoverable.
func (r *Remounter) ReportAttachFailure(id string) {
	if r.closed {
		return
	}
	rec, ok := r.records[id]
	if !ok {
		rec = &remountRecord{RemountRecord: RemountRecord{ItemID: id}}
		r.records[id] = rec
	}
	if rec.terminal || rec.timer != nil {
		return
	}
	rec.LastAttempt = r.clock.Now()
	if rec.Attempts >= r.policy.MaxAttempts {
		rec.terminal = true
		r.log.Warn("Media handle is unrecoverable", zap.String("id", id), zap.Int("attempts", rec.Attempts))
		if r.onUnrecoverable != nil {
			r.onUnrecoverable(id)
		}
		return
	}
	r.arm(rec, r.policy.Delay(rec.Attempts))
	r.log.Debug("Remount scheduled", zap.String("id", id), zap.Int("attempt", rec.Attempts+1), zap.Duration("delay", r.policy.Delay(rec.Attempts)))
}

// ShouldRetry reports whether retry for item is permitted now.
func (r *Remounter) ShouldRetry(id string) bool {
	rec, ok := r.records[id]
	if !ok || rec.terminal || rec.Attempts >= r.policy.MaxAttempts {
		return false
	}
	return !r.clock.Now().Before(rec.LastAttempt.Add(r.policy.Delay(rec.Attempts)))
}

// ReportSuccess destroys item record.
func (r *Remounter) ReportSuccess(id string) {
	if rec, ok := r.records[id]; ok {
		r.stop(rec)
		delete(r.records, id)
		r.log.Debug("Media handle recovered", zap.String("id", id), zap.Int("attempts", rec.Attempts))
	}
}

// RetryManually restarts recovery of item on user request, normally after it
// was declared unrecoverable.
func (r *Remounter) RetryManually(id string) {
	if rec, ok := r.records[id]; ok {
		r.stop(rec)
		delete(r.records, id)
	}
	r.remount(id)
}

// Forget drops everything known about item, including remount version.
func (r *Remounter) Forget(id string) {
	if rec, ok := r.records[id]; ok {
		r.stop(rec)
		delete(r.records, id)
	}
	delete(r.versions, id)
}

// Reset drops all records, versions are kept so presentation keys stay
// monotonic.
func (r *Remounter) Reset() {
	for id, rec := range r.records {
		r.stop(rec)
		delete(r.records, id)
	}
}

// Status reports recovery status of item.
func (r *Remounter) Status(id string) common.ItemStatus {
	rec, ok := r.records[id]
	switch {
	case !ok:
		return common.ItemStatusOk
	case rec.terminal:
		return common.ItemStatusUnrecoverable
	default:
		return common.ItemStatusRetrying
	}
}

// Record returns copy of item record.
func (r *Remounter) Record(id string) (RemountRecord, bool) {
	if rec, ok := r.records[id]; ok {
		return rec.RemountRecord, true
	}
	return RemountRecord{}, false
}

// Version returns current remount version of item.
func (r *Remounter) Version(id string) int {
	return r.versions[id]
}

func (r *Remounter) arm(rec *remountRecord, delay time.Duration) {
	if r.closed {
		return
	}
	var t Timer
	t = r.clock.AfterFunc(delay, func() {
		r.post(func() { r.fire(rec, t) })
	})
	rec.timer = t
}

func (r *Remounter) fire(rec *remountRecord, t Timer) {
	if r.records[rec.ItemID] != rec || rec.timer != t {
		// record destroyed or timer replaced while callback was queued
		return
	}
	rec.timer = nil
	if !r.ShouldRetry(rec.ItemID) {
		if wait := rec.LastAttempt.Add(r.policy.Delay(rec.Attempts)).Sub(r.clock.Now()); wait > 0 && !rec.terminal {
			r.arm(rec, wait)
		}
		return
	}
	rec.Attempts++
	r.remount(rec.ItemID)
}

func (r *Remounter) remount(id string) {
	if r.closed {
		return
	}
	r.versions[id]++
	v := r.versions[id]
	r.log.Debug("Remount requested", zap.String("id", id), zap.Int("version", v))
	if r.onRemount != nil {
		r.onRemount(id, v)
	}
}

func (r *Remounter) stop(rec *remountRecord) {
	if rec.timer != nil {
		rec.timer.Stop()
		rec.timer = nil
	}
}

func (r *Remounter) close() {
	r.closed = true
	r.Reset()
	r.onRemount, r.onUnrecoverable = nil, nil
}
