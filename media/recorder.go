package media

import "sync"

// Recorder is a Handle which remembers calls made to it. It is used by trace
// replays and tests in place of real media.
type Recorder struct {
	ID string
	// Observe, if set, is called for every call in order calls are made.
	Observe func(id, call string)
	// Errors to return from corresponding calls.
	ActivateErr   error
	DeactivateErr error

	mu     sync.Mutex
	calls  []string
	active bool
	muted  bool
}

func NewRecorder(id string, observe func(id, call string)) *Recorder {
	return &Recorder{ID: id, Observe: observe, muted: true}
}

func (r *Recorder) Activate() error {
	r.record("activate")
	if r.ActivateErr != nil {
		return r.ActivateErr
	}
	r.mu.Lock()
	r.active = true
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Deactivate() error {
	r.record("deactivate")
	if r.DeactivateErr != nil {
		return r.DeactivateErr
	}
	r.mu.Lock()
	r.active, r.muted = false, true
	r.mu.Unlock()
	return nil
}

func (r *Recorder) SetMuted(muted bool) error {
	if muted {
		r.record("mute")
	} else {
		r.record("unmute")
	}
	r.mu.Lock()
	r.muted = muted
	r.mu.Unlock()
	return nil
}

// Calls returns copy of recorded calls.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Playing reports whether item is active and audible.
func (r *Recorder) Playing() (active, muted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active, r.muted
}

func (r *Recorder) record(call string) {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
	if r.Observe != nil {
		r.Observe(r.ID, call)
	}
}
