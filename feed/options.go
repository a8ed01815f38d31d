package feed

import (
	"time"

	"go.uber.org/zap"
)

// Scroller performs programmatic scrolls of the native list.
type Scroller interface {
	ScrollTo(offset float64, animated bool)
}

// ScrollerFunc adapts function to Scroller.
type ScrollerFunc func(offset float64, animated bool)

func (f ScrollerFunc) ScrollTo(offset float64, animated bool) {
	f(offset, animated)
}

// Listener receives controller output. Any callback may be nil.
type Listener struct {
	OnIndexChange    func(index int)
	OnActiveChange   func(oldIndex, newIndex int)
	OnPreloadRequest func(id string)
	OnRemountRequest func(id string, version int)
	OnUnrecoverable  func(id string)
}

// Option configures Controller.
type Option func(*settings)

type settings struct {
	thresholds      Thresholds
	preload         PreloadPolicy
	remount         RemountPolicy
	suppressTimeout time.Duration
	idleSnapDelay   time.Duration
	epsilon         float64
	muted           bool

	clock      Clock
	log        *zap.Logger
	scroller   Scroller
	listener   Listener
	classifier Classifier
}

func defaultSettings() settings {
	return settings{
		thresholds:      DefaultThresholds(),
		preload:         DefaultPreloadPolicy(),
		remount:         DefaultRemountPolicy(),
		suppressTimeout: 180 * time.Millisecond,
		idleSnapDelay:   120 * time.Millisecond,
		epsilon:         1,
		muted:           true,
		log:             zap.NewNop(),
	}
}

func WithThresholds(th Thresholds) Option {
	return func(s *settings) { s.thresholds = th }
}

func WithPreloadPolicy(p PreloadPolicy) Option {
	return func(s *settings) { s.preload = p }
}

// WithPreloadWindow changes only window part of preload policy.
func WithPreloadWindow(behind, ahead int) Option {
	return func(s *settings) { s.preload.Window = PreloadWindow{Behind: behind, Ahead: ahead} }
}

func WithRemountPolicy(p RemountPolicy) Option {
	return func(s *settings) { s.remount = p }
}

// WithSuppressTimeout sets how long scroll events are attributed to
// programmatic scroll when it is not acknowledged.
func WithSuppressTimeout(d time.Duration) Option {
	return func(s *settings) { s.suppressTimeout = d }
}

// WithIdleSnapDelay sets how long offset must stay still outside of gestures
// before it is snapped, 0 disables idle snapping.
func WithIdleSnapDelay(d time.Duration) Option {
	return func(s *settings) { s.idleSnapDelay = d }
}

// WithSnapEpsilon sets distance under which viewport is considered aligned.
func WithSnapEpsilon(px float64) Option {
	return func(s *settings) { s.epsilon = px }
}

// WithMuted sets initial mute state, feed starts muted by default.
func WithMuted(muted bool) Option {
	return func(s *settings) { s.muted = muted }
}

func WithClock(c Clock) Option {
	return func(s *settings) { s.clock = c }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *settings) {
		if log != nil {
			s.log = log
		}
	}
}

func WithScroller(sc Scroller) Option {
	return func(s *settings) { s.scroller = sc }
}

func WithListener(l Listener) Option {
	return func(s *settings) { s.listener = l }
}

// WithClassifier supplies preload classes by item identifier. When it also
// implements ReadyRecorder it is told about completed preloads.
func WithClassifier(c Classifier) Option {
	return func(s *settings) { s.classifier = c }
}
