package config

import (
	"time"

	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"snapfeed/feed"
)

type (
	PreloadConfig struct {
		Behind          int `yaml:"behind" validate:"gte=0"`
		Ahead           int `yaml:"ahead" validate:"gte=0"`
		MaxConcurrent   int `yaml:"max_concurrent" validate:"gte=0"`
		CacheCap        int `yaml:"cache_cap" validate:"gte=0"`
		RetentionMargin int `yaml:"retention_margin" validate:"gte=0"`
	}

	RemountConfig struct {
		MaxAttempts int           `yaml:"max_attempts" validate:"gte=0,lte=16"`
		BaseDelay   time.Duration `yaml:"base_delay" validate:"gt=0"`
	}

	FeedConfig struct {
		SmallMoveRatio    float64       `yaml:"small_move_ratio" validate:"gt=0,lt=1"`
		VelocityThreshold float64       `yaml:"velocity_threshold" validate:"gte=0"`
		SnapEpsilon       float64       `yaml:"snap_epsilon" validate:"gte=0"`
		SuppressTimeout   time.Duration `yaml:"suppress_timeout" validate:"gt=0"`
		IdleSnapDelay     time.Duration `yaml:"idle_snap_delay" validate:"gte=0"`
		Muted             bool          `yaml:"muted"`
		Preload           PreloadConfig `yaml:"preload"`
		Remount           RemountConfig `yaml:"remount"`
	}
)

// Options converts configuration into controller options. Logger, clock and
// callbacks are not part of configuration and have to be added by caller.
func (fc *FeedConfig) Options() []feed.Option {
	return []feed.Option{
		feed.WithThresholds(feed.Thresholds{
			SmallMoveRatio: fc.SmallMoveRatio,
			Velocity:       fc.VelocityThreshold,
		}),
		feed.WithSnapEpsilon(fc.SnapEpsilon),
		feed.WithSuppressTimeout(fc.SuppressTimeout),
		feed.WithIdleSnapDelay(fc.IdleSnapDelay),
		feed.WithMuted(fc.Muted),
		feed.WithPreloadPolicy(feed.PreloadPolicy{
			Window:          feed.PreloadWindow{Behind: fc.Preload.Behind, Ahead: fc.Preload.Ahead},
			MaxConcurrent:   fc.Preload.MaxConcurrent,
			CacheCap:        fc.Preload.CacheCap,
			RetentionMargin: fc.Preload.RetentionMargin,
		}),
		feed.WithRemountPolicy(feed.RemountPolicy{
			MaxAttempts: fc.Remount.MaxAttempts,
			BaseDelay:   fc.Remount.BaseDelay,
		}),
	}
}

// Fields returns configuration as log fields.
func (fc *FeedConfig) Fields() []zap.Field {
	return []zap.Field{
		zap.Float64("small_move_ratio", fc.SmallMoveRatio),
		zap.Float64("velocity_threshold", fc.VelocityThreshold),
		zap.Duration("suppress_timeout", fc.SuppressTimeout),
		zap.Duration("idle_snap_delay", fc.IdleSnapDelay),
		zap.Ints("window", []int{-fc.Preload.Behind, fc.Preload.Ahead}),
		zap.Int("max_attempts", fc.Remount.MaxAttempts),
		zap.Duration("base_delay", fc.Remount.BaseDelay),
	}
}

// feedChecks validates relations between feed values.
func feedChecks(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	fc := cfg.Feed
	if fc.Preload.CacheCap > 0 && fc.Preload.CacheCap <= fc.Preload.Behind+fc.Preload.Ahead {
		// cache must at least hold the window
		sl.ReportError(fc.Preload.CacheCap, "CacheCap", "CacheCap", "gtwindow", "")
	}
}
