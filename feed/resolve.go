package feed

import "math"

// Thresholds decide when a gesture is too small to change page.
type Thresholds struct {
	// SmallMoveRatio is a fraction of page length below which a drag is
	// considered noise.
	SmallMoveRatio float64
	// Velocity below which release is not a flick. Positive velocity means
	// movement towards larger offsets.
	Velocity float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{SmallMoveRatio: 0.25, Velocity: 0.5}
}

// ResolveContext describes gesture which produced the offset being resolved.
type ResolveContext struct {
	// DragDelta is offset change since gesture start, nil when offset does not
	// come from a user gesture.
	DragDelta    *float64
	Velocity     float64
	CurrentIndex int
}

// ResolveIndex maps scroll offset to a page index.
//
// Without a gesture offset is rounded to the nearest page. Gestures shorter
// than SmallMoveRatio of a page and slower than Velocity threshold are no-op
// and return current index. Any other gesture is biased in its direction:
// forward motion takes the next page boundary (ceil), backward the previous
// one (floor), so partial swipe always moves exactly to the adjacent page.
// Offsets outside of content are clamped, empty feed resolves to 0.
func ResolveIndex(offset, pageLength float64, itemCount int, ctx ResolveContext, th Thresholds) int {
	if itemCount <= 0 || pageLength <= 0 {
		return 0
	}
	offset = clampOffset(offset, pageLength, itemCount)
	pos := offset / pageLength
	if r := math.Round(pos); math.Abs(pos-r) < 1e-9 {
		// exactly on the boundary, bias must not push to the next page
		pos = r
	}
	if ctx.DragDelta == nil {
		return clampIndex(int(math.Round(pos)), itemCount)
	}

	delta := *ctx.DragDelta
	small := math.Abs(delta) < th.SmallMoveRatio*pageLength
	if small && math.Abs(ctx.Velocity) < th.Velocity {
		return clampIndex(ctx.CurrentIndex, itemCount)
	}

	dir := delta
	if small {
		// flick, distance does not matter
		dir = ctx.Velocity
	}
	var idx int
	switch {
	case dir > 0:
		idx = int(math.Ceil(pos))
	case dir < 0:
		idx = int(math.Floor(pos))
	default:
		idx = int(math.Round(pos))
	}
	return clampIndex(idx, itemCount)
}

// NearestIndex resolves offset without gesture context.
func NearestIndex(offset, pageLength float64, itemCount int) int {
	return ResolveIndex(offset, pageLength, itemCount, ResolveContext{}, Thresholds{})
}

// IndexForRatio maps position on a scrub track (0 - top, 1 - bottom) to
// index.
func IndexForRatio(ratio float64, itemCount int) int {
	if itemCount <= 0 || math.IsNaN(ratio) {
		return 0
	}
	ratio = min(max(ratio, 0), 1)
	return clampIndex(int(math.Round(ratio*float64(itemCount-1))), itemCount)
}

func clampIndex(index, itemCount int) int {
	if itemCount <= 0 {
		return 0
	}
	return min(max(index, 0), itemCount-1)
}

func clampOffset(offset, pageLength float64, itemCount int) float64 {
	if math.IsNaN(offset) {
		return 0
	}
	return min(max(offset, 0), PageOffset(itemCount-1, pageLength))
}
