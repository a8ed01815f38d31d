package trace

// Operation performed by a trace event.
// ENUM(drag_begin, scroll, drag_end, momentum_begin, momentum_end, settled, land, swipe, advance, goto, next, prev, scrub, refresh, set_items, resize, mute, attach, detach, attach_fail, attach_ok, preload_done, retry, expect)
type Op int
