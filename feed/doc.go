// Package feed implements a full-viewport snap feed controller: one item per
// page, a gesture state machine that settles on exact page boundaries, a
// single active item eligible to play media, a preload window around it and
// bounded remount recovery for native media handles that fail to attach.
//
// Controller is single threaded. Scroll events, host commands and timer
// callbacks must be delivered from one event queue (see package loop for a
// real time queue and ManualClock for deterministic tests). Calls made from
// inside listener callbacks are queued and executed after the current handler
// returns, so every handler mutates controller state atomically.
package feed
