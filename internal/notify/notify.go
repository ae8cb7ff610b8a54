// Package notify implements the transient per-user notice slot used by
// the dashboards.  Each user sees at most one notice at a time: showing
// a new one replaces the current one immediately (no queueing) and every
// notice dismisses itself after a fixed interval.  Replacement cancels
// the superseded notice's timer so a stale dismissal can never clear a
// newer message, and closing the center stops every outstanding timer so
// nothing fires after shutdown.
package notify

import (
    "sync"
    "time"
)

// Kind classifies a notice for presentation.
type Kind string

const (
    KindSuccess Kind = "success"
    KindError   Kind = "error"
    KindInfo    Kind = "info"
    KindWarning Kind = "warning"
)

// DefaultTTL matches the auto-dismiss interval of the dashboards.
const DefaultTTL = 3500 * time.Millisecond

// Notice is one transient message.
type Notice struct {
    Kind Kind      `json:"kind"`
    Text string    `json:"text"`
    At   time.Time `json:"at"`
}

type entry struct {
    notice Notice
    timer  *time.Timer
    gen    uint64 // guards against a stale timer clearing a newer notice
}

// Center holds the current notice per user.
type Center struct {
    mu      sync.Mutex
    ttl     time.Duration
    entries map[uint64]*entry
    closed  bool
}

// NewCenter returns a Center whose notices dismiss after ttl.  A
// non-positive ttl falls back to DefaultTTL.
func NewCenter(ttl time.Duration) *Center {
    if ttl <= 0 {
        ttl = DefaultTTL
    }
    return &Center{ttl: ttl, entries: make(map[uint64]*entry)}
}

// Show replaces the user's current notice, restarting the dismiss
// timer.  Calls after Close are ignored.
func (c *Center) Show(userID uint64, kind Kind, text string) {
    c.mu.Lock()
    defer c.mu.Unlock()
    if c.closed {
        return
    }
    var gen uint64
    if prev, ok := c.entries[userID]; ok {
        prev.timer.Stop()
        gen = prev.gen + 1
    }
    e := &entry{
        notice: Notice{Kind: kind, Text: text, At: time.Now().UTC()},
        gen:    gen,
    }
    e.timer = time.AfterFunc(c.ttl, func() { c.expire(userID, gen) })
    c.entries[userID] = e
}

// expire clears the user's notice if it is still the generation the
// timer was armed for.
func (c *Center) expire(userID, gen uint64) {
    c.mu.Lock()
    defer c.mu.Unlock()
    if e, ok := c.entries[userID]; ok && e.gen == gen {
        delete(c.entries, userID)
    }
}

// Current returns the user's visible notice, if any.
func (c *Center) Current(userID uint64) (Notice, bool) {
    c.mu.Lock()
    defer c.mu.Unlock()
    e, ok := c.entries[userID]
    if !ok {
        return Notice{}, false
    }
    return e.notice, true
}

// Dismiss clears the user's notice ahead of its timer.
func (c *Center) Dismiss(userID uint64) {
    c.mu.Lock()
    defer c.mu.Unlock()
    if e, ok := c.entries[userID]; ok {
        e.timer.Stop()
        delete(c.entries, userID)
    }
}

// Close stops all timers and drops every notice.  Show becomes a no-op
// afterwards.
func (c *Center) Close() {
    c.mu.Lock()
    defer c.mu.Unlock()
    c.closed = true
    for id, e := range c.entries {
        e.timer.Stop()
        delete(c.entries, id)
    }
}
