// Package alerts provides time-windowed deduplication for risk alerts.
//
// Cooldown state is process-lifetime only and deliberately not persisted: a
// restart may repeat an unchanged risk alert, which is a tolerable annoyance.
// Milestone dedup lives in the ledger instead, because repeating a milestone
// is a correctness defect.
package alerts

import (
	"sync"
	"time"
)

type cooldownKey struct {
	address string
	score   int
}

// Cooldown suppresses repeated alerts for the same (address, score) pair
// inside the configured window.
type Cooldown struct {
	mu        sync.Mutex
	window    time.Duration
	retention time.Duration
	lastSent  map[cooldownKey]time.Time
}

// NewCooldown builds a manager. retention bounds the map: entries idle longer
// than it are dropped by Sweep. retention below window is raised to window.
func NewCooldown(window, retention time.Duration) *Cooldown {
	if retention < window {
		retention = window
	}
	return &Cooldown{
		window:    window,
		retention: retention,
		lastSent:  make(map[cooldownKey]time.Time),
	}
}

// Allow reports whether an alert for (address, score) may be sent at now, and
// records the send time when it may. Check and record are one atomic step so
// concurrent callers cannot both pass inside the window.
func (c *Cooldown) Allow(address string, score int, now time.Time) bool {
	key := cooldownKey{address: address, score: score}

	c.mu.Lock()
	defer c.mu.Unlock()

	if last, ok := c.lastSent[key]; ok && now.Sub(last) < c.window {
		return false
	}
	c.lastSent[key] = now
	return true
}

// Sweep drops entries idle longer than the retention horizon and returns how
// many were removed. Run it periodically so the map stays bounded.
func (c *Cooldown) Sweep(now time.Time) int {
	cutoff := now.Add(-c.retention)

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, last := range c.lastSent {
		if last.Before(cutoff) {
			delete(c.lastSent, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked (address, score) pairs.
func (c *Cooldown) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lastSent)
}
