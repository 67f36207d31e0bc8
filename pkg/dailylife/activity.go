package dailylife

import (
	"sort"
	"sync"
	"time"
)

// ActivityMonitor tracks the most recent message timestamp per channel, so
// the scheduler can pick the top-N most active channels and the plan
// stage can tell whether a channel has been quiet long enough to post
// into. State is in-process per the teacher's mutex-guarded map idiom for
// per-key tracking (no broker round trip needed for a single scheduler
// goroutine).
type ActivityMonitor struct {
	mu   sync.Mutex
	last map[string]time.Time
}

// NewActivityMonitor builds an empty monitor.
func NewActivityMonitor() *ActivityMonitor {
	return &ActivityMonitor{last: make(map[string]time.Time)}
}

// RecordActivity marks channelID as having seen a message at 'at'.
func (a *ActivityMonitor) RecordActivity(channelID string, at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if existing, ok := a.last[channelID]; !ok || at.After(existing) {
		a.last[channelID] = at
	}
}

// LastActivity returns the last recorded activity time for a channel, and
// whether any activity has been recorded at all.
func (a *ActivityMonitor) LastActivity(channelID string) (time.Time, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.last[channelID]
	return t, ok
}

// TopActive returns up to n channel ids whose last activity falls within
// 'since' of now, most recent first.
func (a *ActivityMonitor) TopActive(now time.Time, since time.Duration, n int) []string {
	a.mu.Lock()
	type entry struct {
		channelID string
		at        time.Time
	}
	entries := make([]entry, 0, len(a.last))
	for id, at := range a.last {
		if now.Sub(at) <= since {
			entries = append(entries, entry{id, at})
		}
	}
	a.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].at.After(entries[j].at) })
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = entries[i].channelID
	}
	return out
}

// QuietFor reports whether channelID has had no recorded activity within
// 'cooldown' of now — either because it has never been seen, or its last
// message is older than the cooldown (§4.5's post-eligibility check).
func (a *ActivityMonitor) QuietFor(channelID string, now time.Time, cooldown time.Duration) bool {
	last, ok := a.LastActivity(channelID)
	if !ok {
		return true
	}
	return now.Sub(last) >= cooldown
}
