package dailylife

import (
	"sync"
	"time"
)

// immediateDebounceDelay is the debounce window for trigger_immediate
// (§4.5): repeated qualifying messages from the same key collapse into
// one enqueue within this window.
const immediateDebounceDelay = 60 * time.Second

// debounceBuffer tracks one pending flush timer for a key.
type debounceBuffer struct {
	timer *time.Timer
}

// debouncer buffers rapid triggers for the same key and flushes once per
// window, the same shape as the teacher's message debouncer generalized
// from "room+sender" keys to arbitrary trigger keys.
type debouncer struct {
	mu      sync.Mutex
	buffers map[string]*debounceBuffer
	onFlush func(key string)
}

func newDebouncer(onFlush func(key string)) *debouncer {
	return &debouncer{buffers: make(map[string]*debounceBuffer), onFlush: onFlush}
}

// Trigger schedules a flush for key after immediateDebounceDelay, resetting
// the timer if one is already pending. bypass skips debouncing entirely —
// used when the bot was directly mentioned, which always fires immediately.
func (d *debouncer) Trigger(key string, bypass bool) {
	if bypass {
		d.onFlush(key)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	buf, exists := d.buffers[key]
	if exists {
		buf.timer.Reset(immediateDebounceDelay)
		return
	}
	buf = &debounceBuffer{}
	buf.timer = time.AfterFunc(immediateDebounceDelay, func() {
		d.mu.Lock()
		delete(d.buffers, key)
		d.mu.Unlock()
		d.onFlush(key)
	})
	d.buffers[key] = buf
}

// Stop cancels every pending timer, for graceful shutdown.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, buf := range d.buffers {
		buf.timer.Stop()
	}
	d.buffers = make(map[string]*debounceBuffer)
}
