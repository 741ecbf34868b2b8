package pipeline

import (
	"sync"
	"time"

	"github.com/junekp/photoroll/internal/gallery"
)

// Debouncer collapses bursts of filter changes into a single downstream
// emission after a quiet period. Discrete preset selections bypass the timer
// via Apply, and a pending change can be flushed on demand when the filter UI
// closes. Emissions whose signature equals the last emitted one are
// suppressed.
type Debouncer struct {
	window time.Duration
	emit   func(gallery.Filter)

	mu      sync.Mutex
	timer   *time.Timer
	pending *gallery.Filter
	lastSig string
}

func NewDebouncer(window time.Duration, emit func(gallery.Filter)) *Debouncer {
	if window <= 0 {
		window = 500 * time.Millisecond
	}
	return &Debouncer{window: window, emit: emit}
}

// Update records a filter change and reschedules the quiet-period timer.
func (d *Debouncer) Update(filter gallery.Filter) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = &filter
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

// Apply emits immediately, discarding any pending debounced change. Presets
// are intentional selections where added latency has no benefit.
func (d *Debouncer) Apply(filter gallery.Filter) {
	d.mu.Lock()
	d.stopLocked()
	send := d.markLocked(filter)
	d.mu.Unlock()

	if send {
		d.emit(filter)
	}
}

// Pending returns the filter currently waiting out the quiet period, if any.
// Partial updates arriving within one window must build on it rather than on
// the last applied filter, or earlier fields in the burst would be lost.
func (d *Debouncer) Pending() (gallery.Filter, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return gallery.Filter{}, false
	}
	return *d.pending, true
}

// Flush emits any pending change now instead of waiting out the quiet
// period.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	pending := d.pending
	d.stopLocked()
	send := pending != nil && d.markLocked(*pending)
	d.mu.Unlock()

	if send {
		d.emit(*pending)
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	pending := d.pending
	d.pending = nil
	d.timer = nil
	send := pending != nil && d.markLocked(*pending)
	d.mu.Unlock()

	if send {
		d.emit(*pending)
	}
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}

// markLocked records the emission signature, reporting false when it matches
// the previous one and the reload would be redundant.
func (d *Debouncer) markLocked(filter gallery.Filter) bool {
	sig := filter.Signature()
	if sig == d.lastSig {
		return false
	}
	d.lastSig = sig
	return true
}
