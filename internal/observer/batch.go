package observer

import (
	"sync"
	"time"
)

// MaxBufferSize bounds how many events a Batcher holds before it starts
// dropping new arrivals. It exists so a noisy container can never grow
// unbounded memory while a batch callback is in flight.
const MaxBufferSize = 100

// Batcher accumulates filtered events and flushes them as a single batch
// either after a quiet period (debounce) or when the buffer fills. Only one
// flush callback runs at a time; events that arrive while a flush is
// in-flight keep accumulating, up to MaxBufferSize, and are included in the
// next flush once the current one returns.
type Batcher struct {
	debounce time.Duration
	onFlush  func([]LogEvent)

	mu      sync.Mutex
	buf     []LogEvent
	dropped int
	timer   *time.Timer
	flushed chan struct{}
	inFlush bool
}

// NewBatcher returns a Batcher that calls onFlush after debounce has passed
// since the last Add, or immediately once the buffer reaches MaxBufferSize.
func NewBatcher(debounce time.Duration, onFlush func([]LogEvent)) *Batcher {
	return &Batcher{debounce: debounce, onFlush: onFlush}
}

// Add enqueues event. If the buffer is already at MaxBufferSize, the event
// is dropped and counted; Dropped reports how many.
func (b *Batcher) Add(event LogEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.buf) >= MaxBufferSize {
		b.dropped++
		return
	}
	b.buf = append(b.buf, event)

	if len(b.buf) >= MaxBufferSize {
		b.flushLocked()
		return
	}

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.debounce, b.flush)
}

// Dropped reports the number of events discarded due to backpressure.
func (b *Batcher) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

func (b *Batcher) flush() {
	b.mu.Lock()
	b.flushLocked()
	b.mu.Unlock()
}

// flushLocked must be called with b.mu held. It is a no-op if a flush
// callback is already running or the buffer is empty; the buffered events
// stay put and will be picked up by the callback's next invocation.
func (b *Batcher) flushLocked() {
	if b.inFlush || len(b.buf) == 0 {
		return
	}
	batch := b.buf
	b.buf = nil
	b.inFlush = true

	go func() {
		b.onFlush(batch)
		b.mu.Lock()
		b.inFlush = false
		pending := len(b.buf) > 0
		b.mu.Unlock()
		if pending {
			b.flush()
		}
	}()
}

// Stop cancels any pending debounce timer without flushing.
func (b *Batcher) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
}

