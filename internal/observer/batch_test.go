package observer

import (
	"sync"
	"testing"
	"time"
)

func TestBatcherFlushesAfterDebounce(t *testing.T) {
	var mu sync.Mutex
	var got []LogEvent
	done := make(chan struct{})

	b := NewBatcher(10*time.Millisecond, func(batch []LogEvent) {
		mu.Lock()
		got = append(got, batch...)
		mu.Unlock()
		close(done)
	})

	b.Add(LogEvent{Line: "one"})
	b.Add(LogEvent{Line: "two"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for flush")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("expected 2 events in batch, got %d", len(got))
	}
}

func TestBatcherFlushesImmediatelyAtCapacity(t *testing.T) {
	flushes := make(chan []LogEvent, 4)
	b := NewBatcher(time.Hour, func(batch []LogEvent) {
		flushes <- batch
	})

	for i := 0; i < MaxBufferSize; i++ {
		b.Add(LogEvent{Line: "x"})
	}

	select {
	case batch := <-flushes:
		if len(batch) != MaxBufferSize {
			t.Fatalf("expected full batch of %d, got %d", MaxBufferSize, len(batch))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for capacity flush")
	}
}

func TestBatcherDropsBeyondCapacity(t *testing.T) {
	block := make(chan struct{})
	flushed := make(chan struct{}, 1)
	b := NewBatcher(time.Hour, func(batch []LogEvent) {
		<-block
		flushed <- struct{}{}
	})

	for i := 0; i < MaxBufferSize; i++ {
		b.Add(LogEvent{Line: "x"})
	}
	// The flush callback above is now running (or about to run) with the
	// full batch drained from the buffer. Additional adds land in a fresh
	// buffer and should not be dropped yet.
	time.Sleep(20 * time.Millisecond)
	for i := 0; i < MaxBufferSize+5; i++ {
		b.Add(LogEvent{Line: "y"})
	}

	if got := b.Dropped(); got != 5 {
		t.Fatalf("expected 5 dropped events, got %d", got)
	}

	close(block)
	<-flushed
}
