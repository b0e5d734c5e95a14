package target

import (
	"fmt"
	"testing"
)

func TestQueuePreservesFIFO(t *testing.T) {
	sink := &MemorySink{}
	q := NewQueue(sink)

	// Interleave modes; order must still hold.
	for i := 0; i < 20; i++ {
		rec := &Record{ID: fmt.Sprintf("rec-%02d", i), Message: fmt.Sprintf("%d", i)}
		if i%3 == 0 {
			q.Enqueue(rec)
		} else {
			q.EnqueueAsync(rec)
		}
	}
	q.Drain()

	records := sink.Records()
	if len(records) != 20 {
		t.Fatalf("delivered %d records, want 20", len(records))
	}
	for i, rec := range records {
		want := fmt.Sprintf("rec-%02d", i)
		if rec.ID != want {
			t.Errorf("position %d: ID = %q, want %q", i, rec.ID, want)
		}
	}

	if err := q.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestQueueSyncBlocksUntilDelivered(t *testing.T) {
	sink := &MemorySink{}
	q := NewQueue(sink)
	defer q.Close()

	q.Enqueue(&Record{ID: "sync-1"})

	// Enqueue returned, so the record is already with the sinks.
	if got := q.Delivered(); got != 1 {
		t.Errorf("Delivered() = %d immediately after sync enqueue, want 1", got)
	}
	if sink.Count() != 1 {
		t.Errorf("sink count = %d, want 1", sink.Count())
	}
}

func TestQueueDrainWaitsForAsync(t *testing.T) {
	sink := &MemorySink{}
	q := NewQueue(sink)
	defer q.Close()

	const n = 50
	for i := 0; i < n; i++ {
		q.EnqueueAsync(&Record{ID: fmt.Sprintf("a-%d", i)})
	}
	q.Drain()

	if got := q.Delivered(); got != n {
		t.Errorf("Delivered() = %d after Drain, want %d", got, n)
	}
}

func TestQueueCloseIdempotent(t *testing.T) {
	q := NewQueue(&MemorySink{})
	if err := q.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	// Enqueues after close are dropped, not deadlocked.
	q.Enqueue(&Record{ID: "late"})
	q.EnqueueAsync(&Record{ID: "later"})
	q.Drain()
}
