package outbox

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestQueueAppliesWrites(t *testing.T) {
	q := New(Config{Workers: 2, Buffer: 16, RetryBase: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	var mu sync.Mutex
	seen := map[string]bool{}
	for _, key := range []string{"a", "b", "c"} {
		key := key
		q.Enqueue("balance", key, func(context.Context) error {
			mu.Lock()
			seen[key] = true
			mu.Unlock()
			return nil
		})
	}
	drainCtx, drainCancel := context.WithTimeout(context.Background(), time.Second)
	defer drainCancel()
	if err := q.Drain(drainCtx); err != nil {
		t.Fatalf("drain: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 3 {
		t.Fatalf("expected 3 writes, got %d", len(seen))
	}
}

func TestRetryStopsAtMaxAttempts(t *testing.T) {
	q := New(Config{Workers: 1, Buffer: 4, RetryMax: 2, RetryBase: 2 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	var calls atomic.Int32
	q.Enqueue("duel", "7", func(context.Context) error {
		calls.Add(1)
		return errors.New("db down")
	})
	drainCtx, drainCancel := context.WithTimeout(context.Background(), time.Second)
	defer drainCancel()
	if err := q.Drain(drainCtx); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	dead := q.DeadLetters()
	if len(dead) != 1 || dead[0].Kind != "duel" || dead[0].Key != "7" || dead[0].LastError != "db down" {
		t.Fatalf("unexpected dead letters %+v", dead)
	}
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	q := New(Config{Workers: 1, Buffer: 4, RetryMax: 3, RetryBase: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	var calls atomic.Int32
	q.Enqueue("round", "1", func(context.Context) error {
		if calls.Add(1) == 1 {
			return errors.New("transient")
		}
		return nil
	})
	drainCtx, drainCancel := context.WithTimeout(context.Background(), time.Second)
	defer drainCancel()
	if err := q.Drain(drainCtx); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
	if len(q.DeadLetters()) != 0 {
		t.Fatalf("expected no dead letters")
	}
}

func TestOverflowGoesToDeadLettersAndReplays(t *testing.T) {
	q := New(Config{Workers: 1, Buffer: 1, RetryBase: time.Millisecond})

	var calls atomic.Int32
	write := func(context.Context) error {
		calls.Add(1)
		return nil
	}
	q.Enqueue("balance", "1", write)
	q.Enqueue("balance", "2", write)
	if got := len(q.DeadLetters()); got != 1 {
		t.Fatalf("expected overflow dead letter, got %d", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)
	drainCtx, drainCancel := context.WithTimeout(context.Background(), time.Second)
	defer drainCancel()
	if err := q.Drain(drainCtx); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if n := q.ReplayDeadLetters(); n != 1 {
		t.Fatalf("replayed %d", n)
	}
	if err := q.Drain(drainCtx); err != nil {
		t.Fatalf("drain after replay: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected both writes applied, got %d", calls.Load())
	}
	if st := q.Stats(); st.DeadLetters != 0 || st.Pending != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestEnqueueAfterCloseDeadLetters(t *testing.T) {
	q := New(Config{Workers: 1, Buffer: 4})
	q.Start(context.Background())
	q.Close()

	q.Enqueue("balance", "9", func(context.Context) error { return nil })
	if len(q.DeadLetters()) != 1 {
		t.Fatalf("expected dead letter after close")
	}
	if q.ReplayDeadLetters() != 0 {
		t.Fatalf("replay must be refused after close")
	}
	if st := q.Stats(); st.Pending != 0 {
		t.Fatalf("pending=%d after close", st.Pending)
	}
}

func TestWorkersOutliveStartContext(t *testing.T) {
	q := New(Config{Workers: 2, Buffer: 16, RetryMax: 2, RetryBase: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx)

	var applied atomic.Int32
	var failedOnce atomic.Bool
	write := func(context.Context) error {
		applied.Add(1)
		return nil
	}
	q.Enqueue("balance", "1", write)
	cancel()
	q.Enqueue("balance", "2", write)
	q.Enqueue("duel", "3", func(ctx context.Context) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !failedOnce.Swap(true) {
			return errors.New("transient")
		}
		applied.Add(1)
		return nil
	})

	drainCtx, drainCancel := context.WithTimeout(context.Background(), time.Second)
	defer drainCancel()
	if err := q.Drain(drainCtx); err != nil {
		t.Fatalf("drain after cancel: %v", err)
	}
	q.Close()
	if got := applied.Load(); got != 3 {
		t.Fatalf("expected 3 applied writes, got %d", got)
	}
	if dead := q.DeadLetters(); len(dead) != 0 {
		t.Fatalf("unexpected dead letters %+v", dead)
	}
}

func TestCloseDeadLettersQueuedJobs(t *testing.T) {
	q := New(Config{Workers: 1, Buffer: 4})
	q.Enqueue("round", "1", func(context.Context) error { return nil })
	q.Enqueue("round", "2", func(context.Context) error { return nil })
	q.Close()

	dead := q.DeadLetters()
	if len(dead) != 2 || dead[0].LastError != "queue_closed" {
		t.Fatalf("unexpected dead letters %+v", dead)
	}
	drainCtx, drainCancel := context.WithTimeout(context.Background(), time.Second)
	defer drainCancel()
	if err := q.Drain(drainCtx); err != nil {
		t.Fatalf("drain after close: %v", err)
	}
}
