package outbox

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"chat-casino/internal/store"

	"github.com/rs/zerolog/log"
)

var (
	errQueueFull   = errors.New("queue_full")
	errQueueClosed = errors.New("queue_closed")
)

// Queue is a write-behind queue: callers enqueue durable writes without
// blocking and workers apply them with bounded retry. Writes that cannot be
// applied land in a dead-letter list that can be replayed.
type Queue struct {
	cfg Config

	dispatchCh chan job
	retryQ     *retryQueue
	done       chan struct{}
	pending    atomic.Int64

	mu      sync.Mutex
	started bool
	closed  bool
	dead    []DeadLetter
}

func New(cfg Config) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 4096
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 250 * time.Millisecond
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.DeadLetterMax <= 0 {
		cfg.DeadLetterMax = 10000
	}
	q := &Queue{
		cfg:        cfg,
		dispatchCh: make(chan job, cfg.Buffer),
		done:       make(chan struct{}),
	}
	q.retryQ = newRetryQueue(q.dispatch)
	return q
}

// Start launches the workers. They keep running after ctx is cancelled and
// stop only in Close, so writes accepted during shutdown still reach the
// store. ctx supplies values to each write.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.started || q.closed {
		q.mu.Unlock()
		return
	}
	q.started = true
	q.mu.Unlock()

	base := context.WithoutCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		go q.worker(base)
	}
}

// Close stops the workers. Jobs still queued are dead-lettered; call Drain
// first to flush them.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()
	close(q.done)

	for {
		select {
		case j := <-q.dispatchCh:
			q.deadLetter(j, errQueueClosed)
		default:
			return
		}
	}
}

// Enqueue schedules write and returns the job id. It never blocks.
func (q *Queue) Enqueue(kind, key string, write WriteFunc) string {
	j := job{
		ID:         store.NewID(),
		Kind:       kind,
		Key:        key,
		EnqueuedAt: time.Now(),
		write:      write,
	}
	q.submit(j)
	return j.ID
}

func (q *Queue) submit(j job) {
	q.pending.Add(1)
	q.dispatch(j)
}

// dispatch hands an already counted job to the workers. The send happens
// under mu so nothing lands in dispatchCh after Close has emptied it.
func (q *Queue) dispatch(j job) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.deadLetter(j, errQueueClosed)
		return
	}
	select {
	case q.dispatchCh <- j:
		q.mu.Unlock()
		metricOutboxQueuedTotal.Add(1)
		metricOutboxQueueLen.Set(int64(len(q.dispatchCh)))
	default:
		q.mu.Unlock()
		metricOutboxOverflowTotal.Add(1)
		q.deadLetter(j, errQueueFull)
	}
}

func (q *Queue) worker(ctx context.Context) {
	for {
		select {
		case <-q.done:
			return
		case j := <-q.dispatchCh:
			metricOutboxQueueLen.Set(int64(len(q.dispatchCh)))
			q.process(ctx, j)
		}
	}
}

func (q *Queue) process(ctx context.Context, j job) {
	writeCtx, cancel := context.WithTimeout(ctx, q.cfg.WriteTimeout)
	err := j.write(writeCtx)
	cancel()
	if err == nil {
		metricOutboxWrittenTotal.Add(1)
		q.pending.Add(-1)
		return
	}
	metricOutboxFailedTotal.Add(1)
	log.Warn().Err(err).Str("job_id", j.ID).Str("kind", j.Kind).Str("key", j.Key).Int("attempt", j.Attempt).Msg("outbox write failed")
	q.retryOrDrop(j, err)
}

func (q *Queue) retryOrDrop(j job, err error) bool {
	if j.Attempt >= q.cfg.RetryMax {
		q.deadLetter(j, err)
		return false
	}
	j.Attempt++
	metricOutboxRetryTotal.Add(1)
	delay := q.cfg.RetryBase * time.Duration(1<<(j.Attempt-1))
	q.retryQ.Enqueue(j, delay)
	return true
}

func (q *Queue) deadLetter(j job, err error) {
	metricOutboxDeadLetterTotal.Add(1)
	log.Error().Err(err).Str("job_id", j.ID).Str("kind", j.Kind).Str("key", j.Key).Int("attempts", j.Attempt).Msg("outbox write dead-lettered")
	q.mu.Lock()
	q.dead = append(q.dead, DeadLetter{
		ID:         j.ID,
		Kind:       j.Kind,
		Key:        j.Key,
		Attempts:   j.Attempt,
		LastError:  err.Error(),
		EnqueuedAt: j.EnqueuedAt,
		FailedAt:   time.Now(),
		job:        j,
	})
	if over := len(q.dead) - q.cfg.DeadLetterMax; over > 0 {
		q.dead = append([]DeadLetter(nil), q.dead[over:]...)
	}
	q.mu.Unlock()
	q.pending.Add(-1)
}

// DeadLetters returns a copy of the dead-letter list, oldest first.
func (q *Queue) DeadLetters() []DeadLetter {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]DeadLetter, len(q.dead))
	copy(out, q.dead)
	return out
}

// ReplayDeadLetters resubmits every dead letter with a fresh attempt budget.
func (q *Queue) ReplayDeadLetters() int {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0
	}
	dead := q.dead
	q.dead = nil
	q.mu.Unlock()

	for _, d := range dead {
		j := d.job
		j.Attempt = 0
		metricOutboxReplayedTotal.Add(1)
		q.submit(j)
	}
	return len(dead)
}

// Drain waits until every accepted write has either been applied or
// dead-lettered.
func (q *Queue) Drain(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if q.pending.Load() <= 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (q *Queue) Stats() Stats {
	q.mu.Lock()
	dead := len(q.dead)
	q.mu.Unlock()
	return Stats{
		Pending:     q.pending.Load(),
		QueueLen:    len(q.dispatchCh),
		DeadLetters: dead,
	}
}
