package outbox

import "time"

// retryQueue redelivers failed jobs after a backoff delay.
type retryQueue struct {
	deliver func(job)
}

func newRetryQueue(deliver func(job)) *retryQueue {
	return &retryQueue{deliver: deliver}
}

func (q *retryQueue) Enqueue(j job, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	time.AfterFunc(delay, func() { q.deliver(j) })
}
