package outbox

import (
	"context"
	"time"
)

// WriteFunc performs one durable write. It must be safe to run more than once.
type WriteFunc func(ctx context.Context) error

type Config struct {
	Workers      int
	Buffer       int
	RetryMax     int
	RetryBase    time.Duration
	WriteTimeout time.Duration
	// Upper bound on retained dead letters; oldest are discarded first.
	DeadLetterMax int
}

type job struct {
	ID         string
	Kind       string
	Key        string
	Attempt    int
	EnqueuedAt time.Time
	write      WriteFunc
}

// DeadLetter is a write that exhausted its retries or overflowed the queue.
type DeadLetter struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Key        string    `json:"key"`
	Attempts   int       `json:"attempts"`
	LastError  string    `json:"last_error"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	FailedAt   time.Time `json:"failed_at"`

	job job
}

type Stats struct {
	Pending     int64 `json:"pending"`
	QueueLen    int   `json:"queue_len"`
	DeadLetters int   `json:"dead_letters"`
}
