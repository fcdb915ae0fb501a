package store

import "github.com/oklog/ulid/v2"

// NewID returns a time-ordered id for bet records and outbox jobs.
// ulid.Make is monotonic within a millisecond and safe for concurrent use.
func NewID() string {
	return ulid.Make().String()
}
