package game

import (
	"sync"
	"time"
)

// RoundTimer arms deferred callbacks keyed by round id. Each arm gets a new
// generation; a fire or cancel carrying a stale generation does nothing.
type RoundTimer struct {
	mu      sync.Mutex
	gen     uint64
	armed   map[int64]armedTimer
	stopped bool
}

type armedTimer struct {
	gen   uint64
	timer *time.Timer
}

func NewRoundTimer() *RoundTimer {
	return &RoundTimer{armed: map[int64]armedTimer{}}
}

// Arm schedules fire(roundID, gen) after d, replacing any timer already armed
// for roundID. It returns the generation, or 0 after Stop.
func (t *RoundTimer) Arm(roundID int64, d time.Duration, fire func(roundID int64, gen uint64)) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return 0
	}
	if prev, ok := t.armed[roundID]; ok {
		prev.timer.Stop()
	}
	t.gen++
	gen := t.gen
	timer := time.AfterFunc(d, func() {
		t.mu.Lock()
		cur, ok := t.armed[roundID]
		if !ok || cur.gen != gen {
			t.mu.Unlock()
			return
		}
		delete(t.armed, roundID)
		t.mu.Unlock()
		fire(roundID, gen)
	})
	t.armed[roundID] = armedTimer{gen: gen, timer: timer}
	return gen
}

// Cancel disarms the timer for roundID if gen is still current.
func (t *RoundTimer) Cancel(roundID int64, gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.armed[roundID]
	if !ok || cur.gen != gen {
		return false
	}
	cur.timer.Stop()
	delete(t.armed, roundID)
	return true
}

// Stop disarms everything and refuses later arms.
func (t *RoundTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	for id, a := range t.armed {
		a.timer.Stop()
		delete(t.armed, id)
	}
}

func (t *RoundTimer) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.armed)
}
