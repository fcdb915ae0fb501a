package game

import (
	"context"
	"sync"
	"time"

	"chat-casino/internal/ledger"
)

const houseID int64 = 1

type memRecorder struct {
	mu     sync.Mutex
	duels  []Duel
	rounds []Round
	bets   []BetRecord
}

func (r *memRecorder) SaveDuel(d Duel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.duels = append(r.duels, d)
}

func (r *memRecorder) SaveRound(rd Round) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rounds = append(r.rounds, rd)
}

func (r *memRecorder) AppendBet(b BetRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bets = append(r.bets, b)
}

func (r *memRecorder) betSum(roundID, userID int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, b := range r.bets {
		if b.RoundID == roundID && b.UserID == userID {
			sum += b.Amount
		}
	}
	return sum
}

type memEmitter struct {
	mu     sync.Mutex
	events []Event
}

func (e *memEmitter) Emit(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func (e *memEmitter) ofType(t string) []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := []Event{}
	for _, ev := range e.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// scriptedRoller returns the queued values in order.
type scriptedRoller struct {
	mu     sync.Mutex
	values []int
}

func (r *scriptedRoller) Roll(context.Context, int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.values[0]
	r.values = r.values[1:]
	return v, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testRules() Rules {
	r := DefaultRules(houseID)
	r.DuelRollDelay = 0
	return r
}

func fund(t interface{ Fatalf(string, ...any) }, l *ledger.Ledger, balances map[int64]int64) {
	for uid, amount := range balances {
		if _, err := l.Adjust(uid, amount); err != nil {
			t.Fatalf("fund %d: %v", uid, err)
		}
	}
}
