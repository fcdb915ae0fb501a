package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestConcurrentJoinsMatchOnce(t *testing.T) {
	e, l, _, em, _ := newDuelHarness(t, 6, 3)
	balances := map[int64]int64{10: 100}
	for uid := int64(20); uid < 36; uid++ {
		balances[uid] = 100
	}
	fund(t, l, balances)
	before := l.Total()
	ctx := context.Background()

	d, err := e.Create(ctx, 10, 50)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []int64
	)
	start := make(chan struct{})
	for uid := int64(20); uid < 36; uid++ {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			<-start
			_, err := e.Join(ctx, uid, d.ID)
			switch {
			case err == nil:
				mu.Lock()
				winners = append(winners, uid)
				mu.Unlock()
			case !errors.Is(err, ErrNotJoinable):
				t.Errorf("join %d: %v", uid, err)
			}
		}(uid)
	}
	close(start)
	wg.Wait()
	e.Wait()

	if len(winners) != 1 {
		t.Fatalf("expected exactly one successful join, got %v", winners)
	}
	for uid := int64(20); uid < 36; uid++ {
		if uid != winners[0] && l.Balance(uid) != 100 {
			t.Fatalf("rejected joiner %d was charged: %d", uid, l.Balance(uid))
		}
	}
	if n := len(em.ofType(EventDuelSettled)); n != 1 {
		t.Fatalf("expected one settlement, got %d", n)
	}
	if l.Total() != before {
		t.Fatalf("money not conserved: before=%d after=%d", before, l.Total())
	}
}

func TestCancelRacingJoin(t *testing.T) {
	for i := 0; i < 20; i++ {
		e, l, _, em, _ := newDuelHarness(t, 6, 3)
		fund(t, l, map[int64]int64{10: 100, 20: 100})
		ctx := context.Background()
		d, err := e.Create(ctx, 10, 40)
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		var joinErr, cancelErr error
		var wg sync.WaitGroup
		start := make(chan struct{})
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			_, joinErr = e.Join(ctx, 20, d.ID)
		}()
		go func() {
			defer wg.Done()
			<-start
			_, cancelErr = e.Cancel(ctx, 10, d.ID)
		}()
		close(start)
		wg.Wait()
		e.Wait()

		if (joinErr == nil) == (cancelErr == nil) {
			t.Fatalf("exactly one of join/cancel must win: join=%v cancel=%v", joinErr, cancelErr)
		}
		got, _ := e.Get(d.ID)
		terminal := len(em.ofType(EventDuelSettled)) + len(em.ofType(EventDuelCancelled))
		if !got.State.Terminal() || terminal != 1 {
			t.Fatalf("state=%s terminal events=%d", got.State, terminal)
		}
		if l.Total() != 200 {
			t.Fatalf("money not conserved: %d", l.Total())
		}
	}
}

func TestBetsRacingSettlement(t *testing.T) {
	for i := 0; i < 10; i++ {
		b, l, rec, _, _ := newBankerHarness(t, testRules())
		balances := map[int64]int64{}
		for uid := int64(100); uid < 130; uid++ {
			balances[uid] = 1000
		}
		fund(t, l, balances)
		before := l.Total()
		ctx := context.Background()

		if _, err := b.PlaceBet(ctx, 100, 10); err != nil {
			t.Fatalf("first bet: %v", err)
		}
		second, err := b.PlaceBet(ctx, 101, 10)
		if err != nil || !second.Locked {
			t.Fatalf("second bet locked=%v err=%v", second.Locked, err)
		}
		roundID := second.Round.ID
		b.mu.Lock()
		gen := b.active.timerGen
		b.mu.Unlock()

		var wg sync.WaitGroup
		start := make(chan struct{})
		run := func(f func()) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				f()
			}()
		}
		for uid := int64(102); uid < 130; uid++ {
			run(func() {
				if _, err := b.PlaceBet(ctx, uid, 10); err != nil {
					t.Errorf("bet %d: %v", uid, err)
				}
				if uid%3 == 0 {
					if _, err := b.CancelBet(ctx, uid); err != nil && !errors.Is(err, ErrNoActiveBets) {
						t.Errorf("cancel %d: %v", uid, err)
					}
				}
			})
		}
		run(func() {
			if _, err := b.CancelBet(ctx, 100); err != nil && !errors.Is(err, ErrNoActiveBets) {
				t.Errorf("cancel 100: %v", err)
			}
		})
		run(func() {
			if _, err := b.ForceSettle(ctx); err != nil && !errors.Is(err, ErrNoActiveRound) {
				t.Errorf("force settle: %v", err)
			}
		})
		run(func() { b.onTimer(roundID, gen) })
		close(start)
		wg.Wait()

		terminal := 0
		rec.mu.Lock()
		for _, r := range rec.rounds {
			if r.ID == roundID && r.State.Terminal() {
				terminal++
			}
		}
		rec.mu.Unlock()
		if terminal != 1 {
			t.Fatalf("round %d reached a terminal state %d times", roundID, terminal)
		}

		held := int64(0)
		if cur, ok := b.Current(); ok && !cur.State.Terminal() {
			held = cur.TotalBank
		}
		if got := l.Total() + held; got != before {
			t.Fatalf("money not conserved: before=%d ledger=%d held=%d", before, l.Total(), held)
		}
	}
}

func TestRoundTimerFiresAgainstConcurrentCancel(t *testing.T) {
	rt := NewRoundTimer()
	defer rt.Stop()
	for i := 0; i < 50; i++ {
		var mu sync.Mutex
		fired := 0
		gen := rt.Arm(int64(i), time.Millisecond, func(int64, uint64) {
			mu.Lock()
			fired++
			mu.Unlock()
		})
		cancelled := rt.Cancel(int64(i), gen)
		time.Sleep(3 * time.Millisecond)
		mu.Lock()
		n := fired
		mu.Unlock()
		if (cancelled && n != 0) || n > 1 {
			t.Fatalf("arm %d: cancelled=%v fired=%d", i, cancelled, n)
		}
	}
}
