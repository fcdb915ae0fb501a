package game

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type round struct {
	id          int64
	entryAmount int64
	bank        int64
	order       []int64
	shares      map[int64]int
	contributed map[int64]int64
	lastBetAt   map[int64]time.Time
	tickets     []int64
	drawAt      *time.Time
	timerGen    uint64
	winnerID    *int64
	state       RoundState
	version     int64
	createdAt   time.Time
	finishedAt  *time.Time
}

func newRound(id int64, now time.Time) *round {
	return &round{
		id:          id,
		shares:      map[int64]int{},
		contributed: map[int64]int64{},
		lastBetAt:   map[int64]time.Time{},
		state:       RoundForming,
		createdAt:   now,
	}
}

func (r *round) participants() int { return len(r.shares) }

func (r *round) snapshot() Round {
	out := Round{
		ID:           r.id,
		EntryAmount:  r.entryAmount,
		TotalBank:    r.bank,
		Participants: make([]Participant, 0, len(r.order)),
		Tickets:      len(r.tickets),
		State:        r.state,
		Version:      r.version,
		CreatedAt:    r.createdAt,
	}
	if r.drawAt != nil {
		at := *r.drawAt
		out.DrawAt = &at
	}
	if r.winnerID != nil {
		w := *r.winnerID
		out.WinnerID = &w
	}
	if r.finishedAt != nil {
		at := *r.finishedAt
		out.FinishedAt = &at
	}
	for _, uid := range r.order {
		shares := r.shares[uid]
		if shares == 0 {
			continue
		}
		p := Participant{
			UserID:      uid,
			Shares:      shares,
			Contributed: r.contributed[uid],
			LastBetAt:   r.lastBetAt[uid],
		}
		if len(r.tickets) > 0 {
			p.ChancePct = float64(shares) * 100 / float64(len(r.tickets))
		}
		out.Participants = append(out.Participants, p)
	}
	return out
}

// Banker runs the pooled share round. One round is active at a time and all
// of its transitions are serialized on mu.
type Banker struct {
	rules  Rules
	wallet Wallet
	rec    Recorder
	emit   Emitter
	timer  *RoundTimer
	now    func() time.Time
	pick   func(n int) int

	mu     sync.Mutex
	nextID int64
	active *round
}

func NewBanker(rules Rules, wallet Wallet, rec Recorder, emit Emitter, timer *RoundTimer) *Banker {
	if rec == nil {
		rec = nopRecorder{}
	}
	if emit == nil {
		emit = nopEmitter{}
	}
	if timer == nil {
		timer = NewRoundTimer()
	}
	return &Banker{
		rules:  rules,
		wallet: wallet,
		rec:    rec,
		emit:   emit,
		timer:  timer,
		now:    time.Now,
		pick:   rand.IntN,
	}
}

// SeedNextID makes the next round id greater than maxID.
func (b *Banker) SeedNextID(maxID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if maxID > b.nextID {
		b.nextID = maxID
	}
}

type BetReceipt struct {
	Round  Round `json:"round"`
	Shares int   `json:"shares"`
	Locked bool  `json:"locked"`
}

// PlaceBet buys shares in the active round, opening a new one if needed.
func (b *Banker) PlaceBet(_ context.Context, userID, amount int64) (BetReceipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if amount < b.rules.BankerMinBet {
		return BetReceipt{}, ErrInvalidAmount
	}
	now := b.now().UTC()
	r := b.active
	fresh := r == nil || r.state.Terminal()
	if fresh {
		r = newRound(b.nextID+1, now)
	}

	shares := 1
	if r.entryAmount > 0 {
		if amount%r.entryAmount != 0 {
			return BetReceipt{}, ErrInvalidAmount
		}
		shares = int(amount / r.entryAmount)
	}
	if r.shares[userID]+shares > b.rules.BankerMaxShares {
		return BetReceipt{}, ErrInvalidAmount
	}
	if _, err := b.wallet.Adjust(userID, -amount); err != nil {
		return BetReceipt{}, err
	}

	if fresh {
		b.nextID = r.id
		b.active = r
		log.Info().Int64("round_id", r.id).Msg("banker round opened")
	}
	if r.entryAmount == 0 {
		r.entryAmount = amount
	}
	if r.state == RoundForming {
		r.state = RoundOpen
	}
	if _, ok := r.shares[userID]; !ok {
		r.order = append(r.order, userID)
	}
	for i := 0; i < shares; i++ {
		r.tickets = append(r.tickets, userID)
	}
	r.shares[userID] += shares
	r.contributed[userID] += amount
	r.lastBetAt[userID] = now
	r.bank += amount
	r.version++

	b.rec.AppendBet(BetRecord{RoundID: r.id, UserID: userID, Amount: amount, At: now})
	b.emit.Emit(Event{Type: EventBetPlaced, At: now, Payload: BetPlacedPayload{
		RoundID:     r.id,
		UserID:      userID,
		Amount:      amount,
		Shares:      shares,
		TotalShares: r.shares[userID],
		TotalBank:   r.bank,
	}})

	locked := false
	if r.participants() >= 2 && r.drawAt == nil {
		drawAt := now.Add(b.rules.BankerTimer)
		r.drawAt = &drawAt
		r.state = RoundLocked
		r.timerGen = b.timer.Arm(r.id, b.rules.BankerTimer, b.onTimer)
		locked = true
		b.emit.Emit(Event{Type: EventRoundLocked, At: now, Payload: RoundLockedPayload{
			RoundID:          r.id,
			CountdownSeconds: int(b.rules.BankerTimer / time.Second),
			DrawAt:           drawAt,
		}})
		log.Info().Int64("round_id", r.id).Time("draw_at", drawAt).Msg("banker round locked")
	}
	snap := r.snapshot()
	b.rec.SaveRound(snap)
	return BetReceipt{Round: snap, Shares: shares, Locked: locked}, nil
}

// CancelBet refunds the user's whole stake in the active round.
func (b *Banker) CancelBet(_ context.Context, userID int64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r := b.active
	if r == nil || r.state.Terminal() || r.shares[userID] == 0 {
		return 0, ErrNoActiveBets
	}
	now := b.now().UTC()
	if now.Sub(r.lastBetAt[userID]) > b.rules.BankerCancelWindow {
		return 0, ErrCancellationWindowExpired
	}
	refund := r.contributed[userID]
	if _, err := b.wallet.Adjust(userID, refund); err != nil {
		log.Error().Err(err).Int64("round_id", r.id).Int64("user_id", userID).Msg("banker refund failed")
		return 0, err
	}

	kept := r.tickets[:0]
	for _, uid := range r.tickets {
		if uid != userID {
			kept = append(kept, uid)
		}
	}
	r.tickets = kept
	r.bank -= refund
	delete(r.shares, userID)
	delete(r.contributed, userID)
	delete(r.lastBetAt, userID)
	order := r.order[:0]
	for _, uid := range r.order {
		if uid != userID {
			order = append(order, uid)
		}
	}
	r.order = order
	r.version++

	b.rec.AppendBet(BetRecord{RoundID: r.id, UserID: userID, Amount: -refund, At: now})
	b.emit.Emit(Event{Type: EventBetCancelled, At: now, Payload: BetCancelledPayload{
		RoundID: r.id, UserID: userID, RefundAmount: refund, TotalBank: r.bank,
	}})
	log.Info().Int64("round_id", r.id).Int64("user_id", userID).Int64("refund", refund).Msg("banker bet cancelled")

	if r.participants() == 0 {
		// Nobody is left to draw; close the round so the next bet starts fresh.
		b.timer.Cancel(r.id, r.timerGen)
		b.finishRefunded(r, now, map[int64]int64{})
		return refund, nil
	}
	b.rec.SaveRound(r.snapshot())
	return refund, nil
}

// Settle draws the round with the given id if it is still active and not
// terminal. It reports whether this call performed the transition.
func (b *Banker) Settle(_ context.Context, roundID int64) (Round, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.active
	if r == nil || r.id != roundID || r.state.Terminal() {
		if r != nil && r.id == roundID {
			return r.snapshot(), false
		}
		return Round{}, false
	}
	b.timer.Cancel(r.id, r.timerGen)
	b.settleLocked(r)
	return r.snapshot(), true
}

// ForceSettle draws the active round immediately.
func (b *Banker) ForceSettle(ctx context.Context) (Round, error) {
	b.mu.Lock()
	r := b.active
	if r == nil || r.state.Terminal() {
		b.mu.Unlock()
		return Round{}, ErrNoActiveRound
	}
	id := r.id
	b.mu.Unlock()
	snap, ok := b.Settle(ctx, id)
	if !ok {
		return Round{}, ErrNoActiveRound
	}
	return snap, nil
}

// Current returns the active or most recently finished round.
func (b *Banker) Current() (Round, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == nil {
		return Round{}, false
	}
	return b.active.snapshot(), true
}

// Close disarms pending draws. Locked rounds stay unfinished and are refunded
// on the next start.
func (b *Banker) Close() {
	b.timer.Stop()
}

func (b *Banker) onTimer(roundID int64, gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.active
	if r == nil || r.id != roundID || r.timerGen != gen || r.state != RoundLocked {
		return
	}
	b.settleLocked(r)
}

func (b *Banker) settleLocked(r *round) {
	now := b.now().UTC()
	if r.participants() < 2 {
		refunds := make(map[int64]int64, len(r.contributed))
		for _, uid := range r.order {
			amount := r.contributed[uid]
			if amount <= 0 {
				continue
			}
			if _, err := b.wallet.Adjust(uid, amount); err != nil {
				log.Error().Err(err).Int64("round_id", r.id).Int64("user_id", uid).Msg("banker refund failed")
				continue
			}
			refunds[uid] = amount
		}
		r.bank = 0
		b.finishRefunded(r, now, refunds)
		return
	}

	winnerID := r.tickets[b.pick(len(r.tickets))]
	p := ComputePayout(r.bank)
	if _, err := b.wallet.Adjust(winnerID, p.Prize); err != nil {
		log.Error().Err(err).Int64("round_id", r.id).Int64("winner_id", winnerID).Msg("banker prize credit failed")
	}
	if p.Commission > 0 {
		if _, err := b.wallet.Adjust(b.rules.HouseUserID, p.Commission); err != nil {
			log.Error().Err(err).Int64("round_id", r.id).Msg("banker commission credit failed")
		}
	}
	r.winnerID = &winnerID
	r.state = RoundSettled
	r.finishedAt = &now
	r.version++

	snap := r.snapshot()
	b.rec.SaveRound(snap)
	for _, part := range snap.Participants {
		b.emit.Emit(Event{Type: EventRoundSettled, At: now, Payload: RoundSettledPayload{
			RoundID:     r.id,
			WinnerID:    winnerID,
			Bank:        p.Bank,
			Commission:  p.Commission,
			Prize:       p.Prize,
			UserID:      part.UserID,
			Shares:      part.Shares,
			Contributed: part.Contributed,
			ChancePct:   part.ChancePct,
		}})
	}
	log.Info().Int64("round_id", r.id).Int64("winner_id", winnerID).Int64("bank", p.Bank).Int("tickets", len(r.tickets)).Msg("banker round settled")
}

func (b *Banker) finishRefunded(r *round, now time.Time, refunds map[int64]int64) {
	r.state = RoundRefunded
	r.finishedAt = &now
	r.version++
	b.rec.SaveRound(r.snapshot())
	b.emit.Emit(Event{Type: EventRoundRefunded, At: now, Payload: RoundRefundedPayload{RoundID: r.id, Refunds: refunds}})
	log.Info().Int64("round_id", r.id).Int("refunds", len(refunds)).Msg("banker round refunded")
}
