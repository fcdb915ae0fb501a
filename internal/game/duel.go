package game

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// maxRerolls bounds the tie loop against a broken roll source.
	maxRerolls = 100
	// settleAttempts is how often a matched duel is tried before it is voided.
	settleAttempts = 3

	CancelReasonCreator          = "creator_cancelled"
	CancelReasonSettlementFailed = "settlement_failed"
)

var errBadRoll = errors.New("bad_roll")

type duelEntry struct {
	mu   sync.Mutex
	duel Duel
}

// DuelEngine runs two-party equal-stake duels. Every duel is guarded by its
// own mutex; state checks and mutations happen under it.
type DuelEngine struct {
	rules  Rules
	wallet Wallet
	roller Roller
	rec    Recorder
	emit   Emitter
	now    func() time.Time
	// first backoff between settlement attempts; doubles each retry
	retryBase time.Duration

	mu     sync.Mutex
	nextID int64
	duels  map[int64]*duelEntry

	baseCtx context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup
}

func NewDuelEngine(rules Rules, wallet Wallet, roller Roller, rec Recorder, emit Emitter) *DuelEngine {
	if rec == nil {
		rec = nopRecorder{}
	}
	if emit == nil {
		emit = nopEmitter{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &DuelEngine{
		rules:     rules,
		wallet:    wallet,
		roller:    roller,
		rec:       rec,
		emit:      emit,
		now:       time.Now,
		retryBase: 500 * time.Millisecond,
		duels:     map[int64]*duelEntry{},
		baseCtx:   ctx,
		stop:      cancel,
	}
}

// SeedNextID makes the next duel id greater than maxID.
func (e *DuelEngine) SeedNextID(maxID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if maxID > e.nextID {
		e.nextID = maxID
	}
}

func (e *DuelEngine) Create(_ context.Context, creatorID, bet int64) (Duel, error) {
	if bet < e.rules.DuelMinBet {
		return Duel{}, ErrInvalidAmount
	}
	if _, err := e.wallet.Adjust(creatorID, -bet); err != nil {
		return Duel{}, err
	}

	e.mu.Lock()
	e.nextID++
	d := Duel{
		ID:        e.nextID,
		CreatorID: creatorID,
		Bet:       bet,
		State:     DuelOpen,
		Version:   1,
		CreatedAt: e.now().UTC(),
	}
	e.duels[d.ID] = &duelEntry{duel: d}
	e.mu.Unlock()

	e.rec.SaveDuel(d)
	e.emit.Emit(Event{Type: EventDuelCreated, At: d.CreatedAt, Payload: DuelCreatedPayload{DuelID: d.ID, CreatorID: creatorID, Bet: bet}})
	log.Info().Int64("duel_id", d.ID).Int64("creator_id", creatorID).Int64("bet", bet).Msg("duel created")
	return d, nil
}

// Join matches an open duel and schedules its settlement after the roll delay.
func (e *DuelEngine) Join(_ context.Context, opponentID, duelID int64) (Duel, error) {
	entry := e.entry(duelID)
	if entry == nil {
		return Duel{}, ErrDuelNotFound
	}
	entry.mu.Lock()
	d := entry.duel
	if d.State != DuelOpen || d.CreatorID == opponentID {
		entry.mu.Unlock()
		return Duel{}, ErrNotJoinable
	}
	if _, err := e.wallet.Adjust(opponentID, -d.Bet); err != nil {
		entry.mu.Unlock()
		return Duel{}, err
	}
	d.OpponentID = &opponentID
	d.State = DuelMatched
	d.Version++
	entry.duel = d
	e.rec.SaveDuel(d)
	e.emit.Emit(Event{Type: EventDuelMatched, At: e.now().UTC(), Payload: DuelMatchedPayload{
		DuelID: d.ID, CreatorID: d.CreatorID, OpponentID: opponentID, Bet: d.Bet,
	}})
	entry.mu.Unlock()

	log.Info().Int64("duel_id", d.ID).Int64("opponent_id", opponentID).Msg("duel matched")
	e.scheduleSettle(d.ID)
	return d, nil
}

func (e *DuelEngine) Cancel(_ context.Context, creatorID, duelID int64) (Duel, error) {
	entry := e.entry(duelID)
	if entry == nil {
		return Duel{}, ErrDuelNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	d := entry.duel
	if d.CreatorID != creatorID {
		return Duel{}, ErrNotCreator
	}
	if d.State != DuelOpen {
		return Duel{}, ErrNotJoinable
	}
	now := e.now().UTC()
	if now.Sub(d.CreatedAt) > e.rules.DuelCancelWindow {
		return Duel{}, ErrCancellationWindowExpired
	}
	if _, err := e.wallet.Adjust(creatorID, d.Bet); err != nil {
		log.Error().Err(err).Int64("duel_id", d.ID).Msg("duel refund failed")
		return Duel{}, err
	}
	d.State = DuelCancelled
	d.Version++
	d.FinishedAt = &now
	entry.duel = d
	e.rec.SaveDuel(d)
	e.emit.Emit(Event{Type: EventDuelCancelled, At: now, Payload: DuelCancelledPayload{
		DuelID:       d.ID,
		CreatorID:    creatorID,
		RefundAmount: d.Bet,
		Reason:       CancelReasonCreator,
	}})
	log.Info().Int64("duel_id", d.ID).Msg("duel cancelled")
	return d, nil
}

// Settle rolls and pays out a matched duel. It reports false without error
// when the duel is not in the matched state, so repeated calls are no-ops.
func (e *DuelEngine) Settle(ctx context.Context, duelID int64) (Duel, bool, error) {
	entry := e.entry(duelID)
	if entry == nil {
		return Duel{}, false, nil
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	d := entry.duel
	if d.State != DuelMatched || d.OpponentID == nil {
		return d, false, nil
	}
	opponentID := *d.OpponentID

	var creatorRoll, opponentRoll, rerolls int
	var creatorProof, opponentProof *RollProof
	for {
		var err error
		if creatorRoll, creatorProof, err = e.roll(ctx, d.CreatorID); err != nil {
			return d, false, err
		}
		if opponentRoll, opponentProof, err = e.roll(ctx, opponentID); err != nil {
			return d, false, err
		}
		if !validRoll(creatorRoll) || !validRoll(opponentRoll) {
			return d, false, errBadRoll
		}
		if creatorRoll != opponentRoll {
			break
		}
		rerolls++
		if rerolls >= maxRerolls {
			return d, false, errBadRoll
		}
	}

	winnerID, loserID := d.CreatorID, opponentID
	if opponentRoll > creatorRoll {
		winnerID, loserID = opponentID, d.CreatorID
	}
	p := ComputePayout(2 * d.Bet)
	if _, err := e.wallet.Adjust(winnerID, p.Prize); err != nil {
		log.Error().Err(err).Int64("duel_id", d.ID).Int64("winner_id", winnerID).Msg("duel prize credit failed")
		return d, false, err
	}
	if p.Commission > 0 {
		if _, err := e.wallet.Adjust(e.rules.HouseUserID, p.Commission); err != nil {
			log.Error().Err(err).Int64("duel_id", d.ID).Msg("duel commission credit failed")
		}
	}

	now := e.now().UTC()
	d.CreatorRoll = &creatorRoll
	d.OpponentRoll = &opponentRoll
	d.CreatorProof = creatorProof
	d.OpponentProof = opponentProof
	d.WinnerID = &winnerID
	d.State = DuelSettled
	d.Version++
	d.FinishedAt = &now
	entry.duel = d
	e.rec.SaveDuel(d)
	e.emit.Emit(Event{Type: EventDuelSettled, At: now, Payload: DuelSettledPayload{
		DuelID:        d.ID,
		WinnerID:      winnerID,
		LoserID:       loserID,
		CreatorRoll:   creatorRoll,
		OpponentRoll:  opponentRoll,
		Rerolls:       rerolls,
		CreatorProof:  creatorProof,
		OpponentProof: opponentProof,
		Bank:          p.Bank,
		Prize:         p.Prize,
		Commission:    p.Commission,
	}})
	log.Info().Int64("duel_id", d.ID).Int64("winner_id", winnerID).Int("creator_roll", creatorRoll).Int("opponent_roll", opponentRoll).Int64("prize", p.Prize).Msg("duel settled")
	return d, true, nil
}

func (e *DuelEngine) roll(ctx context.Context, userID int64) (int, *RollProof, error) {
	if pr, ok := e.roller.(ProvableRoller); ok {
		v, proof, err := pr.RollWithProof(ctx, userID)
		if err != nil {
			return 0, nil, err
		}
		return v, &proof, nil
	}
	v, err := e.roller.Roll(ctx, userID)
	return v, nil, err
}

// scheduleSettle settles a matched duel after the roll delay. Failed attempts
// are retried with backoff; when every attempt fails the duel is voided and
// both stakes are refunded. A shutdown in between leaves the duel matched
// for restart recovery.
func (e *DuelEngine) scheduleSettle(duelID int64) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if !e.sleep(e.rules.DuelRollDelay) {
			return
		}
		backoff := e.retryBase
		for attempt := 1; ; attempt++ {
			_, _, err := e.Settle(e.baseCtx, duelID)
			if err == nil {
				return
			}
			log.Warn().Err(err).Int64("duel_id", duelID).Int("attempt", attempt).Msg("duel settlement failed")
			if attempt >= settleAttempts {
				break
			}
			if !e.sleep(backoff) {
				return
			}
			backoff *= 2
		}
		if _, ok := e.Void(duelID); ok {
			log.Error().Int64("duel_id", duelID).Msg("duel voided after failed settlement")
		}
	}()
}

// sleep waits for d and reports false if the engine closed meanwhile.
func (e *DuelEngine) sleep(d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-e.baseCtx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Void cancels a matched duel and refunds both stakes. It reports false when
// the duel is not matched, so it never races a successful settlement.
func (e *DuelEngine) Void(duelID int64) (Duel, bool) {
	entry := e.entry(duelID)
	if entry == nil {
		return Duel{}, false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	d := entry.duel
	if d.State != DuelMatched || d.OpponentID == nil {
		return d, false
	}
	opponentID := *d.OpponentID
	for _, uid := range []int64{d.CreatorID, opponentID} {
		if _, err := e.wallet.Adjust(uid, d.Bet); err != nil {
			log.Error().Err(err).Int64("duel_id", d.ID).Int64("user_id", uid).Msg("duel void refund failed")
		}
	}
	now := e.now().UTC()
	d.State = DuelCancelled
	d.Version++
	d.FinishedAt = &now
	entry.duel = d
	e.rec.SaveDuel(d)
	e.emit.Emit(Event{Type: EventDuelCancelled, At: now, Payload: DuelCancelledPayload{
		DuelID:       d.ID,
		CreatorID:    d.CreatorID,
		OpponentID:   opponentID,
		RefundAmount: d.Bet,
		Reason:       CancelReasonSettlementFailed,
	}})
	return d, true
}

func (e *DuelEngine) Get(duelID int64) (Duel, error) {
	entry := e.entry(duelID)
	if entry == nil {
		return Duel{}, ErrDuelNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.duel, nil
}

// ListOpen returns joinable duels, newest first.
func (e *DuelEngine) ListOpen() []Duel {
	e.mu.Lock()
	entries := make([]*duelEntry, 0, len(e.duels))
	for _, entry := range e.duels {
		entries = append(entries, entry)
	}
	e.mu.Unlock()

	out := []Duel{}
	for _, entry := range entries {
		entry.mu.Lock()
		if entry.duel.State == DuelOpen {
			out = append(out, entry.duel)
		}
		entry.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// Prune forgets terminal duels finished before cutoff and returns how many
// were dropped. Their durable records are unaffected.
func (e *DuelEngine) Prune(cutoff time.Time) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for id, entry := range e.duels {
		entry.mu.Lock()
		d := entry.duel
		entry.mu.Unlock()
		if d.State.Terminal() && d.FinishedAt != nil && d.FinishedAt.Before(cutoff) {
			delete(e.duels, id)
			n++
		}
	}
	return n
}

// Close stops pending settlements and waits for running ones.
func (e *DuelEngine) Close() {
	e.stop()
	e.wg.Wait()
}

// Wait blocks until every scheduled settlement has finished.
func (e *DuelEngine) Wait() {
	e.wg.Wait()
}

func validRoll(v int) bool { return v >= 1 && v <= 6 }

func (e *DuelEngine) entry(duelID int64) *duelEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duels[duelID]
}
