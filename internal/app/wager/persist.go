package wager

import (
	"context"
	"strconv"

	"chat-casino/internal/game"
	"chat-casino/internal/outbox"
	"chat-casino/internal/store"
)

const (
	jobBalance  = "balance"
	jobDuel     = "duel"
	jobRound    = "round"
	jobRoundBet = "round_bet"
	jobTransfer = "transfer"
)

// writer mirrors ledger and engine state into the repository through the
// outbox. It implements ledger.Sink and game.Recorder.
type writer struct {
	repo  Repository
	queue *outbox.Queue
}

func (w *writer) SaveBalance(userID, balance, version int64) {
	w.queue.Enqueue(jobBalance, strconv.FormatInt(userID, 10), func(ctx context.Context) error {
		return w.repo.UpsertBalance(ctx, userID, balance, version)
	})
}

func (w *writer) SaveDuel(d game.Duel) {
	rec := duelRecord(d)
	w.queue.Enqueue(jobDuel, strconv.FormatInt(d.ID, 10), func(ctx context.Context) error {
		return w.repo.UpsertDuel(ctx, rec)
	})
}

func (w *writer) SaveRound(r game.Round) {
	rec := roundRecord(r)
	w.queue.Enqueue(jobRound, strconv.FormatInt(r.ID, 10), func(ctx context.Context) error {
		return w.repo.UpsertRound(ctx, rec)
	})
}

func (w *writer) AppendBet(b game.BetRecord) {
	rec := store.RoundBet{
		ID:      store.NewID(),
		RoundID: b.RoundID,
		UserID:  b.UserID,
		Amount:  b.Amount,
		At:      b.At,
	}
	w.queue.Enqueue(jobRoundBet, strconv.FormatInt(b.RoundID, 10), func(ctx context.Context) error {
		return w.repo.AppendRoundBet(ctx, rec)
	})
}

func (w *writer) AppendTransfer(t store.Transfer) {
	w.queue.Enqueue(jobTransfer, t.ID, func(ctx context.Context) error {
		return w.repo.AppendTransfer(ctx, t)
	})
}

func duelRecord(d game.Duel) store.DuelRecord {
	rec := store.DuelRecord{
		ID:           d.ID,
		CreatorID:    d.CreatorID,
		OpponentID:   d.OpponentID,
		Bet:          d.Bet,
		CreatorRoll:  d.CreatorRoll,
		OpponentRoll: d.OpponentRoll,
		WinnerID:     d.WinnerID,
		State:        string(d.State),
		Version:      d.Version,
		CreatedAt:    d.CreatedAt,
		FinishedAt:   d.FinishedAt,
	}
	rec.CreatorSeedHash, rec.CreatorNonce = proofColumns(d.CreatorProof)
	rec.OpponentSeedHash, rec.OpponentNonce = proofColumns(d.OpponentProof)
	return rec
}

func duelFromRecord(r store.DuelRecord) game.Duel {
	return game.Duel{
		ID:           r.ID,
		CreatorID:    r.CreatorID,
		OpponentID:   r.OpponentID,
		Bet:          r.Bet,
		CreatorRoll:  r.CreatorRoll,
		OpponentRoll: r.OpponentRoll,
		WinnerID:     r.WinnerID,
		State:        game.DuelState(r.State),
		Version:      r.Version,
		CreatedAt:    r.CreatedAt,
		FinishedAt:   r.FinishedAt,

		CreatorProof:  proofFromColumns(r.CreatorSeedHash, r.CreatorNonce),
		OpponentProof: proofFromColumns(r.OpponentSeedHash, r.OpponentNonce),
	}
}

func proofColumns(p *game.RollProof) (*string, *int64) {
	if p == nil {
		return nil, nil
	}
	hash, nonce := p.SeedHash, int64(p.Nonce)
	return &hash, &nonce
}

func proofFromColumns(hash *string, nonce *int64) *game.RollProof {
	if hash == nil || nonce == nil {
		return nil
	}
	return &game.RollProof{SeedHash: *hash, Nonce: uint64(*nonce)}
}

func roundRecord(r game.Round) store.RoundRecord {
	rec := store.RoundRecord{
		ID:         r.ID,
		TotalBank:  r.TotalBank,
		WinnerID:   r.WinnerID,
		State:      string(r.State),
		Version:    r.Version,
		CreatedAt:  r.CreatedAt,
		FinishedAt: r.FinishedAt,
	}
	if r.EntryAmount > 0 {
		entry := r.EntryAmount
		rec.EntryAmount = &entry
	}
	return rec
}
