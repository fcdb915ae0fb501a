package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"chat-casino/internal/store"
)

var ErrRepoDown = errors.New("repo_down")

// MemRepo is an in-memory stand-in for *store.Store with the same
// version guards on upserts.
type MemRepo struct {
	mu        sync.Mutex
	fail      bool
	balances  map[int64]store.Balance
	duels     map[int64]store.DuelRecord
	rounds    map[int64]store.RoundRecord
	bets      []store.RoundBet
	transfers []store.Transfer

	DuelRating   []store.DuelRatingRow
	BankerRating []store.BankerRatingRow
}

func NewMemRepo() *MemRepo {
	return &MemRepo{
		balances: map[int64]store.Balance{},
		duels:    map[int64]store.DuelRecord{},
		rounds:   map[int64]store.RoundRecord{},
	}
}

// SetFail makes every write return ErrRepoDown until cleared.
func (r *MemRepo) SetFail(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = v
}

func (r *MemRepo) PutBalance(b store.Balance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[b.UserID] = b
}

func (r *MemRepo) PutDuel(d store.DuelRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.duels[d.ID] = d
}

func (r *MemRepo) PutRound(rd store.RoundRecord, bets ...store.RoundBet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rounds[rd.ID] = rd
	r.bets = append(r.bets, bets...)
}

func (r *MemRepo) BalanceOf(userID int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[userID].Balance
}

func (r *MemRepo) Duel(id int64) store.DuelRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.duels[id]
}

func (r *MemRepo) Round(id int64) store.RoundRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rounds[id]
}

func (r *MemRepo) Ping(context.Context) error { return nil }

func (r *MemRepo) UpsertBalance(_ context.Context, userID, balance, version int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return ErrRepoDown
	}
	if cur, ok := r.balances[userID]; ok && cur.Version >= version {
		return nil
	}
	r.balances[userID] = store.Balance{UserID: userID, Balance: balance, Version: version, UpdatedAt: time.Now().UTC()}
	return nil
}

func (r *MemRepo) ListBalances(context.Context) ([]store.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]store.Balance, 0, len(r.balances))
	for _, b := range r.balances {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *MemRepo) UpsertDuel(_ context.Context, d store.DuelRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return ErrRepoDown
	}
	if cur, ok := r.duels[d.ID]; ok && cur.Version >= d.Version {
		return nil
	}
	r.duels[d.ID] = d
	return nil
}

func (r *MemRepo) GetDuel(_ context.Context, id int64) (store.DuelRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.duels[id]
	if !ok {
		return store.DuelRecord{}, store.ErrNotFound
	}
	return d, nil
}

func (r *MemRepo) ListDuelsByState(_ context.Context, states ...string) ([]store.DuelRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []store.DuelRecord{}
	for _, d := range r.duels {
		for _, st := range states {
			if d.State == st {
				out = append(out, d)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemRepo) ListUserDuels(_ context.Context, userID int64, since *time.Time, limit int) ([]store.DuelRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []store.DuelRecord{}
	for _, d := range r.duels {
		if d.State != "settled" || d.FinishedAt == nil {
			continue
		}
		if d.CreatorID != userID && (d.OpponentID == nil || *d.OpponentID != userID) {
			continue
		}
		if since != nil && d.FinishedAt.Before(*since) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FinishedAt.After(*out[j].FinishedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemRepo) MaxDuelID(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var max int64
	for id := range r.duels {
		if id > max {
			max = id
		}
	}
	return max, nil
}

func (r *MemRepo) ListDuelRating(_ context.Context, _ time.Time, limit int) ([]store.DuelRatingRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]store.DuelRatingRow{}, r.DuelRating...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemRepo) UpsertRound(_ context.Context, rd store.RoundRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return ErrRepoDown
	}
	if cur, ok := r.rounds[rd.ID]; ok && cur.Version >= rd.Version {
		return nil
	}
	r.rounds[rd.ID] = rd
	return nil
}

func (r *MemRepo) AppendRoundBet(_ context.Context, b store.RoundBet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return ErrRepoDown
	}
	if _, ok := r.rounds[b.RoundID]; !ok {
		r.rounds[b.RoundID] = store.RoundRecord{ID: b.RoundID, State: "forming", CreatedAt: b.At}
	}
	for _, existing := range r.bets {
		if existing.ID == b.ID {
			return nil
		}
	}
	r.bets = append(r.bets, b)
	return nil
}

func (r *MemRepo) ListRoundsByState(_ context.Context, states ...string) ([]store.RoundRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []store.RoundRecord{}
	for _, rd := range r.rounds {
		for _, st := range states {
			if rd.State == st {
				out = append(out, rd)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemRepo) SumRoundBets(_ context.Context, roundID int64) (map[int64]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[int64]int64{}
	for _, b := range r.bets {
		if b.RoundID == roundID {
			out[b.UserID] += b.Amount
		}
	}
	for uid, sum := range out {
		if sum == 0 {
			delete(out, uid)
		}
	}
	return out, nil
}

func (r *MemRepo) MaxRoundID(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var max int64
	for id := range r.rounds {
		if id > max {
			max = id
		}
	}
	return max, nil
}

func (r *MemRepo) ListBankerRating(_ context.Context, _ time.Time, limit int) ([]store.BankerRatingRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]store.BankerRatingRow{}, r.BankerRating...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemRepo) AppendTransfer(_ context.Context, t store.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return ErrRepoDown
	}
	for _, existing := range r.transfers {
		if existing.ID == t.ID {
			return nil
		}
	}
	r.transfers = append(r.transfers, t)
	return nil
}

func (r *MemRepo) ListUserTransfers(_ context.Context, userID int64, limit int) ([]store.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []store.Transfer{}
	for _, t := range r.transfers {
		if t.FromUserID == userID || t.ToUserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
