package store_test

import (
	"testing"
	"time"

	"chat-casino/internal/store"
)

func TestUpsertDuelLifecycle(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	created := time.Now().UTC().Add(-time.Minute)
	d := store.DuelRecord{ID: 1, CreatorID: 10, Bet: 50, State: "open", Version: 1, CreatedAt: created}
	if err := st.UpsertDuel(ctx, d); err != nil {
		t.Fatalf("upsert open: %v", err)
	}
	open, err := st.ListDuelsByState(ctx, "open", "matched")
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 1 || open[0].OpponentID != nil {
		t.Fatalf("unexpected open duels %+v", open)
	}

	finished := time.Now().UTC()
	d.OpponentID = int64Ptr(20)
	d.CreatorRoll = intPtr(6)
	d.OpponentRoll = intPtr(3)
	d.WinnerID = int64Ptr(10)
	d.CreatorSeedHash = strPtr("c0ffee")
	d.CreatorNonce = int64Ptr(41)
	d.OpponentSeedHash = strPtr("c0ffee")
	d.OpponentNonce = int64Ptr(42)
	d.State = "settled"
	d.Version = 3
	d.FinishedAt = &finished
	if err := st.UpsertDuel(ctx, d); err != nil {
		t.Fatalf("upsert settled: %v", err)
	}

	stale := store.DuelRecord{ID: 1, CreatorID: 10, OpponentID: int64Ptr(20), Bet: 50, State: "matched", Version: 2, CreatedAt: created}
	if err := st.UpsertDuel(ctx, stale); err != nil {
		t.Fatalf("upsert stale: %v", err)
	}
	got, err := st.GetDuel(ctx, 1)
	if err != nil {
		t.Fatalf("get duel: %v", err)
	}
	if got.State != "settled" || got.WinnerID == nil || *got.WinnerID != 10 || *got.CreatorRoll != 6 {
		t.Fatalf("unexpected duel %+v", got)
	}
	if got.CreatorSeedHash == nil || *got.CreatorSeedHash != "c0ffee" || got.OpponentNonce == nil || *got.OpponentNonce != 42 {
		t.Fatalf("roll proof not stored %+v", got)
	}

	maxID, err := st.MaxDuelID(ctx)
	if err != nil || maxID != 1 {
		t.Fatalf("max duel id = %d err=%v", maxID, err)
	}

	history, err := st.ListUserDuels(ctx, 20, nil, 10)
	if err != nil {
		t.Fatalf("user duels: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(history))
	}

	rating, err := st.ListDuelRating(ctx, time.Now().Add(-24*time.Hour), 10)
	if err != nil {
		t.Fatalf("rating: %v", err)
	}
	if len(rating) != 2 || rating[0].UserID != 10 || rating[0].Profit != 50 || rating[1].Profit != -50 {
		t.Fatalf("unexpected rating %+v", rating)
	}
}
