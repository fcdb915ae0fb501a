package store_test

import (
	"testing"
	"time"

	"chat-casino/internal/store"
)

func TestAppendRoundBetBeforeRound(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	at := time.Now().UTC()
	bets := []store.RoundBet{
		{ID: store.NewID(), RoundID: 5, UserID: 1, Amount: 30, At: at},
		{ID: store.NewID(), RoundID: 5, UserID: 2, Amount: 90, At: at},
		{ID: store.NewID(), RoundID: 5, UserID: 3, Amount: 30, At: at},
		{ID: store.NewID(), RoundID: 5, UserID: 3, Amount: -30, At: at},
	}
	for _, b := range bets {
		if err := st.AppendRoundBet(ctx, b); err != nil {
			t.Fatalf("append bet: %v", err)
		}
	}
	if err := st.AppendRoundBet(ctx, bets[0]); err != nil {
		t.Fatalf("duplicate append: %v", err)
	}

	sums, err := st.SumRoundBets(ctx, 5)
	if err != nil {
		t.Fatalf("sum bets: %v", err)
	}
	if len(sums) != 2 || sums[1] != 30 || sums[2] != 90 {
		t.Fatalf("unexpected sums %+v", sums)
	}

	unfinished, err := st.ListRoundsByState(ctx, "forming", "open", "locked")
	if err != nil {
		t.Fatalf("list rounds: %v", err)
	}
	if len(unfinished) != 1 || unfinished[0].ID != 5 {
		t.Fatalf("expected placeholder round, got %+v", unfinished)
	}
}

func TestUpsertRoundSettledAndRating(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	created := time.Now().UTC().Add(-time.Minute)
	finished := time.Now().UTC()
	r := store.RoundRecord{ID: 1, EntryAmount: int64Ptr(30), TotalBank: 120, State: "locked", Version: 2, CreatedAt: created}
	if err := st.UpsertRound(ctx, r); err != nil {
		t.Fatalf("upsert locked: %v", err)
	}
	r.State = "settled"
	r.WinnerID = int64Ptr(2)
	r.Version = 3
	r.FinishedAt = &finished
	if err := st.UpsertRound(ctx, r); err != nil {
		t.Fatalf("upsert settled: %v", err)
	}
	got, err := st.GetRound(ctx, 1)
	if err != nil {
		t.Fatalf("get round: %v", err)
	}
	if got.State != "settled" || got.WinnerID == nil || *got.WinnerID != 2 || *got.EntryAmount != 30 {
		t.Fatalf("unexpected round %+v", got)
	}
	maxID, err := st.MaxRoundID(ctx)
	if err != nil || maxID != 1 {
		t.Fatalf("max round id = %d err=%v", maxID, err)
	}
	rating, err := st.ListBankerRating(ctx, time.Now().Add(-24*time.Hour), 10)
	if err != nil {
		t.Fatalf("rating: %v", err)
	}
	if len(rating) != 1 || rating[0].UserID != 2 || rating[0].Winnings != 120 || rating[0].Wins != 1 {
		t.Fatalf("unexpected rating %+v", rating)
	}
}
