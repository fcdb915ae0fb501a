package store_test

import (
	"errors"
	"testing"

	"chat-casino/internal/store"
)

func TestUpsertBalanceIgnoresStaleVersion(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	if err := st.UpsertBalance(ctx, 1, 100, 2); err != nil {
		t.Fatalf("upsert v2: %v", err)
	}
	if err := st.UpsertBalance(ctx, 1, 50, 1); err != nil {
		t.Fatalf("upsert v1: %v", err)
	}
	b, err := st.GetBalance(ctx, 1)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if b.Balance != 100 || b.Version != 2 {
		t.Fatalf("stale write applied: %+v", b)
	}
	if err := st.UpsertBalance(ctx, 1, 75, 3); err != nil {
		t.Fatalf("upsert v3: %v", err)
	}
	all, err := st.ListBalances(ctx)
	if err != nil {
		t.Fatalf("list balances: %v", err)
	}
	if len(all) != 1 || all[0].Balance != 75 {
		t.Fatalf("unexpected balances %+v", all)
	}
}

func TestGetBalanceNotFound(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	if _, err := st.GetBalance(ctx, 404); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
