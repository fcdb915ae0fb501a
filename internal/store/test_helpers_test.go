package store_test

import (
	"context"
	"testing"

	"chat-casino/internal/store"
	"chat-casino/internal/testutil"
)

func openStore(t *testing.T) (*store.Store, context.Context, func()) {
	t.Helper()
	st, cleanup := testutil.OpenTestStore(t)
	return st, context.Background(), cleanup
}

func int64Ptr(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
