package store

import (
	"context"
)

// AppendTransfer records a user-to-user transfer. Replays of the same id are
// ignored.
func (s *Store) AppendTransfer(ctx context.Context, t Transfer) error {
	_, err := s.Pool.Exec(ctx, `
INSERT INTO transfer (id, from_user_id, to_user_id, amount, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO NOTHING`, t.ID, t.FromUserID, t.ToUserID, t.Amount, t.CreatedAt)
	return err
}

// ListUserTransfers returns transfers sent or received by userID, newest first.
func (s *Store) ListUserTransfers(ctx context.Context, userID int64, limit int) ([]Transfer, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
SELECT id, from_user_id, to_user_id, amount, created_at
FROM transfer
WHERE from_user_id = $1 OR to_user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Transfer{}
	for rows.Next() {
		var t Transfer
		if err := rows.Scan(&t.ID, &t.FromUserID, &t.ToUserID, &t.Amount, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
