package store

import "context"

// UpsertBalance writes a balance unless a newer version is already stored.
func (s *Store) UpsertBalance(ctx context.Context, userID, balance, version int64) error {
	_, err := s.Pool.Exec(ctx, `
INSERT INTO ledger (user_id, balance, version, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (user_id) DO UPDATE
SET balance = EXCLUDED.balance, version = EXCLUDED.version, updated_at = now()
WHERE ledger.version < EXCLUDED.version`, userID, balance, version)
	return err
}

func (s *Store) GetBalance(ctx context.Context, userID int64) (Balance, error) {
	var b Balance
	err := s.Pool.QueryRow(ctx, `
SELECT user_id, balance, version, updated_at FROM ledger WHERE user_id = $1`, userID).
		Scan(&b.UserID, &b.Balance, &b.Version, &b.UpdatedAt)
	if err != nil {
		return Balance{}, mapNotFound(err)
	}
	return b, nil
}

func (s *Store) ListBalances(ctx context.Context) ([]Balance, error) {
	rows, err := s.Pool.Query(ctx, `
SELECT user_id, balance, version, updated_at FROM ledger ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Balance{}
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.UserID, &b.Balance, &b.Version, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
