package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

const roundColumns = `id, entry_amount, total_bank, winner_id, state, version, created_at, finished_at`

// UpsertRound writes a round record unless a newer version is already stored.
func (s *Store) UpsertRound(ctx context.Context, r RoundRecord) error {
	_, err := s.Pool.Exec(ctx, `
INSERT INTO round (`+roundColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
SET entry_amount = EXCLUDED.entry_amount,
    total_bank = EXCLUDED.total_bank,
    winner_id = EXCLUDED.winner_id,
    state = EXCLUDED.state,
    version = EXCLUDED.version,
    finished_at = EXCLUDED.finished_at
WHERE round.version < EXCLUDED.version`,
		r.ID, r.EntryAmount, r.TotalBank, r.WinnerID, r.State, r.Version, r.CreatedAt, r.FinishedAt)
	return err
}

// AppendRoundBet records one bet movement. A placeholder round row is created
// when the bet reaches the store before its round.
func (s *Store) AppendRoundBet(ctx context.Context, b RoundBet) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
INSERT INTO round (id, total_bank, state, version, created_at)
VALUES ($1, 0, 'forming', 0, $2)
ON CONFLICT (id) DO NOTHING`, b.RoundID, b.At); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
INSERT INTO round_bet (id, round_id, user_id, amount, at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO NOTHING`, b.ID, b.RoundID, b.UserID, b.Amount, b.At); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) GetRound(ctx context.Context, id int64) (RoundRecord, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+roundColumns+` FROM round WHERE id = $1`, id)
	r, err := scanRound(row)
	if err != nil {
		return RoundRecord{}, mapNotFound(err)
	}
	return r, nil
}

func (s *Store) ListRoundsByState(ctx context.Context, states ...string) ([]RoundRecord, error) {
	rows, err := s.Pool.Query(ctx, `
SELECT `+roundColumns+` FROM round WHERE state = ANY($1) ORDER BY id`, states)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []RoundRecord{}
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SumRoundBets returns each user's net contribution to a round.
func (s *Store) SumRoundBets(ctx context.Context, roundID int64) (map[int64]int64, error) {
	rows, err := s.Pool.Query(ctx, `
SELECT user_id, SUM(amount)::bigint FROM round_bet
WHERE round_id = $1
GROUP BY user_id
HAVING SUM(amount) <> 0`, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[int64]int64{}
	for rows.Next() {
		var userID, sum int64
		if err := rows.Scan(&userID, &sum); err != nil {
			return nil, err
		}
		out[userID] = sum
	}
	return out, rows.Err()
}

func (s *Store) MaxRoundID(ctx context.Context) (int64, error) {
	var id int64
	err := s.Pool.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM round`).Scan(&id)
	return id, err
}

func (s *Store) ListBankerRating(ctx context.Context, since time.Time, limit int) ([]BankerRatingRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.Pool.Query(ctx, `
SELECT winner_id, SUM(total_bank)::bigint AS winnings, COUNT(*)::bigint AS wins
FROM round
WHERE state = 'settled' AND winner_id IS NOT NULL AND finished_at >= $1
GROUP BY winner_id
ORDER BY winnings DESC, wins DESC
LIMIT $2`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []BankerRatingRow{}
	for rows.Next() {
		var r BankerRatingRow
		if err := rows.Scan(&r.UserID, &r.Winnings, &r.Wins); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRound(row pgx.Row) (RoundRecord, error) {
	var r RoundRecord
	err := row.Scan(&r.ID, &r.EntryAmount, &r.TotalBank, &r.WinnerID, &r.State, &r.Version, &r.CreatedAt, &r.FinishedAt)
	return r, err
}
