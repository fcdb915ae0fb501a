package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

const duelColumns = `id, creator_id, opponent_id, bet, creator_roll, opponent_roll, winner_id, state, version, created_at, finished_at,
creator_seed_hash, creator_nonce, opponent_seed_hash, opponent_nonce`

// UpsertDuel writes a duel record unless a newer version is already stored.
func (s *Store) UpsertDuel(ctx context.Context, d DuelRecord) error {
	_, err := s.Pool.Exec(ctx, `
INSERT INTO duel (`+duelColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (id) DO UPDATE
SET opponent_id = EXCLUDED.opponent_id,
    creator_roll = EXCLUDED.creator_roll,
    opponent_roll = EXCLUDED.opponent_roll,
    winner_id = EXCLUDED.winner_id,
    state = EXCLUDED.state,
    version = EXCLUDED.version,
    finished_at = EXCLUDED.finished_at,
    creator_seed_hash = EXCLUDED.creator_seed_hash,
    creator_nonce = EXCLUDED.creator_nonce,
    opponent_seed_hash = EXCLUDED.opponent_seed_hash,
    opponent_nonce = EXCLUDED.opponent_nonce
WHERE duel.version < EXCLUDED.version`,
		d.ID, d.CreatorID, d.OpponentID, d.Bet, d.CreatorRoll, d.OpponentRoll, d.WinnerID,
		d.State, d.Version, d.CreatedAt, d.FinishedAt,
		d.CreatorSeedHash, d.CreatorNonce, d.OpponentSeedHash, d.OpponentNonce)
	return err
}

func (s *Store) GetDuel(ctx context.Context, id int64) (DuelRecord, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+duelColumns+` FROM duel WHERE id = $1`, id)
	d, err := scanDuel(row)
	if err != nil {
		return DuelRecord{}, mapNotFound(err)
	}
	return d, nil
}

func (s *Store) ListDuelsByState(ctx context.Context, states ...string) ([]DuelRecord, error) {
	rows, err := s.Pool.Query(ctx, `
SELECT `+duelColumns+` FROM duel WHERE state = ANY($1) ORDER BY id`, states)
	if err != nil {
		return nil, err
	}
	return collectDuels(rows)
}

// ListUserDuels returns the finished duels a user played in, newest first.
func (s *Store) ListUserDuels(ctx context.Context, userID int64, since *time.Time, limit int) ([]DuelRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
SELECT `+duelColumns+` FROM duel
WHERE state = 'settled'
  AND (creator_id = $1 OR opponent_id = $1)
  AND ($2::timestamptz IS NULL OR finished_at >= $2)
ORDER BY finished_at DESC
LIMIT $3`, userID, since, limit)
	if err != nil {
		return nil, err
	}
	return collectDuels(rows)
}

func (s *Store) MaxDuelID(ctx context.Context) (int64, error) {
	var id int64
	err := s.Pool.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM duel`).Scan(&id)
	return id, err
}

func (s *Store) ListDuelRating(ctx context.Context, since time.Time, limit int) ([]DuelRatingRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
WITH results AS (
  SELECT creator_id AS user_id, CASE WHEN winner_id = creator_id THEN bet ELSE -bet END AS profit
  FROM duel WHERE state = 'settled' AND finished_at >= $1
  UNION ALL
  SELECT opponent_id AS user_id, CASE WHEN winner_id = opponent_id THEN bet ELSE -bet END AS profit
  FROM duel WHERE state = 'settled' AND finished_at >= $1 AND opponent_id IS NOT NULL
)
SELECT user_id, SUM(profit)::bigint AS profit, COUNT(*)::bigint AS games
FROM results
GROUP BY user_id
ORDER BY profit DESC, games ASC
LIMIT $2`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []DuelRatingRow{}
	for rows.Next() {
		var r DuelRatingRow
		if err := rows.Scan(&r.UserID, &r.Profit, &r.Games); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func collectDuels(rows pgx.Rows) ([]DuelRecord, error) {
	defer rows.Close()
	out := []DuelRecord{}
	for rows.Next() {
		d, err := scanDuel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Nullable columns scan into the record's pointer fields; NULL leaves them nil.
func scanDuel(row pgx.Row) (DuelRecord, error) {
	var d DuelRecord
	err := row.Scan(&d.ID, &d.CreatorID, &d.OpponentID, &d.Bet, &d.CreatorRoll, &d.OpponentRoll,
		&d.WinnerID, &d.State, &d.Version, &d.CreatedAt, &d.FinishedAt,
		&d.CreatorSeedHash, &d.CreatorNonce, &d.OpponentSeedHash, &d.OpponentNonce)
	return d, err
}
