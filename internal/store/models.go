package store

import "time"

type Balance struct {
	UserID    int64
	Balance   int64
	Version   int64
	UpdatedAt time.Time
}

type DuelRecord struct {
	ID               int64
	CreatorID        int64
	OpponentID       *int64
	Bet              int64
	CreatorRoll      *int
	OpponentRoll     *int
	WinnerID         *int64
	State            string
	Version          int64
	CreatedAt        time.Time
	FinishedAt       *time.Time
	CreatorSeedHash  *string
	CreatorNonce     *int64
	OpponentSeedHash *string
	OpponentNonce    *int64
}

type RoundRecord struct {
	ID          int64
	EntryAmount *int64
	TotalBank   int64
	WinnerID    *int64
	State       string
	Version     int64
	CreatedAt   time.Time
	FinishedAt  *time.Time
}

type RoundBet struct {
	ID      string
	RoundID int64
	UserID  int64
	Amount  int64
	At      time.Time
}

type Transfer struct {
	ID         string    `json:"id"`
	FromUserID int64     `json:"from_user_id"`
	ToUserID   int64     `json:"to_user_id"`
	Amount     int64     `json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
}

type DuelRatingRow struct {
	UserID int64 `json:"user_id"`
	Profit int64 `json:"profit"`
	Games  int64 `json:"games"`
}

type BankerRatingRow struct {
	UserID   int64 `json:"user_id"`
	Winnings int64 `json:"winnings"`
	Wins     int64 `json:"wins"`
}
