package wager

import (
	"context"
	"time"

	"chat-casino/internal/game"
	"chat-casino/internal/outbox"
	"chat-casino/internal/store"
)

// Repository is the durable store the service mirrors engine state into.
type Repository interface {
	Ping(ctx context.Context) error

	UpsertBalance(ctx context.Context, userID, balance, version int64) error
	ListBalances(ctx context.Context) ([]store.Balance, error)

	UpsertDuel(ctx context.Context, d store.DuelRecord) error
	GetDuel(ctx context.Context, id int64) (store.DuelRecord, error)
	ListDuelsByState(ctx context.Context, states ...string) ([]store.DuelRecord, error)
	ListUserDuels(ctx context.Context, userID int64, since *time.Time, limit int) ([]store.DuelRecord, error)
	MaxDuelID(ctx context.Context) (int64, error)
	ListDuelRating(ctx context.Context, since time.Time, limit int) ([]store.DuelRatingRow, error)

	UpsertRound(ctx context.Context, r store.RoundRecord) error
	AppendRoundBet(ctx context.Context, b store.RoundBet) error
	ListRoundsByState(ctx context.Context, states ...string) ([]store.RoundRecord, error)
	SumRoundBets(ctx context.Context, roundID int64) (map[int64]int64, error)
	MaxRoundID(ctx context.Context) (int64, error)

	AppendTransfer(ctx context.Context, t store.Transfer) error
	ListUserTransfers(ctx context.Context, userID int64, limit int) ([]store.Transfer, error)
	ListBankerRating(ctx context.Context, since time.Time, limit int) ([]store.BankerRatingRow, error)
}

type Options struct {
	Rules  game.Rules
	Outbox outbox.Config

	// Used when Roller is nil. Empty generates a random seed.
	ServerSeed string
	Roller     game.Roller

	EventBuffer int

	ReplaySchedule    string
	ReconcileSchedule string
}

type RecoveryReport struct {
	Balances       int   `json:"balances"`
	DuelsRefunded  int   `json:"duels_refunded"`
	RoundsRefunded int   `json:"rounds_refunded"`
	AmountRefunded int64 `json:"amount_refunded"`
}

type BalanceResponse struct {
	UserID  int64 `json:"user_id"`
	Balance int64 `json:"balance"`
}

type TransferResponse struct {
	ID          string `json:"id"`
	From        int64  `json:"from"`
	To          int64  `json:"to"`
	Amount      int64  `json:"amount"`
	FromBalance int64  `json:"from_balance"`
}

type TransferHistoryResponse struct {
	UserID int64            `json:"user_id"`
	Items  []store.Transfer `json:"items"`
}

type DuelRatingResponse struct {
	WindowDays int                   `json:"window_days"`
	Items      []store.DuelRatingRow `json:"items"`
}

type BankerRatingResponse struct {
	WindowDays int                     `json:"window_days"`
	Items      []store.BankerRatingRow `json:"items"`
}

type DuelHistoryItem struct {
	DuelID       int64     `json:"duel_id"`
	OpponentID   int64     `json:"opponent_id"`
	Bet          int64     `json:"bet"`
	OwnRoll      int       `json:"own_roll"`
	OpponentRoll int       `json:"opponent_roll"`
	Won          bool      `json:"won"`
	Profit       int64     `json:"profit"`
	FinishedAt   time.Time `json:"finished_at"`
}

type PeriodStats struct {
	Games  int   `json:"games"`
	Profit int64 `json:"profit"`
}

type DuelHistoryResponse struct {
	UserID int64             `json:"user_id"`
	Day    PeriodStats       `json:"day"`
	Week   PeriodStats       `json:"week"`
	Month  PeriodStats       `json:"month"`
	Items  []DuelHistoryItem `json:"items"`
}

type OutboxResponse struct {
	Stats       outbox.Stats        `json:"stats"`
	DeadLetters []outbox.DeadLetter `json:"dead_letters"`
}
