package game

import (
	"context"
	"time"
)

type DuelState string

const (
	DuelOpen      DuelState = "open"
	DuelMatched   DuelState = "matched"
	DuelSettled   DuelState = "settled"
	DuelCancelled DuelState = "cancelled"
)

func (s DuelState) Terminal() bool {
	return s == DuelSettled || s == DuelCancelled
}

type Duel struct {
	ID            int64      `json:"id"`
	CreatorID     int64      `json:"creator_id"`
	OpponentID    *int64     `json:"opponent_id,omitempty"`
	Bet           int64      `json:"bet"`
	CreatorRoll   *int       `json:"creator_roll,omitempty"`
	OpponentRoll  *int       `json:"opponent_roll,omitempty"`
	// Set when the roll source can prove its values.
	CreatorProof  *RollProof `json:"creator_proof,omitempty"`
	OpponentProof *RollProof `json:"opponent_proof,omitempty"`
	WinnerID      *int64     `json:"winner_id,omitempty"`
	State         DuelState  `json:"state"`
	Version       int64      `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

type RoundState string

const (
	RoundForming  RoundState = "forming"
	RoundOpen     RoundState = "open"
	RoundLocked   RoundState = "locked"
	RoundSettled  RoundState = "settled"
	RoundRefunded RoundState = "refunded"
)

func (s RoundState) Terminal() bool {
	return s == RoundSettled || s == RoundRefunded
}

type Participant struct {
	UserID      int64     `json:"user_id"`
	Shares      int       `json:"shares"`
	Contributed int64     `json:"contributed"`
	LastBetAt   time.Time `json:"last_bet_at"`
	ChancePct   float64   `json:"chance_pct"`
}

type Round struct {
	ID           int64         `json:"id"`
	EntryAmount  int64         `json:"entry_amount,omitempty"`
	TotalBank    int64         `json:"total_bank"`
	Participants []Participant `json:"participants"`
	Tickets      int           `json:"tickets"`
	DrawAt       *time.Time    `json:"draw_at,omitempty"`
	WinnerID     *int64        `json:"winner_id,omitempty"`
	State        RoundState    `json:"state"`
	Version      int64         `json:"version"`
	CreatedAt    time.Time     `json:"created_at"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
}

// BetRecord is one signed movement of a user's stake in a round.
// Cancellations are recorded with a negative amount.
type BetRecord struct {
	RoundID int64
	UserID  int64
	Amount  int64
	At      time.Time
}

// Wallet is the balance authority engines move money through.
type Wallet interface {
	Balance(userID int64) int64
	Adjust(userID, delta int64) (int64, error)
}

// Recorder receives durable copies of engine state. Calls must not block.
type Recorder interface {
	SaveDuel(d Duel)
	SaveRound(r Round)
	AppendBet(b BetRecord)
}

// Roller produces a die value in [1,6] for a user.
type Roller interface {
	Roll(ctx context.Context, userID int64) (int, error)
}

type nopRecorder struct{}

func (nopRecorder) SaveDuel(Duel)       {}
func (nopRecorder) SaveRound(Round)     {}
func (nopRecorder) AppendBet(BetRecord) {}
