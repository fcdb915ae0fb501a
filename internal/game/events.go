package game

import "time"

const (
	EventDuelCreated   = "duel_created"
	EventDuelMatched   = "duel_matched"
	EventDuelSettled   = "duel_settled"
	EventDuelCancelled = "duel_cancelled"
	EventBetPlaced     = "bet_placed"
	EventBetCancelled  = "bet_cancelled"
	EventRoundLocked   = "round_locked"
	EventRoundSettled  = "round_settled"
	EventRoundRefunded = "round_refunded"
)

type Event struct {
	Type    string    `json:"type"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload"`
}

type Emitter interface {
	Emit(ev Event)
}

type EmitterFunc func(ev Event)

func (f EmitterFunc) Emit(ev Event) { f(ev) }

type DuelCreatedPayload struct {
	DuelID    int64 `json:"duel_id"`
	CreatorID int64 `json:"creator_id"`
	Bet       int64 `json:"bet"`
}

type DuelMatchedPayload struct {
	DuelID     int64 `json:"duel_id"`
	CreatorID  int64 `json:"creator_id"`
	OpponentID int64 `json:"opponent_id"`
	Bet        int64 `json:"bet"`
}

type DuelSettledPayload struct {
	DuelID        int64      `json:"duel_id"`
	WinnerID      int64      `json:"winner_id"`
	LoserID       int64      `json:"loser_id"`
	CreatorRoll   int        `json:"creator_roll"`
	OpponentRoll  int        `json:"opponent_roll"`
	Rerolls       int        `json:"rerolls"`
	CreatorProof  *RollProof `json:"creator_proof,omitempty"`
	OpponentProof *RollProof `json:"opponent_proof,omitempty"`
	Bank          int64      `json:"bank"`
	Prize         int64      `json:"prize"`
	Commission    int64      `json:"commission"`
}

// DuelCancelledPayload covers a creator cancel and a voided match. A voided
// match also names the opponent, who is refunded the same amount.
type DuelCancelledPayload struct {
	DuelID       int64  `json:"duel_id"`
	CreatorID    int64  `json:"creator_id"`
	OpponentID   int64  `json:"opponent_id,omitempty"`
	RefundAmount int64  `json:"refund_amount"`
	Reason       string `json:"reason"`
}

type BetPlacedPayload struct {
	RoundID     int64 `json:"round_id"`
	UserID      int64 `json:"user_id"`
	Amount      int64 `json:"amount"`
	Shares      int   `json:"shares"`
	TotalShares int   `json:"total_shares"`
	TotalBank   int64 `json:"total_bank"`
}

type BetCancelledPayload struct {
	RoundID      int64 `json:"round_id"`
	UserID       int64 `json:"user_id"`
	RefundAmount int64 `json:"refund_amount"`
	TotalBank    int64 `json:"total_bank"`
}

type RoundLockedPayload struct {
	RoundID          int64     `json:"round_id"`
	CountdownSeconds int       `json:"countdown_seconds"`
	DrawAt           time.Time `json:"draw_at"`
}

// RoundSettledPayload is emitted once per participant of a settled round.
type RoundSettledPayload struct {
	RoundID     int64   `json:"round_id"`
	WinnerID    int64   `json:"winner_id"`
	Bank        int64   `json:"bank"`
	Commission  int64   `json:"commission"`
	Prize       int64   `json:"prize"`
	UserID      int64   `json:"user_id"`
	Shares      int     `json:"shares"`
	Contributed int64   `json:"contributed"`
	ChancePct   float64 `json:"chance_pct"`
}

type RoundRefundedPayload struct {
	RoundID int64           `json:"round_id"`
	Refunds map[int64]int64 `json:"refunds"`
}

type nopEmitter struct{}

func (nopEmitter) Emit(Event) {}
