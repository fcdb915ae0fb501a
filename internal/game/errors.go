package game

import (
	"errors"

	"chat-casino/internal/ledger"
)

var (
	ErrInsufficientFunds         = ledger.ErrInsufficientFunds
	ErrInvalidAmount             = ledger.ErrInvalidAmount
	ErrNotJoinable               = errors.New("not_joinable")
	ErrCancellationWindowExpired = errors.New("cancellation_window_expired")
	ErrDuelNotFound              = errors.New("duel_not_found")
	ErrNotCreator                = errors.New("not_creator")
	ErrNoActiveBets              = errors.New("no_active_bets")
	ErrNoActiveRound             = errors.New("no_active_round")
)
