package httptransport

import (
	"errors"
	"net/http"

	"chat-casino/internal/app/wager"
	"chat-casino/internal/game"

	"github.com/rs/zerolog/log"
)

// ErrorStatus maps a service error to its HTTP status and wire code.
func ErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount"
	case errors.Is(err, wager.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, wager.ErrSelfTransfer):
		return http.StatusBadRequest, "self_transfer"
	case errors.Is(err, game.ErrInsufficientFunds):
		return http.StatusConflict, "insufficient_funds"
	case errors.Is(err, game.ErrNotJoinable):
		return http.StatusConflict, "not_joinable"
	case errors.Is(err, game.ErrCancellationWindowExpired):
		return http.StatusConflict, "cancellation_window_expired"
	case errors.Is(err, game.ErrNoActiveBets):
		return http.StatusConflict, "no_active_bets"
	case errors.Is(err, game.ErrNotCreator):
		return http.StatusForbidden, "not_creator"
	case errors.Is(err, game.ErrDuelNotFound):
		return http.StatusNotFound, "duel_not_found"
	case errors.Is(err, game.ErrNoActiveRound):
		return http.StatusNotFound, "no_active_round"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := ErrorStatus(err)
	metricRequestErrors.Add(code, 1)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	WriteHTTPError(w, status, code)
}
