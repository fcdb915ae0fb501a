package httptransport

import (
	"encoding/json"
	"net/http"

	"chat-casino/internal/app/wager"
)

type BankerHandlers struct {
	svc *wager.Service
}

func NewBankerHandlers(svc *wager.Service) *BankerHandlers {
	return &BankerHandlers{svc: svc}
}

func (h *BankerHandlers) Round() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		round, ok := h.svc.CurrentRound()
		if !ok {
			WriteHTTPError(w, http.StatusNotFound, "no_active_round")
			return
		}
		writeJSON(w, http.StatusOK, round)
	}
}

func (h *BankerHandlers) PlaceBet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID int64 `json:"user_id"`
			Amount int64 `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.UserID <= 0 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		receipt, err := h.svc.PlaceBet(r.Context(), body.UserID, body.Amount)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, receipt)
	}
}

func (h *BankerHandlers) CancelBet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := parseIDParam(r, "user_id")
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		refund, err := h.svc.CancelBet(r.Context(), userID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "refunded": refund})
	}
}
