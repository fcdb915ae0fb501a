package httptransport

import (
	"encoding/json"
	"net/http"

	"chat-casino/internal/app/wager"
)

type WalletHandlers struct {
	svc *wager.Service
}

func NewWalletHandlers(svc *wager.Service) *WalletHandlers {
	return &WalletHandlers{svc: svc}
}

func (h *WalletHandlers) Balance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := parseIDParam(r, "user_id")
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		writeJSON(w, http.StatusOK, h.svc.Balance(userID))
	}
}

func (h *WalletHandlers) Transfer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			From   int64 `json:"from"`
			To     int64 `json:"to"`
			Amount int64 `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.From <= 0 || body.To <= 0 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		resp, err := h.svc.Transfer(body.From, body.To, body.Amount)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *WalletHandlers) UserTransfers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := parseIDParam(r, "user_id")
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		resp, err := h.svc.UserTransfers(r.Context(), userID, ParseLimit(r, 20, 100))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
