package httptransport

import (
	"encoding/json"
	"net/http"

	"chat-casino/internal/app/wager"
)

type AdminHandlers struct {
	svc *wager.Service
}

func NewAdminHandlers(svc *wager.Service) *AdminHandlers {
	return &AdminHandlers{svc: svc}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "db": "down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "db": "up"})
	}
}

func (h *AdminHandlers) SetBalance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := parseIDParam(r, "user_id")
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		var body struct {
			Balance *int64 `json:"balance"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.Balance == nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		resp, err := h.svc.SetBalance(userID, *body.Balance)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *AdminHandlers) ForceDraw() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		round, err := h.svc.ForceDraw(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, round)
	}
}

func (h *AdminHandlers) Outbox() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, h.svc.Outbox())
	}
}

func (h *AdminHandlers) ReplayOutbox() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"replayed": h.svc.ReplayOutbox()})
	}
}
