package httptransport

import (
	"encoding/json"
	"net/http"

	"chat-casino/internal/app/wager"
)

type DuelHandlers struct {
	svc *wager.Service
}

func NewDuelHandlers(svc *wager.Service) *DuelHandlers {
	return &DuelHandlers{svc: svc}
}

type duelActorBody struct {
	UserID int64 `json:"user_id"`
}

func decodeActor(r *http.Request) (int64, bool) {
	var body duelActorBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID <= 0 {
		return 0, false
	}
	return body.UserID, true
}

func (h *DuelHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			CreatorID int64 `json:"creator_id"`
			Bet       int64 `json:"bet"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.CreatorID <= 0 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		d, err := h.svc.CreateDuel(r.Context(), body.CreatorID, body.Bet)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, d)
	}
}

func (h *DuelHandlers) ListOpen() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := h.svc.ListOpenDuels()
		limit := ParseLimit(r, 50, 500)
		if len(items) > limit {
			items = items[:limit]
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

func (h *DuelHandlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		duelID, ok := parseIDParam(r, "duel_id")
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		d, err := h.svc.GetDuel(r.Context(), duelID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func (h *DuelHandlers) Join() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		duelID, ok := parseIDParam(r, "duel_id")
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		userID, ok := decodeActor(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		d, err := h.svc.JoinDuel(r.Context(), userID, duelID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func (h *DuelHandlers) Cancel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		duelID, ok := parseIDParam(r, "duel_id")
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		userID, ok := decodeActor(r)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		d, err := h.svc.CancelDuel(r.Context(), userID, duelID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func (h *DuelHandlers) UserHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := parseIDParam(r, "user_id")
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		resp, err := h.svc.UserDuelHistory(r.Context(), userID, ParseLimit(r, 10, 50))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
