package httptransport

import (
	"net/http"

	"chat-casino/internal/app/wager"
)

type RatingHandlers struct {
	svc *wager.Service
}

func NewRatingHandlers(svc *wager.Service) *RatingHandlers {
	return &RatingHandlers{svc: svc}
}

func (h *RatingHandlers) Duels() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.DuelRating(r.Context(), ParseLimit(r, 10, 100))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *RatingHandlers) Banker() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.BankerRating(r.Context(), ParseLimit(r, 10, 100))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
