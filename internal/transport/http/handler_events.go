package httptransport

import (
	"net/http"
	"time"

	"chat-casino/internal/stream"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

var ssePingInterval = 15 * time.Second

// EventsSSEHandler streams game events, replaying anything newer than
// Last-Event-ID first.
func EventsSSEHandler(buf *stream.EventBuffer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			WriteHTTPError(w, http.StatusInternalServerError, "stream_not_supported")
			return
		}

		metricSSEConnectionsTotal.Add(1)
		metricSSEConnectionsActive.Add(1)
		defer metricSSEConnectionsActive.Add(-1)

		stream.SetSSEHeaders(w)
		reqID := chimw.GetReqID(r.Context())
		log.Info().Str("request_id", reqID).Msg("sse stream opened")

		// Subscribe before replaying so nothing lands in between.
		ch := buf.Subscribe()
		defer buf.Unsubscribe(ch)

		lastEventID := r.Header.Get("Last-Event-ID")
		if lastEventID == "" {
			lastEventID = r.URL.Query().Get("last_event_id")
		}
		replayed := lastEventID
		for _, ev := range buf.ReplayAfter(lastEventID) {
			if err := stream.WriteSSE(w, ev); err != nil {
				return
			}
			logSSEEvent(reqID, "replay", ev)
			replayed = ev.EventID
		}
		flusher.Flush()

		ticker := time.NewTicker(ssePingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				log.Info().Str("request_id", reqID).Err(r.Context().Err()).Msg("sse stream closed")
				return
			case ev, ok := <-ch:
				if !ok {
					log.Info().Str("request_id", reqID).Msg("sse stream channel closed")
					return
				}
				if replayed != "" && !stream.After(ev.EventID, replayed) {
					continue
				}
				if err := stream.WriteSSE(w, ev); err != nil {
					return
				}
				logSSEEvent(reqID, "live", ev)
				flusher.Flush()
			case <-ticker.C:
				now := time.Now().UnixMilli()
				ping := stream.StreamEvent{Event: "ping", ServerTS: now, Data: map[string]any{"ts": now}}
				if err := stream.WriteSSE(w, ping); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func logSSEEvent(reqID, source string, ev stream.StreamEvent) {
	log.Debug().
		Str("request_id", reqID).
		Str("event", ev.Event).
		Str("event_id", ev.EventID).
		Str("source", source).
		Int64("server_ts", ev.ServerTS).
		Msg("sse event sent")
}
