package stream

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

var sseHeaders = [][2]string{
	{"Content-Type", "text/event-stream"},
	{"Cache-Control", "no-cache, no-transform"},
	{"Connection", "keep-alive"},
	{"X-Accel-Buffering", "no"},
	{"X-Content-Type-Options", "nosniff"},
}

// WriteSSE frames ev as a single server-sent event. Events without an id
// (pings) omit the id line so clients keep their resume position.
func WriteSSE(w io.Writer, ev StreamEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if ev.EventID != "" {
		buf.WriteString("id: " + ev.EventID + "\n")
	}
	buf.WriteString("event: " + ev.Event + "\n")
	buf.WriteString("data: ")
	buf.Write(data)
	buf.WriteString("\n\n")
	_, err = w.Write(buf.Bytes())
	return err
}

func SetSSEHeaders(w http.ResponseWriter) {
	h := w.Header()
	for _, kv := range sseHeaders {
		h.Set(kv[0], kv[1])
	}
}
