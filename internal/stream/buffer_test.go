package stream

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chat-casino/internal/game"
)

func TestEventBufferReplayAfter(t *testing.T) {
	buf := NewEventBuffer(3)
	for i := 0; i < 5; i++ {
		buf.Append("bet_placed", int64(i), map[string]int{"i": i})
	}
	all := buf.ReplayAfter("")
	if len(all) != 3 || all[0].EventID != "3" {
		t.Fatalf("unexpected replay %+v", all)
	}
	tail := buf.ReplayAfter("4")
	if len(tail) != 1 || tail[0].EventID != "5" {
		t.Fatalf("unexpected tail %+v", tail)
	}
	if got := buf.ReplayAfter("bogus"); len(got) != 3 {
		t.Fatalf("malformed id should replay all, got %d", len(got))
	}
}

func TestEventBufferEmitFansOut(t *testing.T) {
	buf := NewEventBuffer(10)
	ch := buf.Subscribe()
	defer buf.Unsubscribe(ch)

	at := time.UnixMilli(1700000000000)
	buf.Emit(game.Event{Type: game.EventRoundLocked, At: at, Payload: game.RoundLockedPayload{RoundID: 3, CountdownSeconds: 60}})
	select {
	case ev := <-ch:
		if ev.Event != game.EventRoundLocked || ev.ServerTS != at.UnixMilli() {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("subscriber did not receive event")
	}
}

func TestEventBufferCloseClosesSubscribers(t *testing.T) {
	buf := NewEventBuffer(10)
	ch := buf.Subscribe()
	buf.Close()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	if ev := buf.Append("x", 0, nil); ev.EventID != "" {
		t.Fatalf("append after close should be ignored")
	}
	late := buf.Subscribe()
	if _, ok := <-late; ok {
		t.Fatalf("subscribe after close should return closed channel")
	}
}

func TestWriteSSE(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSSEHeaders(rec)
	if err := WriteSSE(rec, StreamEvent{EventID: "7", Event: "duel_settled", Data: map[string]int{"duel_id": 1}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "id: 7\nevent: duel_settled\ndata: ") || !strings.HasSuffix(body, "\n\n") {
		t.Fatalf("unexpected frame %q", body)
	}
	if rec.Header().Get("Content-Type") != "text/event-stream" {
		t.Fatalf("missing sse content type")
	}
}

func TestAfterComparesNumerically(t *testing.T) {
	if !After("10", "9") {
		t.Fatalf("10 should be after 9")
	}
	if After("3", "3") || After("", "1") {
		t.Fatalf("unexpected ordering")
	}
	if !After("1", "bogus") {
		t.Fatalf("malformed id should sort first")
	}
}
