package stream

import (
	"expvar"
	"strconv"
	"sync"

	"chat-casino/internal/game"
)

var (
	metricStreamEventsTotal  = expvar.NewInt("stream_events_total")
	metricStreamDroppedTotal = expvar.NewInt("stream_dropped_total")
)

type StreamEvent struct {
	EventID  string `json:"event_id"`
	Event    string `json:"event"`
	ServerTS int64  `json:"server_ts"`
	Data     any    `json:"data"`
}

// EventBuffer keeps the most recent engine events for replay and fans new
// ones out to subscribers. Slow subscribers miss events instead of blocking
// the engines.
type EventBuffer struct {
	mu       sync.Mutex
	nextID   int64
	max      int
	events   []StreamEvent
	watchers map[chan StreamEvent]struct{}
	closed   bool
}

func NewEventBuffer(max int) *EventBuffer {
	if max <= 0 {
		max = 500
	}
	return &EventBuffer{
		max:      max,
		watchers: map[chan StreamEvent]struct{}{},
	}
}

// Emit implements game.Emitter.
func (b *EventBuffer) Emit(ev game.Event) {
	b.Append(ev.Type, ev.At.UnixMilli(), ev.Payload)
}

func (b *EventBuffer) Append(event string, serverTS int64, data any) StreamEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return StreamEvent{}
	}
	b.nextID++
	ev := StreamEvent{
		EventID:  strconv.FormatInt(b.nextID, 10),
		Event:    event,
		ServerTS: serverTS,
		Data:     data,
	}
	b.events = append(b.events, ev)
	if len(b.events) > b.max {
		b.events = b.events[len(b.events)-b.max:]
	}
	metricStreamEventsTotal.Add(1)
	for ch := range b.watchers {
		select {
		case ch <- ev:
		default:
			metricStreamDroppedTotal.Add(1)
		}
	}
	return ev
}

// ReplayAfter returns buffered events newer than lastEventID, or all of them
// when the id is empty or malformed.
func (b *EventBuffer) ReplayAfter(lastEventID string) []StreamEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	last, err := strconv.ParseInt(lastEventID, 10, 64)
	if lastEventID == "" || err != nil {
		out := make([]StreamEvent, len(b.events))
		copy(out, b.events)
		return out
	}
	out := make([]StreamEvent, 0, len(b.events))
	for _, ev := range b.events {
		id, _ := strconv.ParseInt(ev.EventID, 10, 64)
		if id > last {
			out = append(out, ev)
		}
	}
	return out
}

func (b *EventBuffer) Subscribe() chan StreamEvent {
	ch := make(chan StreamEvent, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.watchers[ch] = struct{}{}
	return ch
}

func (b *EventBuffer) Unsubscribe(ch chan StreamEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.watchers[ch]; ok {
		delete(b.watchers, ch)
		close(ch)
	}
}

func (b *EventBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.watchers {
		close(ch)
		delete(b.watchers, ch)
	}
}

// After reports whether event id a was issued later than b. Malformed ids
// sort first.
func After(a, b string) bool {
	ai, _ := strconv.ParseInt(a, 10, 64)
	bi, _ := strconv.ParseInt(b, 10, 64)
	return ai > bi
}
