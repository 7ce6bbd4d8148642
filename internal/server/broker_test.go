package server

import (
	"encoding/json"
	"testing"
)

func TestBrokerScopesEventsByFlow(t *testing.T) {
	b := NewBroker()

	a := b.Subscribe("flow-a")
	other := b.Subscribe("flow-b")

	b.Publish("flow-a", FlowEvent{Type: "transition", Step: "pack_selection"})

	select {
	case data := <-a:
		var ev FlowEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("decoding event: %v", err)
		}
		if ev.Type != "transition" || ev.Step != "pack_selection" {
			t.Errorf("event = %+v", ev)
		}
	default:
		t.Fatal("subscriber of flow-a got nothing")
	}

	select {
	case data := <-other:
		t.Fatalf("flow-b received %s", data)
	default:
	}

	b.Unsubscribe("flow-a", a)
	b.Unsubscribe("flow-b", other)
	if n := b.subscribers("flow-a"); n != 0 {
		t.Errorf("flow-a subscribers = %d after unsubscribe", n)
	}
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("f")
	defer b.Unsubscribe("f", ch)

	for range cap(ch) + 5 {
		b.Publish("f", FlowEvent{Type: "transition"})
	}
	if len(ch) != cap(ch) {
		t.Errorf("buffered = %d, want %d", len(ch), cap(ch))
	}
}

func TestBrokerDropsStaleTransitions(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("f")
	defer b.Unsubscribe("f", ch)

	b.Publish("f", FlowEvent{Type: "transition", Seq: 2, Step: "count_selection"})
	b.Publish("f", FlowEvent{Type: "transition", Seq: 1, Step: "pack_selection"})
	b.Publish("f", FlowEvent{Type: "session_completed"})

	if len(ch) != 2 {
		t.Fatalf("buffered = %d, want 2", len(ch))
	}
	var ev FlowEvent
	if err := json.Unmarshal(<-ch, &ev); err != nil {
		t.Fatalf("decoding event: %v", err)
	}
	if ev.Seq != 2 || ev.Step != "count_selection" {
		t.Errorf("first event = %+v", ev)
	}
	if err := json.Unmarshal(<-ch, &ev); err != nil {
		t.Fatalf("decoding event: %v", err)
	}
	if ev.Type != "session_completed" {
		t.Errorf("second event = %+v", ev)
	}
}

func TestBrokerCloseEndsSubscriptions(t *testing.T) {
	b := NewBroker()
	a1 := b.Subscribe("flow-a")
	a2 := b.Subscribe("flow-a")
	other := b.Subscribe("flow-b")
	defer b.Unsubscribe("flow-b", other)

	b.Publish("flow-a", FlowEvent{Type: "session_completed", SessionID: "s1"})
	b.Close("flow-a")

	for _, ch := range []chan []byte{a1, a2} {
		if _, ok := <-ch; !ok {
			t.Fatal("queued event lost on close")
		}
		if _, ok := <-ch; ok {
			t.Fatal("channel still open after close")
		}
	}
	if n := b.subscribers("flow-a"); n != 0 {
		t.Errorf("flow-a subscribers = %d after close", n)
	}
	if n := b.subscribers("flow-b"); n != 1 {
		t.Errorf("flow-b subscribers = %d, want 1", n)
	}

	// Late unsubscribes and publishes are harmless.
	b.Unsubscribe("flow-a", a1)
	b.Publish("flow-a", FlowEvent{Type: "transition", Seq: 1})
	b.Close("flow-a")
}
