package server

import (
	"encoding/json"
	"sync"
)

// FlowEvent is the payload published to flow subscribers.
type FlowEvent struct {
	Type      string `json:"type"`
	Seq       uint64 `json:"seq,omitempty"`
	From      string `json:"from,omitempty"`
	Step      string `json:"step,omitempty"`
	Status    string `json:"status,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// Broker is an in-process pub/sub for flow events, keyed by flow ID.
// Transition events carry the flow's sequence number; the broker drops any
// that arrive after a newer one so subscribers never end on a stale step.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan []byte]struct{}
	last map[string]uint64
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
		last: make(map[string]uint64),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the
// given flow. The channel is closed when the flow is closed.
func (b *Broker) Subscribe(flowID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[flowID] == nil {
		b.subs[flowID] = make(map[chan []byte]struct{})
	}
	b.subs[flowID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the flow's subscribers. It is a no-op
// once the flow has been closed.
func (b *Broker) Unsubscribe(flowID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[flowID], ch)
	if len(b.subs[flowID]) == 0 {
		delete(b.subs, flowID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given flow.
func (b *Broker) Publish(flowID string, event FlowEvent) {
	data, _ := json.Marshal(event)
	b.mu.Lock()
	defer b.mu.Unlock()
	if event.Seq > 0 {
		if event.Seq <= b.last[flowID] {
			return
		}
		b.last[flowID] = event.Seq
	}
	for ch := range b.subs[flowID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
}

// Close ends the flow's stream: every subscriber channel is closed after
// the events already queued on it, and the flow is forgotten.
func (b *Broker) Close(flowID string) {
	b.mu.Lock()
	subs := b.subs[flowID]
	delete(b.subs, flowID)
	delete(b.last, flowID)
	b.mu.Unlock()
	for ch := range subs {
		close(ch)
	}
}

func (b *Broker) subscribers(flowID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[flowID])
}
