package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const ssePingInterval = 30 * time.Second

// handleFlowEvents streams flow transitions as server-sent events. The
// stream opens with a "hello" event carrying the current step and ends
// after the flow's session completes.
func handleFlowEvents(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := flowFrom(r)

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		ch := broker.Subscribe(c.ID())
		defer broker.Unsubscribe(c.ID(), ch)

		seq := 0
		send := func(event string, data []byte) {
			seq++
			fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", seq, event, data)
			flusher.Flush()
		}

		hello, _ := json.Marshal(FlowEvent{Type: "hello", Step: c.Step().String(), Status: string(c.Status())})
		send("hello", hello)

		ping := time.NewTicker(ssePingInterval)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data, ok := <-ch:
				if !ok {
					return
				}
				send("flow", data)
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
