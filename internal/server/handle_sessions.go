package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func handleGetSession(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := store.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, newSessionResponse(sess))
	}
}

// handleCompleteSession is called by gameplay when a session ends. The flow
// that started it is released; setup returns to its caller.
func handleCompleteSession(logger *slog.Logger, store Store, flows *FlowRegistry, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := store.CompleteSession(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}

		if flowID, ok := flows.ReleaseSession(sess.ID); ok {
			broker.Publish(flowID, FlowEvent{
				Type:      "session_completed",
				SessionID: sess.ID,
			})
			broker.Close(flowID)
			logger.Info("session completed", "session_id", sess.ID, "flow_id", flowID)
		}

		writeJSON(w, http.StatusOK, newSessionResponse(sess))
	}
}
