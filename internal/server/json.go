package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/playperu/hotseat/internal/hotseat"
	"github.com/playperu/hotseat/internal/setupflow"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// errorStatus maps domain errors onto HTTP status codes. Unknown errors are
// internal.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, setupflow.ErrValidationBlocked):
		return http.StatusConflict
	case errors.Is(err, hotseat.ErrInvalidSelection):
		return http.StatusUnprocessableEntity
	case errors.Is(err, setupflow.ErrFlowClosed):
		return http.StatusGone
	case errors.Is(err, hotseat.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
