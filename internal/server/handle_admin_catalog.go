package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/thoas/go-funk"

	"github.com/playperu/hotseat/internal/hotseat"
)

type CreatePlayerRequest struct {
	Name       string `json:"name"`
	Calibrated bool   `json:"calibrated"`
}

type CalibrationRequest struct {
	Calibrated bool `json:"calibrated"`
}

// CreatePackRequest carries pack names keyed by locale and the question
// texts in play order.
type CreatePackRequest struct {
	Names     map[string]string `json:"names"`
	Questions []string          `json:"questions"`
}

func handleAdminCreatePlayer(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePlayerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		p, err := store.CreatePlayer(r.Context(), req.Name, req.Calibrated)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		logger.Info("player created", "player_id", p.ID, "admin", adminFrom(r).Email)
		writeJSON(w, http.StatusCreated, playerInfos([]hotseat.Player{p})[0])
	}
}

func handleAdminSetCalibration(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CalibrationRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		p, err := store.SetCalibrated(r.Context(), chi.URLParam(r, "playerID"), req.Calibrated)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, playerInfos([]hotseat.Player{p})[0])
	}
}

func handleAdminCreatePack(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePackRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if strings.TrimSpace(req.Names[hotseat.DefaultLocale]) == "" {
			writeError(w, http.StatusBadRequest, "names."+hotseat.DefaultLocale+" is required")
			return
		}

		trimmed := funk.Map(req.Questions, strings.TrimSpace).([]string)
		questions := funk.Filter(trimmed, func(q string) bool { return q != "" }).([]string)
		if len(questions) == 0 {
			writeError(w, http.StatusBadRequest, "at least one question is required")
			return
		}

		pack, err := store.CreatePack(r.Context(), req.Names, questions)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		logger.Info("pack created", "pack_id", pack.ID, "questions", pack.QuestionCount)
		writeJSON(w, http.StatusCreated, packInfo(pack, requestLanguages(r)))
	}
}

func handleAdminDeletePack(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "packID")
		if err := store.DeletePack(r.Context(), id); err != nil {
			writeDomainError(w, logger, err)
			return
		}
		logger.Info("pack deleted", "pack_id", id)
		w.WriteHeader(http.StatusNoContent)
	}
}
