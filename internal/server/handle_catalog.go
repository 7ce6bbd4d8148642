package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func handleListPlayers(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := store.CalibratedPlayers(r.Context())
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, playerInfos(players))
	}
}

func handleListPacks(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		packs, err := store.AllPacks(r.Context())
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, packInfos(packs, requestLanguages(r)))
	}
}

func handlePackQuestions(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, err := store.PackQuestions(r.Context(), chi.URLParam(r, "packID"))
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, questionInfos(questions))
	}
}
