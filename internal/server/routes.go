package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps, spaDir string) {
	store, admin, flows, broker := deps.Store, deps.Admin, deps.Flows, deps.Broker

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Hot Seat API", "/openapi.json", "/docs"))
	if deps.Health != nil {
		r.Mount("/healthz", deps.Health)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/players", handleListPlayers(logger, store))
		r.Get("/packs", handleListPacks(logger, store))
		r.Get("/packs/{packID}/questions", handlePackQuestions(logger, store))

		r.Post("/flows", handleCreateFlow(logger, flows))
		r.Route("/flows/{flowID}", func(r chi.Router) {
			r.Use(flowMiddleware(flows))
			r.Get("/", handleGetFlow(logger))
			r.Delete("/", handleCancelFlow(flows))
			r.Put("/players", flowAction(logger, applyPlayers))
			r.Put("/pack", flowAction(logger, applyPack))
			r.Put("/count", flowAction(logger, applyCount))
			r.Put("/modes", flowAction(logger, applyModes))
			r.Put("/manual", flowAction(logger, applyManual))
			r.Post("/manual/toggle", flowAction(logger, applyToggleQuestion))
			r.Post("/back", flowCommand(logger, applyBack))
			r.Post("/restart", flowCommand(logger, applyRestart))
			r.Get("/events", handleFlowEvents(broker))
			r.Get("/ws", handleFlowWS(logger, store, broker))
		})

		r.Get("/sessions/{sessionID}", handleGetSession(logger, store))
		r.Post("/sessions/{sessionID}/complete", handleCompleteSession(logger, store, flows, broker))

		r.Post("/admin/login", handleAdminLogin(logger, admin))
		r.Post("/admin/logout", handleAdminLogout(admin))
		r.Group(func(r chi.Router) {
			r.Use(requireAdmin(admin))
			r.Get("/admin/me", handleAdminMe())
			r.Post("/admin/players", handleAdminCreatePlayer(logger, store))
			r.Put("/admin/players/{playerID}/calibration", handleAdminSetCalibration(logger, store))
			r.Post("/admin/packs", handleAdminCreatePack(logger, store))
			r.Delete("/admin/packs/{packID}", handleAdminDeletePack(logger, store))
		})
	})

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}
