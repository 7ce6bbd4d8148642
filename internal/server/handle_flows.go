package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/playperu/hotseat/internal/hotseat"
	"github.com/playperu/hotseat/internal/setupflow"
)

type PlayersRequest struct {
	PlayerIDs []string `json:"playerIds"`
	Continue  bool     `json:"continue"`
}

type PackRequest struct {
	PackID string `json:"packId"`
}

type CountRequest struct {
	Count int `json:"count"`
}

type ModesRequest struct {
	SelectionMode string `json:"selectionMode"`
	VerdictMode   string `json:"verdictMode"`
}

type ManualRequest struct {
	QuestionIDs []string `json:"questionIds"`
}

type ToggleQuestionRequest struct {
	QuestionID string `json:"questionId"`
}

type CancelResponse struct {
	Status string `json:"status"`
}

// writeScreen renders the flow's current screen.
func writeScreen(w http.ResponseWriter, r *http.Request, logger *slog.Logger, c *setupflow.Controller, status int) {
	v, err := c.Screen(r.Context())
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	writeJSON(w, status, newFlowResponse(v, requestLanguages(r)))
}

func handleCreateFlow(logger *slog.Logger, flows *FlowRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeScreen(w, r, logger, flows.Create(), http.StatusCreated)
	}
}

func handleGetFlow(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeScreen(w, r, logger, flowFrom(r), http.StatusOK)
	}
}

func handleCancelFlow(flows *FlowRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := flows.Cancel(flowFrom(r).ID()); err != nil {
			writeError(w, http.StatusNotFound, "flow not found")
			return
		}
		writeJSON(w, http.StatusOK, CancelResponse{Status: string(setupflow.StatusAborted)})
	}
}

// flowAction decodes a T from the request body, applies it to the flow and
// responds with the resulting screen.
func flowAction[T any](logger *slog.Logger, apply func(ctx context.Context, c *setupflow.Controller, req T) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req T
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		c := flowFrom(r)
		if err := apply(r.Context(), c, req); err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeScreen(w, r, logger, c, http.StatusOK)
	}
}

// flowCommand is flowAction for commands without a body.
func flowCommand(logger *slog.Logger, apply func(c *setupflow.Controller) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := flowFrom(r)
		if err := apply(c); err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeScreen(w, r, logger, c, http.StatusOK)
	}
}

func applyPlayers(ctx context.Context, c *setupflow.Controller, req PlayersRequest) error {
	return c.SelectPlayersByID(ctx, req.PlayerIDs, req.Continue)
}

func applyPack(ctx context.Context, c *setupflow.Controller, req PackRequest) error {
	return c.SelectPackByID(ctx, req.PackID)
}

func applyCount(_ context.Context, c *setupflow.Controller, req CountRequest) error {
	return c.ChooseCount(req.Count)
}

func applyModes(ctx context.Context, c *setupflow.Controller, req ModesRequest) error {
	return c.ChooseModes(ctx, hotseat.SelectionMode(req.SelectionMode), hotseat.VerdictMode(req.VerdictMode))
}

func applyManual(ctx context.Context, c *setupflow.Controller, req ManualRequest) error {
	return c.ConfirmManualSelection(ctx, req.QuestionIDs)
}

func applyToggleQuestion(_ context.Context, c *setupflow.Controller, req ToggleQuestionRequest) error {
	return c.ToggleQuestion(req.QuestionID)
}

func applyBack(c *setupflow.Controller) error {
	return c.Back()
}

func applyRestart(c *setupflow.Controller) error {
	c.Restart()
	return nil
}
