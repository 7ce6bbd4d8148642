package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/hotseat/internal/hotseat"
	"github.com/playperu/hotseat/internal/setupflow"
)

// WSCommand is one client message on the flow socket. Fields not used by
// Op are ignored.
type WSCommand struct {
	Op            string   `json:"op"`
	PlayerIDs     []string `json:"playerIds,omitempty"`
	Continue      bool     `json:"continue,omitempty"`
	PackID        string   `json:"packId,omitempty"`
	Count         int      `json:"count,omitempty"`
	SelectionMode string   `json:"selectionMode,omitempty"`
	VerdictMode   string   `json:"verdictMode,omitempty"`
	QuestionID    string   `json:"questionId,omitempty"`
	QuestionIDs   []string `json:"questionIds,omitempty"`
}

// WSMessage is sent back for every command and for every broker event.
type WSMessage struct {
	Type  string        `json:"type"`
	Flow  *FlowResponse `json:"flow,omitempty"`
	Event *FlowEvent    `json:"event,omitempty"`
	Error string        `json:"error,omitempty"`
	Code  int           `json:"code,omitempty"`
}

var errUnknownOp = fmt.Errorf("%w: unknown op", hotseat.ErrInvalidSelection)

func dispatchCommand(ctx context.Context, c *setupflow.Controller, roster setupflow.Roster, cmd WSCommand) error {
	switch cmd.Op {
	case "screen":
		return nil
	case "players":
		return c.SelectPlayersByID(ctx, cmd.PlayerIDs, cmd.Continue)
	case "toggle_player":
		if len(cmd.PlayerIDs) != 1 {
			return hotseat.ErrInvalidSelection
		}
		players, err := roster.CalibratedPlayers(ctx)
		if err != nil {
			return err
		}
		for _, p := range players {
			if p.ID == cmd.PlayerIDs[0] {
				return c.TogglePlayer(p)
			}
		}
		return hotseat.ErrNotFound
	case "continue":
		return c.ContinueFromPlayers()
	case "pack":
		return c.SelectPackByID(ctx, cmd.PackID)
	case "count":
		return c.ChooseCount(cmd.Count)
	case "modes":
		return c.ChooseModes(ctx, hotseat.SelectionMode(cmd.SelectionMode), hotseat.VerdictMode(cmd.VerdictMode))
	case "toggle_question":
		return c.ToggleQuestion(cmd.QuestionID)
	case "manual":
		return c.ConfirmManualSelection(ctx, cmd.QuestionIDs)
	case "back":
		return c.Back()
	case "restart":
		c.Restart()
		return nil
	case "cancel":
		c.Cancel()
		return nil
	default:
		return errUnknownOp
	}
}

func wsError(logger *slog.Logger, err error) WSMessage {
	code := errorStatus(err)
	if code == http.StatusInternalServerError {
		logger.Error("websocket command failed", "error", err)
		return WSMessage{Type: "error", Error: "internal error", Code: code}
	}
	return WSMessage{Type: "error", Error: err.Error(), Code: code}
}

// handleFlowWS drives a flow over a websocket. Each command is answered with
// the resulting screen or an error; transitions published by other clients
// of the same flow are forwarded as events.
func handleFlowWS(logger *slog.Logger, roster setupflow.Roster, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := flowFrom(r)
		prefs := requestLanguages(r)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Minute)
		defer cancel()

		out := make(chan WSMessage, 16)
		events := broker.Subscribe(c.ID())
		defer broker.Unsubscribe(c.ID(), events)

		go func() {
			defer cancel()
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-out:
					if err := wsjson.Write(ctx, conn, msg); err != nil {
						logger.Debug("websocket write failed", "error", err)
						return
					}
				case data, ok := <-events:
					if !ok {
						conn.Close(websocket.StatusNormalClosure, "flow closed")
						return
					}
					var ev FlowEvent
					if err := json.Unmarshal(data, &ev); err != nil {
						continue
					}
					if err := wsjson.Write(ctx, conn, WSMessage{Type: "event", Event: &ev}); err != nil {
						logger.Debug("websocket write failed", "error", err)
						return
					}
				}
			}
		}()

		for {
			var cmd WSCommand
			if err := wsjson.Read(ctx, conn, &cmd); err != nil {
				logger.Debug("websocket read ended", "error", err)
				return
			}

			msg := WSMessage{Type: "screen"}
			if err := dispatchCommand(ctx, c, roster, cmd); err != nil {
				msg = wsError(logger, err)
			} else if v, err := c.Screen(ctx); err != nil {
				msg = wsError(logger, err)
			} else {
				resp := newFlowResponse(v, prefs)
				msg.Flow = &resp
			}

			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}
}
