package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/hotseat/internal/handler/health"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type flowParams struct {
	FlowID string `path:"flowID"`
}

type packParams struct {
	PackID string `path:"packID"`
}

type sessionParams struct {
	SessionID string `path:"sessionID"`
}

type playerParams struct {
	PlayerID string `path:"playerID"`
}

type langParams struct {
	Lang string `query:"lang" description:"Preferred locale, overrides Accept-Language."`
}

type playersOp struct {
	flowParams
	PlayersRequest
}

type packOp struct {
	flowParams
	PackRequest
}

type countOp struct {
	flowParams
	CountRequest
}

type modesOp struct {
	flowParams
	ModesRequest
}

type manualOp struct {
	flowParams
	ManualRequest
}

type toggleQuestionOp struct {
	flowParams
	ToggleQuestionRequest
}

type calibrationOp struct {
	playerParams
	CalibrationRequest
}

type operation struct {
	method, path, summary string
	req                   any
	resp                  any
	status                int
	errors                []int
	contentType           string
}

var flowErrors = []int{http.StatusNotFound, http.StatusConflict, http.StatusGone, http.StatusUnprocessableEntity}

func apiOperations() []operation {
	return []operation{
		{method: http.MethodGet, path: "/healthz", summary: "Health check", resp: map[string]health.Result{}},

		{method: http.MethodGet, path: "/api/players", summary: "List calibrated players", resp: []PlayerInfo{}},
		{method: http.MethodGet, path: "/api/packs", summary: "List question packs", req: langParams{}, resp: []PackInfo{}},
		{method: http.MethodGet, path: "/api/packs/{packID}/questions", summary: "List questions in a pack", req: packParams{}, resp: []QuestionInfo{}, errors: []int{http.StatusNotFound}},

		{method: http.MethodPost, path: "/api/flows", summary: "Start a setup flow", req: langParams{}, resp: FlowResponse{}, status: http.StatusCreated},
		{method: http.MethodGet, path: "/api/flows/{flowID}", summary: "Current setup screen", req: flowParams{}, resp: FlowResponse{}, errors: []int{http.StatusNotFound}},
		{method: http.MethodDelete, path: "/api/flows/{flowID}", summary: "Cancel a setup flow", req: flowParams{}, resp: CancelResponse{}, errors: []int{http.StatusNotFound}},
		{method: http.MethodPut, path: "/api/flows/{flowID}/players", summary: "Select players", req: playersOp{}, resp: FlowResponse{}, errors: flowErrors},
		{method: http.MethodPut, path: "/api/flows/{flowID}/pack", summary: "Select question pack", req: packOp{}, resp: FlowResponse{}, errors: flowErrors},
		{method: http.MethodPut, path: "/api/flows/{flowID}/count", summary: "Choose question count", req: countOp{}, resp: FlowResponse{}, errors: flowErrors},
		{method: http.MethodPut, path: "/api/flows/{flowID}/modes", summary: "Choose selection and verdict modes", req: modesOp{}, resp: FlowResponse{}, errors: flowErrors},
		{method: http.MethodPost, path: "/api/flows/{flowID}/manual/toggle", summary: "Toggle a manually picked question", req: toggleQuestionOp{}, resp: FlowResponse{}, errors: flowErrors},
		{method: http.MethodPut, path: "/api/flows/{flowID}/manual", summary: "Confirm manual question selection", req: manualOp{}, resp: FlowResponse{}, errors: flowErrors},
		{method: http.MethodPost, path: "/api/flows/{flowID}/back", summary: "Go back one step", req: flowParams{}, resp: FlowResponse{}, errors: flowErrors},
		{method: http.MethodPost, path: "/api/flows/{flowID}/restart", summary: "Restart the flow from player selection", req: flowParams{}, resp: FlowResponse{}, errors: []int{http.StatusNotFound}},
		{method: http.MethodGet, path: "/api/flows/{flowID}/events", summary: "Flow transitions as server-sent events", req: flowParams{}, contentType: "text/event-stream"},
		{method: http.MethodGet, path: "/api/flows/{flowID}/ws", summary: "Drive the flow over a websocket", req: flowParams{}, status: http.StatusSwitchingProtocols, contentType: "text/plain"},

		{method: http.MethodGet, path: "/api/sessions/{sessionID}", summary: "Get a game session", req: sessionParams{}, resp: SessionResponse{}, errors: []int{http.StatusNotFound}},
		{method: http.MethodPost, path: "/api/sessions/{sessionID}/complete", summary: "Mark a game session completed", req: sessionParams{}, resp: SessionResponse{}, errors: []int{http.StatusNotFound}},

		{method: http.MethodPost, path: "/api/admin/login", summary: "Admin login", req: AdminLoginRequest{}, resp: AdminMeResponse{}, errors: []int{http.StatusBadRequest, http.StatusUnauthorized}},
		{method: http.MethodPost, path: "/api/admin/logout", summary: "Admin logout", resp: StatusResponse{}},
		{method: http.MethodGet, path: "/api/admin/me", summary: "Current admin", resp: AdminMeResponse{}, errors: []int{http.StatusUnauthorized}},
		{method: http.MethodPost, path: "/api/admin/players", summary: "Create a player", req: CreatePlayerRequest{}, resp: PlayerInfo{}, status: http.StatusCreated, errors: []int{http.StatusBadRequest, http.StatusUnauthorized}},
		{method: http.MethodPut, path: "/api/admin/players/{playerID}/calibration", summary: "Set player calibration", req: calibrationOp{}, resp: PlayerInfo{}, errors: []int{http.StatusNotFound, http.StatusUnauthorized}},
		{method: http.MethodPost, path: "/api/admin/packs", summary: "Create a question pack", req: CreatePackRequest{}, resp: PackInfo{}, status: http.StatusCreated, errors: []int{http.StatusBadRequest, http.StatusUnauthorized}},
		{method: http.MethodDelete, path: "/api/admin/packs/{packID}", summary: "Delete a question pack", req: packParams{}, status: http.StatusNoContent, errors: []int{http.StatusNotFound, http.StatusUnauthorized}},
	}
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Hot Seat API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Setup flow and catalog API for the Hot Seat party game.")

	for _, op := range apiOperations() {
		oc, err := r.NewOperationContext(op.method, op.path)
		if err != nil {
			continue
		}
		oc.SetSummary(op.summary)
		if op.req != nil {
			oc.AddReqStructure(op.req)
		}

		status := op.status
		if status == 0 {
			status = http.StatusOK
		}
		if op.contentType != "" {
			oc.AddRespStructure(nil, openapi.WithHTTPStatus(status), openapi.WithContentType(op.contentType))
		} else {
			oc.AddRespStructure(op.resp, openapi.WithHTTPStatus(status))
		}
		for _, code := range op.errors {
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(code))
		}
		_ = r.AddOperation(oc)
	}

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
