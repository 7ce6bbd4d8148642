package server

import (
	"github.com/thoas/go-funk"
	"golang.org/x/text/language"

	"github.com/playperu/hotseat/internal/hotseat"
	"github.com/playperu/hotseat/internal/setupflow"
)

type PlayerInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Calibrated bool   `json:"calibrated"`
}

type PackInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	QuestionCount int    `json:"questionCount"`
}

type QuestionInfo struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Text     string `json:"text"`
}

// FlowResponse is the JSON projection of a setup flow.
type FlowResponse struct {
	ID                 string                  `json:"id"`
	Step               string                  `json:"step"`
	Status             string                  `json:"status"`
	CanContinue        bool                    `json:"canContinue"`
	CanGoBack          bool                    `json:"canGoBack"`
	Players            []PlayerInfo            `json:"players"`
	Pack               *PackInfo               `json:"pack"`
	CountOptions       []setupflow.CountOption `json:"countOptions"`
	QuestionCount      *int                    `json:"questionCount"`
	QuestionsPerPlayer int                     `json:"questionsPerPlayer"`
	SelectionMode      string                  `json:"selectionMode,omitempty"`
	VerdictMode        string                  `json:"verdictMode,omitempty"`
	QuestionIDs        []string                `json:"questionIds"`
	SessionID          string                  `json:"sessionId,omitempty"`
	AvailablePlayers   []PlayerInfo            `json:"availablePlayers,omitempty"`
	AvailablePacks     []PackInfo              `json:"availablePacks,omitempty"`
}

type TurnInfo struct {
	Number     int    `json:"number"`
	PlayerID   string `json:"playerId"`
	QuestionID string `json:"questionId"`
}

type SessionResponse struct {
	ID                 string     `json:"id"`
	Status             string     `json:"status"`
	PlayerIDs          []string   `json:"playerIds"`
	QuestionIDs        []string   `json:"questionIds"`
	QuestionsPerPlayer int        `json:"questionsPerPlayer"`
	VerdictMode        string     `json:"verdictMode"`
	Turns              []TurnInfo `json:"turns"`
	CreatedAt          string     `json:"createdAt"`
	CompletedAt        *string    `json:"completedAt"`
}

func playerInfos(players []hotseat.Player) []PlayerInfo {
	return funk.Map(players, func(p hotseat.Player) PlayerInfo {
		return PlayerInfo{ID: p.ID, Name: p.Name, Calibrated: p.Calibrated}
	}).([]PlayerInfo)
}

func packInfo(p hotseat.QuestionPack, prefs []language.Tag) PackInfo {
	return PackInfo{ID: p.ID, Name: localizedName(p, prefs), QuestionCount: p.QuestionCount}
}

func packInfos(packs []hotseat.QuestionPack, prefs []language.Tag) []PackInfo {
	return funk.Map(packs, func(p hotseat.QuestionPack) PackInfo {
		return packInfo(p, prefs)
	}).([]PackInfo)
}

func questionInfos(questions []hotseat.Question) []QuestionInfo {
	return funk.Map(questions, func(q hotseat.Question) QuestionInfo {
		return QuestionInfo{ID: q.ID, Position: q.Position, Text: q.Text}
	}).([]QuestionInfo)
}

func newFlowResponse(v setupflow.View, prefs []language.Tag) FlowResponse {
	sel := v.Selections
	resp := FlowResponse{
		ID:                 v.FlowID,
		Step:               v.Step.String(),
		Status:             string(v.Status),
		CanContinue:        v.CanContinue,
		CanGoBack:          v.CanGoBack,
		Players:            playerInfos(sel.Players),
		CountOptions:       v.CountOptions,
		QuestionsPerPlayer: v.QuestionsPerPlayer,
		SelectionMode:      string(sel.SelectionMode),
		VerdictMode:        string(sel.VerdictMode),
		QuestionIDs:        sel.QuestionIDs,
		SessionID:          v.SessionID,
	}
	if sel.Pack != nil {
		p := packInfo(*sel.Pack, prefs)
		resp.Pack = &p
	}
	if v.HasCountSelection {
		n := sel.QuestionCount
		resp.QuestionCount = &n
	}
	if v.AvailablePlayers != nil {
		resp.AvailablePlayers = playerInfos(v.AvailablePlayers)
	}
	if v.AvailablePacks != nil {
		resp.AvailablePacks = packInfos(v.AvailablePacks, prefs)
	}
	if resp.CountOptions == nil {
		resp.CountOptions = []setupflow.CountOption{}
	}
	if resp.QuestionIDs == nil {
		resp.QuestionIDs = []string{}
	}
	return resp
}

func newSessionResponse(s hotseat.Session) SessionResponse {
	resp := SessionResponse{
		ID:                 s.ID,
		Status:             string(s.Status),
		PlayerIDs:          s.PlayerIDs,
		QuestionIDs:        s.QuestionIDs,
		QuestionsPerPlayer: s.QuestionsPerPlayer,
		VerdictMode:        string(s.VerdictMode),
		CreatedAt:          formatTime(s.CreatedAt),
	}
	resp.Turns = funk.Map(s.Turns, func(t hotseat.Turn) TurnInfo {
		return TurnInfo{Number: t.Number, PlayerID: t.PlayerID, QuestionID: t.QuestionID}
	}).([]TurnInfo)
	if s.CompletedAt != nil {
		c := formatTime(*s.CompletedAt)
		resp.CompletedAt = &c
	}
	return resp
}
