package setupflow

import (
	"slices"

	"github.com/playperu/hotseat/internal/hotseat"
)

// Selections accumulates the choices made while walking through the flow.
type Selections struct {
	Players       []hotseat.Player
	Pack          *hotseat.QuestionPack
	QuestionCount int
	SelectionMode hotseat.SelectionMode
	VerdictMode   hotseat.VerdictMode
	QuestionIDs   []string
}

func (s Selections) clone() Selections {
	out := s
	out.Players = slices.Clone(s.Players)
	out.QuestionIDs = slices.Clone(s.QuestionIDs)
	if s.Pack != nil {
		p := *s.Pack
		out.Pack = &p
	}
	return out
}

func (s Selections) hasPlayer(id string) bool {
	return slices.ContainsFunc(s.Players, func(p hotseat.Player) bool { return p.ID == id })
}

func (s Selections) capacity() int {
	if s.Pack == nil {
		return 0
	}
	return s.Pack.QuestionCount
}
