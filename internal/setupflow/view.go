package setupflow

import (
	"context"
	"fmt"

	"github.com/playperu/hotseat/internal/hotseat"
)

// View is a rendering-independent description of the active step.
type View struct {
	FlowID             string
	Step               Step
	Status             Status
	Selections         Selections
	CountOptions       []CountOption
	HasCountSelection  bool
	QuestionsPerPlayer int
	CanContinue        bool
	CanGoBack          bool
	SessionID          string

	// Choices for the active step, filled by Screen.
	AvailablePlayers []hotseat.Player
	AvailablePacks   []hotseat.QuestionPack
}

// Project derives the view for step and sel. It has no side effects.
func Project(step Step, status Status, sel Selections, candidates []int) View {
	players := len(sel.Players)
	v := View{
		Step:               step,
		Status:             status,
		Selections:         sel.clone(),
		HasCountSelection:  sel.QuestionCount > 0,
		QuestionsPerPlayer: hotseat.QuestionsPerPlayer(sel.QuestionCount, players),
		CanGoBack:          status == StatusActive && step != StepPlaying,
	}
	if sel.Pack != nil {
		v.CountOptions = CountOptions(candidates, players, sel.Pack.QuestionCount)
	}

	if status != StatusActive {
		return v
	}
	switch step {
	case StepPlayerSelection:
		v.CanContinue = players >= MinPlayers
	case StepPackSelection:
		v.CanContinue = sel.Pack != nil
	case StepCountSelection:
		v.CanContinue = CountSelectable(sel.QuestionCount, players, sel.capacity())
	case StepModeSelection:
		v.CanContinue = sel.SelectionMode.Valid() && sel.VerdictMode.Valid()
	case StepManualSelection:
		v.CanContinue = sel.QuestionCount > 0 && len(sel.QuestionIDs) == sel.QuestionCount
	}
	return v
}

// Screen projects the current state and attaches the choices the active
// step offers: the calibrated roster or the pack catalog.
func (c *Controller) Screen(ctx context.Context) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := Project(c.step, c.status, c.sel, c.candidates)
	v.FlowID = c.id
	if c.session != nil {
		v.SessionID = c.session.ID
	}
	if c.status != StatusActive {
		return v, nil
	}

	switch c.step {
	case StepPlayerSelection:
		players, err := c.deps.Roster.CalibratedPlayers(ctx)
		if err != nil {
			return View{}, fmt.Errorf("loading roster: %w", err)
		}
		v.AvailablePlayers = players
	case StepPackSelection:
		packs, err := c.deps.Catalog.AllPacks(ctx)
		if err != nil {
			return View{}, fmt.Errorf("loading packs: %w", err)
		}
		v.AvailablePacks = packs
	}
	return v, nil
}
