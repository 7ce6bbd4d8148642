// Package setupflow drives the Hot Seat setup wizard: it owns the active
// step and the accumulated selections, gates every transition, and turns a
// completed walk-through into a GameConfiguration and a gameplay session.
package setupflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/hotseat/internal/hotseat"
)

var (
	// ErrValidationBlocked means a transition was attempted while its gate
	// is unmet. The step does not change.
	ErrValidationBlocked = errors.New("transition blocked")
	ErrFlowClosed        = errors.New("setup flow closed")
)

// MinPlayers is the smallest group that may leave PlayerSelection.
const MinPlayers = 2

// Roster lists the players who may take part in a session.
type Roster interface {
	CalibratedPlayers(ctx context.Context) ([]hotseat.Player, error)
}

// Catalog lists every question pack on offer.
type Catalog interface {
	AllPacks(ctx context.Context) ([]hotseat.QuestionPack, error)
}

// QuestionSelector turns a pack, count and mode into concrete question IDs.
type QuestionSelector interface {
	ResolveQuestions(ctx context.Context, pack hotseat.QuestionPack, count int, mode hotseat.SelectionMode, explicitIDs []string) ([]string, error)
}

// SessionFactory starts the game session a completed flow hands off to.
type SessionFactory interface {
	CreateSession(ctx context.Context, players []hotseat.Player, questionIDs []string, questionsPerPlayer int, verdict hotseat.VerdictMode) (hotseat.Session, error)
}

// Deps are the collaborators a controller reads from and hands off to.
type Deps struct {
	Roster   Roster
	Catalog  Catalog
	Selector QuestionSelector
	Sessions SessionFactory
}

// Controller is the setup state machine for a single flow. All methods are
// safe for concurrent use; operations are applied one at a time.
type Controller struct {
	mu sync.Mutex

	id         string
	deps       Deps
	candidates []int
	logger     *slog.Logger
	observer   func(Transition)
	now        func() time.Time

	step      Step
	status    Status
	sel       Selections
	config    *hotseat.GameConfiguration
	session   *hotseat.Session
	updatedAt time.Time
	seq       uint64
}

func New(deps Deps, opts ...Option) *Controller {
	c := &Controller{
		id:         uuid.New().String(),
		deps:       deps,
		candidates: slices.Clone(DefaultCountOptions),
		logger:     slog.New(slog.DiscardHandler),
		now:        time.Now,
		step:       StepPlayerSelection,
		status:     StatusActive,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.updatedAt = c.now()
	return c
}

func (c *Controller) ID() string { return c.id }

func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Selections returns a copy of the accumulated selections.
func (c *Controller) Selections() Selections {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.clone()
}

// Configuration returns the configuration built when the flow reached
// Playing.
func (c *Controller) Configuration() (hotseat.GameConfiguration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.config == nil {
		return hotseat.GameConfiguration{}, false
	}
	return *c.config, true
}

func (c *Controller) Session() (hotseat.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return hotseat.Session{}, false
	}
	return *c.session, true
}

// UpdatedAt is the time of the last operation applied to the flow.
func (c *Controller) UpdatedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updatedAt
}

// CountCandidates returns the question counts offered at CountSelection.
func (c *Controller) CountCandidates() []int {
	return slices.Clone(c.candidates)
}

// SetPlayers replaces the selected players without leaving PlayerSelection.
func (c *Controller) SetPlayers(players []hotseat.Player) error {
	return c.apply("set_players", func() error {
		if err := c.require(StepPlayerSelection); err != nil {
			return err
		}
		return c.setPlayers(players)
	})
}

// TogglePlayer adds p to the selection, or removes it if already selected.
func (c *Controller) TogglePlayer(p hotseat.Player) error {
	return c.apply("toggle_player", func() error {
		if err := c.require(StepPlayerSelection); err != nil {
			return err
		}
		if c.sel.hasPlayer(p.ID) {
			c.sel.Players = slices.DeleteFunc(c.sel.Players, func(q hotseat.Player) bool { return q.ID == p.ID })
			return nil
		}
		if !p.Calibrated {
			return fmt.Errorf("%w: player %q is not calibrated", ErrValidationBlocked, p.ID)
		}
		c.sel.Players = append(c.sel.Players, p)
		return nil
	})
}

// ContinueFromPlayers advances to PackSelection once enough players are
// selected.
func (c *Controller) ContinueFromPlayers() error {
	return c.apply("continue_players", func() error {
		if err := c.require(StepPlayerSelection); err != nil {
			return err
		}
		return c.continueFromPlayers()
	})
}

// SelectPlayers replaces the selection with players and advances to
// PackSelection if at least MinPlayers were given.
func (c *Controller) SelectPlayers(players []hotseat.Player) error {
	return c.apply("select_players", func() error {
		if err := c.require(StepPlayerSelection); err != nil {
			return err
		}
		if err := c.setPlayers(players); err != nil {
			return err
		}
		return c.continueFromPlayers()
	})
}

// SelectPlayersByID resolves ids against the calibrated roster and replaces
// the selection. With advance set it also tries to leave PlayerSelection.
func (c *Controller) SelectPlayersByID(ctx context.Context, ids []string, advance bool) error {
	return c.apply("select_players", func() error {
		if err := c.require(StepPlayerSelection); err != nil {
			return err
		}
		roster, err := c.deps.Roster.CalibratedPlayers(ctx)
		if err != nil {
			return fmt.Errorf("loading roster: %w", err)
		}
		players := make([]hotseat.Player, 0, len(ids))
		for _, id := range ids {
			i := slices.IndexFunc(roster, func(p hotseat.Player) bool { return p.ID == id })
			if i < 0 {
				return fmt.Errorf("%w: player %q is not in the calibrated roster", ErrValidationBlocked, id)
			}
			players = append(players, roster[i])
		}
		if err := c.setPlayers(players); err != nil {
			return err
		}
		if !advance {
			return nil
		}
		return c.continueFromPlayers()
	})
}

// SelectPack stores pack and moves to CountSelection, pre-selecting the
// default count when the pack changed or the previous count no longer fits.
func (c *Controller) SelectPack(pack hotseat.QuestionPack) error {
	return c.apply("select_pack", func() error {
		if err := c.require(StepPackSelection); err != nil {
			return err
		}
		c.selectPack(pack)
		return nil
	})
}

// SelectPackByID resolves id against the catalog and behaves like SelectPack.
func (c *Controller) SelectPackByID(ctx context.Context, id string) error {
	return c.apply("select_pack", func() error {
		if err := c.require(StepPackSelection); err != nil {
			return err
		}
		packs, err := c.deps.Catalog.AllPacks(ctx)
		if err != nil {
			return fmt.Errorf("loading packs: %w", err)
		}
		i := slices.IndexFunc(packs, func(p hotseat.QuestionPack) bool { return p.ID == id })
		if i < 0 {
			return fmt.Errorf("pack %q: %w", id, hotseat.ErrNotFound)
		}
		c.selectPack(packs[i])
		return nil
	})
}

// ChooseCount accepts one of the offered counts that fits the pack and the
// player count, and moves to ModeSelection.
func (c *Controller) ChooseCount(count int) error {
	return c.apply("choose_count", func() error {
		if err := c.require(StepCountSelection); err != nil {
			return err
		}
		if !slices.Contains(c.candidates, count) {
			return fmt.Errorf("%w: %d questions is not an offered count", ErrValidationBlocked, count)
		}
		if !CountSelectable(count, len(c.sel.Players), c.sel.capacity()) {
			return fmt.Errorf("%w: %d questions does not fit %d players and a pack of %d",
				ErrValidationBlocked, count, len(c.sel.Players), c.sel.capacity())
		}
		c.setCount(count)
		c.step = StepModeSelection
		return nil
	})
}

// ChooseModes stores the modes. Manual selection moves to ManualSelection;
// random selection resolves the questions and starts the session.
func (c *Controller) ChooseModes(ctx context.Context, sm hotseat.SelectionMode, vm hotseat.VerdictMode) error {
	return c.apply("choose_modes", func() error {
		if err := c.require(StepModeSelection); err != nil {
			return err
		}
		if !sm.Valid() {
			return fmt.Errorf("%w: unknown selection mode %q", ErrValidationBlocked, sm)
		}
		if !vm.Valid() {
			return fmt.Errorf("%w: unknown verdict mode %q", ErrValidationBlocked, vm)
		}
		if sm == hotseat.SelectionManual {
			c.sel.SelectionMode = sm
			c.sel.VerdictMode = vm
			c.step = StepManualSelection
			return nil
		}
		ids, err := c.startSession(ctx, sm, vm, nil)
		if err != nil {
			return err
		}
		c.sel.SelectionMode = sm
		c.sel.VerdictMode = vm
		c.sel.QuestionIDs = ids
		return nil
	})
}

// ToggleQuestion adds or removes a single manual pick.
func (c *Controller) ToggleQuestion(id string) error {
	return c.apply("toggle_question", func() error {
		if err := c.require(StepManualSelection); err != nil {
			return err
		}
		if slices.Contains(c.sel.QuestionIDs, id) {
			c.sel.QuestionIDs = slices.DeleteFunc(c.sel.QuestionIDs, func(q string) bool { return q == id })
			return nil
		}
		if len(c.sel.QuestionIDs) >= c.sel.QuestionCount {
			return fmt.Errorf("%w: already picked %d questions", ErrValidationBlocked, c.sel.QuestionCount)
		}
		c.sel.QuestionIDs = append(c.sel.QuestionIDs, id)
		return nil
	})
}

// ConfirmManualSelection starts the session with exactly the given
// questions. On any failure the flow stays at ManualSelection.
func (c *Controller) ConfirmManualSelection(ctx context.Context, ids []string) error {
	return c.apply("confirm_manual", func() error {
		if err := c.require(StepManualSelection); err != nil {
			return err
		}
		if len(ids) != c.sel.QuestionCount {
			return fmt.Errorf("%w: picked %d questions, need %d",
				hotseat.ErrInvalidSelection, len(ids), c.sel.QuestionCount)
		}
		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				return fmt.Errorf("%w: question %q picked twice", hotseat.ErrInvalidSelection, id)
			}
			seen[id] = struct{}{}
		}
		resolved, err := c.startSession(ctx, c.sel.SelectionMode, c.sel.VerdictMode, ids)
		if err != nil {
			return err
		}
		c.sel.QuestionIDs = resolved
		return nil
	})
}

// Back follows the back edge of the active step. Going back from
// PlayerSelection cancels the flow.
func (c *Controller) Back() error {
	return c.apply("back", func() error {
		if c.status != StatusActive {
			return ErrFlowClosed
		}
		if c.step == StepPlayerSelection {
			c.cancel()
			return nil
		}
		prev, ok := backEdges[c.step]
		if !ok {
			return fmt.Errorf("%w: no way back from %s", ErrValidationBlocked, c.step)
		}
		c.step = prev
		return nil
	})
}

// Cancel abandons the flow from any step and discards all selections.
func (c *Controller) Cancel() {
	_ = c.apply("cancel", func() error {
		c.cancel()
		return nil
	})
}

// Restart reopens the flow at PlayerSelection with empty selections.
func (c *Controller) Restart() {
	_ = c.apply("restart", func() error {
		c.sel = Selections{}
		c.config = nil
		c.session = nil
		c.step = StepPlayerSelection
		c.status = StatusActive
		return nil
	})
}

// apply runs fn under the lock, logs the outcome and notifies the observer
// when the step or status changed.
func (c *Controller) apply(op string, fn func() error) error {
	c.mu.Lock()
	from, fromStatus := c.step, c.status
	err := fn()
	c.updatedAt = c.now()
	changed := err == nil && (from != c.step || fromStatus != c.status)
	t := Transition{FlowID: c.id, From: from, To: c.step, Status: c.status}
	if changed {
		c.seq++
		t.Seq = c.seq
		if c.session != nil {
			t.SessionID = c.session.ID
		}
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug("setup flow operation refused",
			"flow_id", c.id,
			"op", op,
			"step", from.String(),
			"error", err,
		)
		return err
	}
	if changed {
		c.logger.Debug("setup flow transition",
			"flow_id", c.id,
			"op", op,
			"from", t.From.String(),
			"to", t.To.String(),
			"status", string(t.Status),
		)
		if c.observer != nil {
			c.observer(t)
		}
	}
	return nil
}

func (c *Controller) require(step Step) error {
	if c.status != StatusActive {
		return ErrFlowClosed
	}
	if c.step != step {
		return fmt.Errorf("%w: flow is at %s, not %s", ErrValidationBlocked, c.step, step)
	}
	return nil
}

func (c *Controller) setPlayers(players []hotseat.Player) error {
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if !p.Calibrated {
			return fmt.Errorf("%w: player %q is not calibrated", ErrValidationBlocked, p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: player %q selected twice", ErrValidationBlocked, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	c.sel.Players = slices.Clone(players)
	return nil
}

func (c *Controller) continueFromPlayers() error {
	if len(c.sel.Players) < MinPlayers {
		return fmt.Errorf("%w: %d players selected, need at least %d",
			ErrValidationBlocked, len(c.sel.Players), MinPlayers)
	}
	c.step = StepPackSelection
	return nil
}

func (c *Controller) selectPack(pack hotseat.QuestionPack) {
	changed := c.sel.Pack == nil || c.sel.Pack.ID != pack.ID
	p := pack
	c.sel.Pack = &p
	if changed {
		c.sel.QuestionIDs = nil
	}

	keep := !changed &&
		slices.Contains(c.candidates, c.sel.QuestionCount) &&
		CountSelectable(c.sel.QuestionCount, len(c.sel.Players), pack.QuestionCount)
	if !keep {
		def, _ := DefaultCount(c.candidates, len(c.sel.Players), pack.QuestionCount)
		c.setCount(def)
	}
	c.step = StepCountSelection
}

func (c *Controller) setCount(count int) {
	if count != c.sel.QuestionCount {
		c.sel.QuestionIDs = nil
	}
	c.sel.QuestionCount = count
}

func (c *Controller) cancel() {
	c.sel = Selections{}
	c.config = nil
	c.status = StatusAborted
}

// startSession builds the configuration and requests a session. Nothing is
// committed unless both succeed.
func (c *Controller) startSession(ctx context.Context, sm hotseat.SelectionMode, vm hotseat.VerdictMode, explicitIDs []string) ([]string, error) {
	if c.config != nil {
		return nil, ErrFlowClosed
	}
	if len(c.sel.Players) < MinPlayers || c.sel.Pack == nil ||
		!CountSelectable(c.sel.QuestionCount, len(c.sel.Players), c.sel.capacity()) {
		return nil, fmt.Errorf("%w: selections are incomplete", ErrValidationBlocked)
	}

	pack := *c.sel.Pack
	ids, err := c.deps.Selector.ResolveQuestions(ctx, pack, c.sel.QuestionCount, sm, explicitIDs)
	if err != nil {
		return nil, fmt.Errorf("resolving questions: %w", err)
	}
	if len(ids) != c.sel.QuestionCount {
		return nil, fmt.Errorf("%w: resolved %d questions, want %d",
			hotseat.ErrInvalidSelection, len(ids), c.sel.QuestionCount)
	}

	cfg := hotseat.NewGameConfiguration(c.sel.Players, pack, c.sel.QuestionCount, sm, vm, ids)

	sess, err := c.deps.Sessions.CreateSession(ctx, cfg.Players(), cfg.QuestionIDs(),
		cfg.QuestionsPerPlayer(), cfg.VerdictMode())
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	c.config = &cfg
	c.session = &sess
	c.step = StepPlaying
	c.status = StatusStarted
	return cfg.QuestionIDs(), nil
}
