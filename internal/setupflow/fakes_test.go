package setupflow

import (
	"context"
	"fmt"
	"slices"

	"github.com/playperu/hotseat/internal/hotseat"
)

type fakeRoster struct {
	players []hotseat.Player
	err     error
}

func (f *fakeRoster) CalibratedPlayers(context.Context) ([]hotseat.Player, error) {
	return f.players, f.err
}

type fakeCatalog struct {
	packs []hotseat.QuestionPack
}

func (f *fakeCatalog) AllPacks(context.Context) ([]hotseat.QuestionPack, error) {
	return f.packs, nil
}

// fakeSelector knows the question IDs of every pack and takes the first
// count of them in random mode.
type fakeSelector struct {
	questions map[string][]string
	calls     int
}

func (f *fakeSelector) ResolveQuestions(_ context.Context, pack hotseat.QuestionPack, count int, mode hotseat.SelectionMode, explicit []string) ([]string, error) {
	f.calls++
	ids := f.questions[pack.ID]
	if mode == hotseat.SelectionManual {
		for _, id := range explicit {
			if !slices.Contains(ids, id) {
				return nil, fmt.Errorf("%w: %q not in pack", hotseat.ErrInvalidSelection, id)
			}
		}
		return explicit, nil
	}
	if len(ids) < count {
		return nil, hotseat.ErrInvalidSelection
	}
	return slices.Clone(ids[:count]), nil
}

type sessionCall struct {
	players   []hotseat.Player
	questions []string
	perPlayer int
	verdict   hotseat.VerdictMode
}

type fakeSessions struct {
	calls []sessionCall
	err   error
}

func (f *fakeSessions) CreateSession(_ context.Context, players []hotseat.Player, questionIDs []string, perPlayer int, verdict hotseat.VerdictMode) (hotseat.Session, error) {
	if f.err != nil {
		return hotseat.Session{}, f.err
	}
	f.calls = append(f.calls, sessionCall{players, questionIDs, perPlayer, verdict})
	ids := make([]string, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
	}
	return hotseat.Session{
		ID:                 fmt.Sprintf("session-%d", len(f.calls)),
		Status:             hotseat.SessionStatusPlaying,
		PlayerIDs:          ids,
		QuestionIDs:        questionIDs,
		QuestionsPerPlayer: perPlayer,
		VerdictMode:        verdict,
	}, nil
}

func player(id string) hotseat.Player {
	return hotseat.Player{ID: id, Name: "Player " + id, Calibrated: true}
}

func players(ids ...string) []hotseat.Player {
	out := make([]hotseat.Player, 0, len(ids))
	for _, id := range ids {
		out = append(out, player(id))
	}
	return out
}

func questionIDs(prefix string, n int) []string {
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		ids = append(ids, fmt.Sprintf("%s-q%02d", prefix, i))
	}
	return ids
}

type harness struct {
	roster   *fakeRoster
	catalog  *fakeCatalog
	selector *fakeSelector
	sessions *fakeSessions
}

func newHarness() *harness {
	small := hotseat.QuestionPack{ID: "small", Names: map[string]string{"en": "Small"}, QuestionCount: 10}
	big := hotseat.QuestionPack{ID: "big", Names: map[string]string{"en": "Big"}, QuestionCount: 30}
	tiny := hotseat.QuestionPack{ID: "tiny", Names: map[string]string{"en": "Tiny"}, QuestionCount: 4}
	h := &harness{sessions: &fakeSessions{}}
	h.roster = &fakeRoster{players: players("a", "b", "c", "d", "e")}
	h.catalog = &fakeCatalog{packs: []hotseat.QuestionPack{small, big, tiny}}
	h.selector = &fakeSelector{questions: map[string][]string{
		"small": questionIDs("small", 10),
		"big":   questionIDs("big", 30),
		"tiny":  questionIDs("tiny", 4),
	}}
	return h
}

func (h *harness) deps() Deps {
	return Deps{Roster: h.roster, Catalog: h.catalog, Selector: h.selector, Sessions: h.sessions}
}

func (h *harness) pack(id string) hotseat.QuestionPack {
	for _, p := range h.catalog.packs {
		if p.ID == id {
			return p
		}
	}
	panic("unknown pack " + id)
}
