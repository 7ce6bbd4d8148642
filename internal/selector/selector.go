// Package selector resolves the concrete questions a session will use.
package selector

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/thoas/go-funk"

	"github.com/playperu/hotseat/internal/hotseat"
)

// QuestionSource lists the question IDs of a pack in pack order.
type QuestionSource interface {
	PackQuestionIDs(ctx context.Context, packID string) ([]string, error)
}

type Selector struct {
	source QuestionSource

	mu  sync.Mutex
	rnd *rand.Rand
}

type Option func(*Selector)

// WithSeed makes random sampling reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Selector) {
		s.rnd = rand.New(rand.NewPCG(seed, seed))
	}
}

func New(source QuestionSource, opts ...Option) *Selector {
	s := &Selector{
		source: source,
		rnd:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveQuestions samples count questions from pack in random mode. In
// manual mode it returns explicitIDs unchanged once they are known to be
// count distinct members of pack.
func (s *Selector) ResolveQuestions(ctx context.Context, pack hotseat.QuestionPack, count int, mode hotseat.SelectionMode, explicitIDs []string) ([]string, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive", hotseat.ErrInvalidSelection)
	}

	ids, err := s.source.PackQuestionIDs(ctx, pack.ID)
	if err != nil {
		return nil, fmt.Errorf("loading questions of pack %q: %w", pack.ID, err)
	}

	switch mode {
	case hotseat.SelectionRandom:
		return s.sample(ids, count)
	case hotseat.SelectionManual:
		return validateManual(ids, count, explicitIDs)
	default:
		return nil, fmt.Errorf("%w: unknown selection mode %q", hotseat.ErrInvalidSelection, mode)
	}
}

func (s *Selector) sample(ids []string, count int) ([]string, error) {
	if len(ids) < count {
		return nil, fmt.Errorf("%w: pack has %d questions, need %d",
			hotseat.ErrInvalidSelection, len(ids), count)
	}

	s.mu.Lock()
	perm := s.rnd.Perm(len(ids))
	s.mu.Unlock()

	out := make([]string, 0, count)
	for _, i := range perm[:count] {
		out = append(out, ids[i])
	}
	return out, nil
}

func validateManual(packIDs []string, count int, explicitIDs []string) ([]string, error) {
	if len(explicitIDs) != count {
		return nil, fmt.Errorf("%w: got %d questions, need %d",
			hotseat.ErrInvalidSelection, len(explicitIDs), count)
	}
	if len(funk.UniqString(explicitIDs)) != len(explicitIDs) {
		return nil, fmt.Errorf("%w: duplicate questions", hotseat.ErrInvalidSelection)
	}
	for _, id := range explicitIDs {
		if !funk.ContainsString(packIDs, id) {
			return nil, fmt.Errorf("%w: question %q is not in the pack", hotseat.ErrInvalidSelection, id)
		}
	}
	return explicitIDs, nil
}
