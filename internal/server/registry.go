package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/playperu/hotseat/internal/hotseat"
	"github.com/playperu/hotseat/internal/setupflow"
)

// FlowRegistry keeps one setup controller per running flow.
type FlowRegistry struct {
	deps         setupflow.Deps
	countOptions []int
	broker       *Broker
	logger       *slog.Logger
	now          func() time.Time

	mu    sync.RWMutex
	flows map[string]*setupflow.Controller
}

func NewFlowRegistry(deps setupflow.Deps, countOptions []int, broker *Broker, logger *slog.Logger) *FlowRegistry {
	return &FlowRegistry{
		deps:         deps,
		countOptions: countOptions,
		broker:       broker,
		logger:       logger,
		now:          time.Now,
		flows:        make(map[string]*setupflow.Controller),
	}
}

// Create starts a new flow whose transitions are published to the broker.
func (r *FlowRegistry) Create() *setupflow.Controller {
	c := setupflow.New(r.deps,
		setupflow.WithCountOptions(r.countOptions),
		setupflow.WithLogger(r.logger),
		setupflow.WithClock(r.now),
		setupflow.WithObserver(func(t setupflow.Transition) {
			r.broker.Publish(t.FlowID, FlowEvent{
				Type:      "transition",
				Seq:       t.Seq,
				From:      t.From.String(),
				Step:      t.To.String(),
				Status:    string(t.Status),
				SessionID: t.SessionID,
			})
		}),
	)

	r.mu.Lock()
	r.flows[c.ID()] = c
	r.mu.Unlock()

	r.logger.Info("setup flow created", "flow_id", c.ID())
	return c
}

func (r *FlowRegistry) Get(id string) (*setupflow.Controller, error) {
	r.mu.RLock()
	c, ok := r.flows[id]
	r.mu.RUnlock()
	if !ok {
		return nil, hotseat.ErrNotFound
	}
	return c, nil
}

// Cancel aborts the flow and forgets it.
func (r *FlowRegistry) Cancel(id string) error {
	r.mu.Lock()
	c, ok := r.flows[id]
	delete(r.flows, id)
	r.mu.Unlock()
	if !ok {
		return hotseat.ErrNotFound
	}
	c.Cancel()
	r.broker.Close(id)
	r.logger.Info("setup flow aborted", "flow_id", id)
	return nil
}

// ReleaseSession forgets the flow that started sessionID, if any. It
// reports the released flow ID.
func (r *FlowRegistry) ReleaseSession(sessionID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.flows {
		if sess, ok := c.Session(); ok && sess.ID == sessionID {
			delete(r.flows, id)
			return id, true
		}
	}
	return "", false
}

func (r *FlowRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.flows)
}

// Sweep cancels and forgets flows idle for longer than ttl.
func (r *FlowRegistry) Sweep(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	var stale []*setupflow.Controller
	for id, c := range r.flows {
		if c.UpdatedAt().Before(cutoff) {
			stale = append(stale, c)
			delete(r.flows, id)
		}
	}
	r.mu.Unlock()

	for _, c := range stale {
		c.Cancel()
		r.broker.Close(c.ID())
		r.logger.Info("setup flow expired", "flow_id", c.ID())
	}
	return len(stale)
}

// RunSweeper sweeps every interval until ctx is done.
func (r *FlowRegistry) RunSweeper(ctx context.Context, ttl, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Sweep(ttl); n > 0 {
				r.logger.Debug("swept idle flows", "count", n)
			}
		}
	}
}
