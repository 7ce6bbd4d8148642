package setupflow

import (
	"log/slog"
	"slices"
	"time"
)

type Option func(*Controller)

// WithID overrides the generated flow ID.
func WithID(id string) Option {
	return func(c *Controller) { c.id = id }
}

// WithCountOptions replaces the candidate question counts. Candidates are
// always evaluated in ascending order.
func WithCountOptions(counts []int) Option {
	return func(c *Controller) {
		if len(counts) == 0 {
			return
		}
		sorted := slices.Clone(counts)
		slices.Sort(sorted)
		c.candidates = slices.Compact(sorted)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithObserver registers fn to be called after every committed change of
// step or status. It runs outside the controller lock.
func WithObserver(fn func(Transition)) Option {
	return func(c *Controller) { c.observer = fn }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}
