package submissions

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/numeral/pkg/pagination"
)

// Option configures a store backend.
type Option func(*options)

type options struct {
	clock func() time.Time
}

// WithClock replaces the wall clock used to stamp submissions.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type memory struct {
	mu     sync.RWMutex
	items  []Submission
	stamps *stamper
	logger *slog.Logger
}

// NewMemory creates a volatile store. Its contents are lost when the process exits.
func NewMemory(logger *slog.Logger, opts ...Option) System {
	o := applyOptions(opts)
	return &memory{
		stamps: newStamper(o.clock),
		logger: logger.With("system", "submissions", "backend", "memory"),
	}
}

func (m *memory) Handler(limits pagination.Config) *Handler {
	return NewHandler(m, m.logger, limits)
}

func (m *memory) Add(ctx context.Context, cmd CreateCommand) (*Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// stamp and append under one lock so insertion order matches timestamp order
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, err := cmd.build(m.stamps.next())
	if err != nil {
		return nil, err
	}

	m.items = append(m.items, sub)
	m.logger.Info("submission added", "id", sub.ID, "label", sub.Label)

	out := clone(sub)
	return &out, nil
}

func (m *memory) Recent(ctx context.Context, count int, filters Filters) ([]Submission, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Submission, 0, min(count, len(m.items)))
	for i := len(m.items) - 1; i >= 0 && len(out) < count; i-- {
		if filters.Match(m.items[i]) {
			out = append(out, clone(m.items[i]))
		}
	}
	return out, nil
}

func (m *memory) Find(ctx context.Context, id uuid.UUID) (*Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	i := slices.IndexFunc(m.items, func(s Submission) bool { return s.ID == id })
	if i < 0 {
		return nil, ErrNotFound
	}

	out := clone(m.items[i])
	return &out, nil
}

// clone detaches the returned copy from the stored slices.
func clone(s Submission) Submission {
	s.Image = slices.Clone(s.Image)
	s.Predictions = slices.Clone(s.Predictions)
	return s
}
