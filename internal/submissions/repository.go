package submissions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/numeral/pkg/pagination"
	"github.com/JaimeStill/numeral/pkg/query"
	"github.com/JaimeStill/numeral/pkg/repository"
)

var insertSubmission = query.Insert(
	projection.Table(),
	"id", "submitted_at", "image", "label", "predictions",
)

type repo struct {
	db     *sql.DB
	stamps *stamper
	logger *slog.Logger
}

// NewRepository creates a durable store over an open connection pool whose
// schema has been migrated.
func NewRepository(db *sql.DB, logger *slog.Logger, opts ...Option) System {
	o := applyOptions(opts)
	return &repo{
		db:     db,
		stamps: newStamper(o.clock),
		logger: logger.With("system", "submissions", "backend", "database"),
	}
}

func (r *repo) Handler(limits pagination.Config) *Handler {
	return NewHandler(r, r.logger, limits)
}

func (r *repo) Add(ctx context.Context, cmd CreateCommand) (*Submission, error) {
	sub, err := cmd.build(r.stamps.next())
	if err != nil {
		return nil, err
	}

	preds, err := json.Marshal(sub.Predictions)
	if err != nil {
		return nil, fmt.Errorf("encode predictions: %w", err)
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx, insertSubmission,
			sub.ID, sub.Timestamp, sub.Image, sub.Label, string(preds),
		)
	})
	if err != nil {
		return nil, unavailable("insert submission", err)
	}

	r.logger.Info("submission added", "id", sub.ID, "label", sub.Label)
	return &sub, nil
}

func (r *repo) Recent(ctx context.Context, count int, filters Filters) ([]Submission, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	if count == 0 {
		return []Submission{}, nil
	}

	qb := query.NewBuilder(projection, recentSort...)
	filters.Apply(qb)

	q, args := qb.BuildLimit(count)
	subs, err := repository.QueryMany(ctx, r.db, q, args, scanSubmission)
	if err != nil {
		return nil, unavailable("query submissions", err)
	}
	return subs, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Submission, error) {
	q, args := query.NewBuilder(projection).WhereEquals("ID", id).Build()

	sub, err := repository.QueryOne(ctx, r.db, q, args, scanSubmission)
	if err != nil {
		mapped := repository.MapError(err, ErrNotFound, ErrDuplicate)
		if errors.Is(mapped, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable("find submission", err)
	}
	return &sub, nil
}

func unavailable(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}
