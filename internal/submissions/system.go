// Package submissions stores labelled rasters with their ensemble predictions
// and serves the most recent ones. A volatile backend keeps everything in
// process memory; a durable backend writes to a SQL database.
package submissions

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/numeral/pkg/pagination"
)

// System defines the submission store contract.
// Recent returns at most count submissions, newest first. Implementations
// must be safe for concurrent use.
type System interface {
	Handler(limits pagination.Config) *Handler

	Add(ctx context.Context, cmd CreateCommand) (*Submission, error)
	Recent(ctx context.Context, count int, filters Filters) ([]Submission, error)
	Find(ctx context.Context, id uuid.UUID) (*Submission, error)
}
