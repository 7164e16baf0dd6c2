package submissions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/numeral/pkg/pagination"
	"github.com/JaimeStill/numeral/pkg/storage"
)

// ArchiveKey returns the blob key for a submission image, grouped by label so
// the archive reads as a labelled dataset.
func ArchiveKey(s Submission) string {
	return fmt.Sprintf("submissions/%d/%s.png", s.Label, s.ID)
}

type archive struct {
	System
	store  storage.System
	logger *slog.Logger
}

// WithArchive copies every accepted submission image to blob storage.
// Upload failures are logged and never fail the submission.
func WithArchive(sys System, store storage.System, logger *slog.Logger) System {
	return &archive{
		System: sys,
		store:  store,
		logger: logger.With("system", "archive"),
	}
}

func (a *archive) Handler(limits pagination.Config) *Handler {
	return NewHandler(a, a.logger, limits)
}

func (a *archive) Add(ctx context.Context, cmd CreateCommand) (*Submission, error) {
	sub, err := a.System.Add(ctx, cmd)
	if err != nil {
		return nil, err
	}

	key := ArchiveKey(*sub)
	if err := a.store.Upload(ctx, key, sub.Image, "image/png"); err != nil {
		a.logger.Warn("archive upload failed", "id", sub.ID, "key", key, "error", err)
		return sub, nil
	}

	a.logger.Debug("submission archived", "id", sub.ID, "key", key)
	return sub, nil
}
