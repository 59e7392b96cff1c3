package repository

import (
	"context"

	"github.com/dsavelev/kosyncd/internal/model"
)

// ProgressRepository provides last-write-wins access to per-user progress records.
type ProgressRepository interface {
	// Put unconditionally overwrites the record stored for
	// (username, p.Document). The replace is atomic: a concurrent Get never
	// observes a partially written record, and the write is durable before
	// Put returns. Writes for unrelated keys must not contend.
	Put(ctx context.Context, username string, p *model.Progress) error

	// Get returns the stored record, or errs.ErrNotFound if the user has
	// never pushed progress for that document.
	Get(ctx context.Context, username, document string) (*model.Progress, error)
}
