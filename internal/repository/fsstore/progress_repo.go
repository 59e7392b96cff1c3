package fsstore

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/dsavelev/kosyncd/internal/errs"
	"github.com/dsavelev/kosyncd/internal/model"
)

// ProgressRepo implements ProgressRepository on the directory tree.
type ProgressRepo struct{ store *Store }

// NewProgressRepo constructs a progress repository.
func NewProgressRepo(store *Store) *ProgressRepo { return &ProgressRepo{store: store} }

// Put overwrites the record for (username, p.Document). Last write wins:
// concurrent pushes for the same key race at the rename and the one that
// completes last is what a later Get returns. No locking is needed because
// the atomic replace in writeFileAtomic can never expose a partial record.
func (r *ProgressRepo) Put(ctx context.Context, username string, p *model.Progress) error {
	if err := os.MkdirAll(r.store.userDir(username), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return writeFileAtomic(r.store.progressPath(username, p.Document), data)
}

// Get reads the record for (username, document).
func (r *ProgressRepo) Get(ctx context.Context, username, document string) (*model.Progress, error) {
	data, err := os.ReadFile(r.store.progressPath(username, document))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	var p model.Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
