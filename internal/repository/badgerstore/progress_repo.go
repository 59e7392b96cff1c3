package badgerstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/dsavelev/kosyncd/internal/errs"
	"github.com/dsavelev/kosyncd/internal/model"
)

// ProgressRepo implements ProgressRepository on BadgerDB.
type ProgressRepo struct{ store *Store }

// NewProgressRepo constructs a progress repository.
func NewProgressRepo(store *Store) *ProgressRepo { return &ProgressRepo{store: store} }

// Put overwrites the record for (username, p.Document). The transaction does
// no reads, so blind writes for the same key never conflict; the last commit
// wins.
func (r *ProgressRepo) Put(ctx context.Context, username string, p *model.Progress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.store.db.Update(func(txn *badger.Txn) error {
		return txn.Set(progressKey(username, p.Document), data)
	})
}

// Get reads the record for (username, document).
func (r *ProgressRepo) Get(ctx context.Context, username, document string) (*model.Progress, error) {
	var p model.Progress
	err := r.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(progressKey(username, document))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
