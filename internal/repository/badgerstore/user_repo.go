package badgerstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/dsavelev/kosyncd/internal/errs"
	"github.com/dsavelev/kosyncd/internal/model"
)

// UserRepo implements UserRepository on BadgerDB.
type UserRepo struct{ store *Store }

// NewUserRepo constructs a user repository.
func NewUserRepo(store *Store) *UserRepo { return &UserRepo{store: store} }

type userRecord struct {
	Username    string `json:"username"`
	PasswordMD5 string `json:"password"`
}

// Create inserts the user record. Badger's transaction conflict detection
// serializes concurrent check-then-write attempts for the same key; a losing
// transaction is retried and then observes the winner's record.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	key := userKey(u.Username)
	data, err := json.Marshal(userRecord{Username: u.Username, PasswordMD5: u.PasswordHash})
	if err != nil {
		return err
	}
	for {
		err := r.store.db.Update(func(txn *badger.Txn) error {
			_, err := txn.Get(key)
			if err == nil {
				return errs.ErrAlreadyExists
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			return txn.Set(key, data)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		return err
	}
}

// GetByUsername loads the user record.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var rec userRecord
	err := r.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, err
	}
	return &model.User{Username: rec.Username, PasswordHash: rec.PasswordMD5}, nil
}
