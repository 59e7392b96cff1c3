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

// UserRepo implements UserRepository on the directory tree.
type UserRepo struct{ store *Store }

// NewUserRepo constructs a user repository.
func NewUserRepo(store *Store) *UserRepo { return &UserRepo{store: store} }

// authRecord is the on-disk shape of auth.json. The field names mirror the
// request headers, matching the layout other sync servers write so an
// existing data dir keeps working.
type authRecord struct {
	Username    string `json:"x-auth-user"`
	PasswordMD5 string `json:"x-auth-key"`
}

// Create writes auth.json for a new user. The per-username lock serializes
// the exists-check against concurrent registrations of the same name.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	lock := r.store.userLock(u.Username)
	lock.Lock()
	defer lock.Unlock()

	path := r.store.authPath(u.Username)
	if _, err := os.Stat(path); err == nil {
		return errs.ErrAlreadyExists
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(r.store.userDir(u.Username), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(authRecord{Username: u.Username, PasswordMD5: u.PasswordHash})
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// GetByUsername reads auth.json for the user.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	data, err := os.ReadFile(r.store.authPath(username))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.ErrUserNotFound
		}
		return nil, err
	}
	var rec authRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &model.User{Username: username, PasswordHash: rec.PasswordMD5}, nil
}
