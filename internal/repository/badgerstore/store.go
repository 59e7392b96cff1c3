// Package badgerstore implements the repositories on an embedded BadgerDB.
//
// It is an alternative to the directory layout of fsstore for installations
// with many users, keeping the same durability guarantees: SyncWrites makes
// every Put durable before it returns, and transactions give atomic replace.
//
// Keys are "u/<username>" for auth records and "p/<username>/<document>" for
// progress. Usernames and document ids are validated upstream to be single
// path segments without separators, so the key scheme is unambiguous and one
// user's writes can never land under another user's prefix.
package badgerstore

import (
	"github.com/dgraph-io/badger/v4"
)

// Options configures the underlying BadgerDB instance.
type Options struct {
	// Path is the directory for the database files. Ignored when InMemory
	// is set.
	Path string

	// InMemory disables disk persistence. Used by tests.
	InMemory bool
}

// Store wraps an open BadgerDB shared by both repositories.
type Store struct{ db *badger.DB }

// Open opens the database. The caller must Close it on shutdown.
func Open(opts Options) (*Store, error) {
	bo := badger.DefaultOptions(opts.Path).
		WithSyncWrites(true).
		WithNumVersionsToKeep(1).
		WithLogger(nil)
	if opts.InMemory {
		bo = bo.WithInMemory(true).WithDir("").WithValueDir("").WithSyncWrites(false)
	}
	db, err := badger.Open(bo)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error { return s.db.Close() }

func userKey(username string) []byte {
	return []byte("u/" + username)
}

func progressKey(username, document string) []byte {
	return []byte("p/" + username + "/" + document)
}
