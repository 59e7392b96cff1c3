// Package fsstore implements the repositories on a plain directory tree.
//
// The layout is one directory per user holding
// auth.json plus one <document>.json file per synced document. Every record is
// a self-contained JSON file, so the data dir can be inspected or backed up
// with ordinary tools and a corrupted file never takes other records with it.
package fsstore

import (
	"os"
	"path/filepath"
	"sync"
)

// Store is a handle to the data directory shared by both repositories.
type Store struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-username, guards check-then-write in Create
}

// New opens (creating if needed) a store rooted at dir.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &Store{root: dir, locks: make(map[string]*sync.Mutex)}, nil
}

// Root returns the data directory the store was opened with.
func (s *Store) Root() string { return s.root }

func (s *Store) userDir(username string) string {
	return filepath.Join(s.root, username)
}

func (s *Store) authPath(username string) string {
	return filepath.Join(s.userDir(username), "auth.json")
}

func (s *Store) progressPath(username, document string) string {
	return filepath.Join(s.userDir(username), document+".json")
}

// userLock returns the mutex for a username, creating it on first use.
// Locks are per-user so registrations for unrelated names never contend.
func (s *Store) userLock(username string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[username]
	if !ok {
		l = &sync.Mutex{}
		s.locks[username] = l
	}
	return l
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place, so a crash or abandoned request mid-write never
// leaves a truncated record, and a concurrent read sees either the old or
// the new content in full.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	return syncDir(dir)
}

// syncDir flushes the directory entry so the rename itself is durable.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
