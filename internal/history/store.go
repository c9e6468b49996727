// Package history remembers the last entry viewed in each directory so a
// later session can resume where the previous one stopped.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"imgview/internal/errors"
	"imgview/internal/log"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

const keyPrefix = "pos:"

// Store is a badger-backed map from directory to entry name.
type Store struct {
	db *badger.DB
}

// Option configures Open.
type Option func(*badger.Options)

// InMemory keeps the store in memory only.
func InMemory() Option {
	return func(o *badger.Options) {
		*o = o.WithDir("").WithValueDir("").WithInMemory(true)
	}
}

// Open opens (or creates) the store at dir.
func Open(dir string, opts ...Option) (*Store, error) {
	bopts := badger.DefaultOptions(dir).
		WithLogger(log.ForStore("history")).
		WithLoggingLevel(badger.WARNING).
		WithCompression(options.None).
		WithNumVersionsToKeep(1)
	for _, opt := range opts {
		opt(&bopts)
	}

	if !bopts.InMemory {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrHistoryOperation, err)
		}
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %w", errors.ErrHistoryOperation, dir, err)
	}
	return &Store{db: db}, nil
}

func key(dir string) []byte {
	return []byte(keyPrefix + filepath.Clean(dir))
}

// Remember records name as the current entry of dir.
func (s *Store) Remember(dir, name string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(dir), []byte(name))
	})
	if err != nil {
		return fmt.Errorf("%w: remember %s: %w", errors.ErrHistoryOperation, dir, err)
	}
	return nil
}

// Recall returns the entry last remembered for dir.
func (s *Store) Recall(dir string) (string, bool, error) {
	var name string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(dir))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			name = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: recall %s: %w", errors.ErrHistoryOperation, dir, err)
	}
	return name, true, nil
}

// Forget drops the entry for dir.
func (s *Store) Forget(dir string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(dir))
	})
	if err != nil {
		return fmt.Errorf("%w: forget %s: %w", errors.ErrHistoryOperation, dir, err)
	}
	return nil
}

// Directories lists every directory with a remembered entry, in key order.
func (s *Store) Directories() ([]string, error) {
	var dirs []string
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(keyPrefix)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			dirs = append(dirs, string(it.Item().Key()[len(keyPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrHistoryOperation, err)
	}
	return dirs, nil
}

// Close flushes and closes the store.
func (s *Store) Close() error {
	start := time.Now()
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", errors.ErrHistoryOperation, err)
	}
	log.Debugf("history closed in %s", time.Since(start))
	return nil
}
