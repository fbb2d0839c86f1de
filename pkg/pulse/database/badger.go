package database

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-logr/logr"

	apperrors "github.com/garunski/pulse/pkg/pulse/errors"
)

var ErrNotFound = errors.New("key not found")

type DB struct {
	db     *badger.DB
	logger logr.Logger
}

// NewDB opens a BadgerDB at path, or an in-memory one when path is empty.
func NewDB(path string, logger logr.Logger) (*DB, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("%w: storage create directory: failed to create DB directory at %s: %w", apperrors.ErrStorage, path, err)
		}
		opts = badger.DefaultOptions(path)
		opts.ValueLogFileSize = 64 << 20
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: storage open database: failed to open BadgerDB at %q: %w", apperrors.ErrStorage, path, err)
	}

	return &DB{
		db:     db,
		logger: logger,
	}, nil
}

func (d *DB) Get(key string) ([]byte, error) {
	var value []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			value = append([]byte{}, val...)
			return nil
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("key not found: %s: %w", key, ErrNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: storage get %s: %w", apperrors.ErrStorage, key, err)
	}

	return value, nil
}

func (d *DB) update(operation string, key string, fn func(*badger.Txn) error) error {
	err := d.db.Update(fn)
	if err != nil {
		return fmt.Errorf("%w: storage %s %s: %w", apperrors.ErrStorage, operation, key, err)
	}
	return nil
}

func (d *DB) Set(key string, value []byte) error {
	return d.update("set", key, func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (d *DB) Delete(key string) error {
	return d.update("delete", key, func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// List returns every key under prefix. Iteration order is key order, which
// the callers rely on for time-ordered keys.
func (d *DB) List(prefix string) ([]KV, error) {
	var results []KV
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())
			err := item.Value(func(val []byte) error {
				results = append(results, KV{Key: key, Value: append([]byte{}, val...)})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: storage list %s: %w", apperrors.ErrStorage, prefix, err)
	}
	return results, nil
}

type KV struct {
	Key   string
	Value []byte
}

func (d *DB) BatchSet(items map[string][]byte) error {
	if d.db.IsClosed() {
		return fmt.Errorf("%w: storage batch set: %w", apperrors.ErrStorage, badger.ErrDBClosed)
	}
	wb := d.db.NewWriteBatch()
	defer wb.Cancel()

	for key, value := range items {
		if err := wb.Set([]byte(key), value); err != nil {
			return fmt.Errorf("%w: storage batch set %s: %w", apperrors.ErrStorage, key, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("%w: storage batch set flush: %w", apperrors.ErrStorage, err)
	}
	return nil
}

func (d *DB) BatchDelete(keys []string) error {
	if d.db.IsClosed() {
		return fmt.Errorf("%w: storage batch delete: %w", apperrors.ErrStorage, badger.ErrDBClosed)
	}
	wb := d.db.NewWriteBatch()
	defer wb.Cancel()

	for _, key := range keys {
		if err := wb.Delete([]byte(key)); err != nil {
			d.logger.V(1).Info("failed to delete key in batch", "key", key, "error", err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("%w: storage batch delete flush: %w", apperrors.ErrStorage, err)
	}
	return nil
}

// Close is safe to call more than once.
func (d *DB) Close() error {
	if d.db.IsClosed() {
		return nil
	}
	return d.db.Close()
}

// NewTestDB creates an in-memory database closed at test cleanup.
func NewTestDB(t testing.TB) (*DB, error) {
	db, err := NewDB("", logr.Discard())
	if err != nil {
		return nil, fmt.Errorf("failed to create test DB: %w", err)
	}
	if t != nil {
		t.Cleanup(func() { db.Close() })
	}
	return db, nil
}
