// Package leveldb is the default RecordStore: an embedded on-disk key-value
// database, the server-side counterpart of browser local storage.
package leveldb

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
)

// Store implements repository.RecordStore on top of goleveldb.
type Store struct {
	db    *leveldb.DB
	write *opt.WriteOptions
}

// Open opens (or creates) the database directory at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %s: %w", path, err)
	}
	return New(db), nil
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("open in-memory leveldb: %w", err)
	}
	return New(db), nil
}

// New wraps an already opened database. Writes are synced so a successful Put
// survives a crash.
func New(db *leveldb.DB) *Store {
	return &Store{db: db, write: &opt.WriteOptions{Sync: true}}
}

// Get returns the record stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, apperrors.NotFound("record", key)
		}
		return nil, fmt.Errorf("leveldb get %s: %w", key, err)
	}
	return data, nil
}

// Put stores data under key.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.db.Put([]byte(key), data, s.write); err != nil {
		return fmt.Errorf("leveldb put %s: %w", key, err)
	}
	return nil
}

// Delete removes the record under key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.db.Delete([]byte(key), s.write); err != nil {
		return fmt.Errorf("leveldb delete %s: %w", key, err)
	}
	return nil
}

// Ping reports whether the database is still open.
func (s *Store) Ping(_ context.Context) error {
	if _, err := s.db.GetProperty("leveldb.num-files-at-level0"); err != nil {
		return fmt.Errorf("leveldb ping: %w", err)
	}
	return nil
}

// Close releases the database files.
func (s *Store) Close() error {
	return s.db.Close()
}
