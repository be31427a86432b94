package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDBStore is the default persistent backend.
type LevelDBStore struct {
	db *leveldb.DB
}

// NewLevelDBStore creates or opens a LevelDB database at path.
func NewLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("kv: failed to open leveldb at %s: %w", path, err)
	}
	log.Info().Str("path", path).Msg("kv: opened LevelDB store")
	return &LevelDBStore{db: db}, nil
}

func (s *LevelDBStore) Read(_ context.Context, key string) (string, error) {
	value, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("kv: failed to read %s: %w", key, err)
	}
	return string(value), nil
}

func (s *LevelDBStore) Write(_ context.Context, key, value string) error {
	if err := s.db.Put([]byte(key), []byte(value), nil); err != nil {
		return fmt.Errorf("kv: failed to write %s: %w", key, err)
	}
	return nil
}

func (s *LevelDBStore) Delete(_ context.Context, key string) error {
	if err := s.db.Delete([]byte(key), nil); err != nil {
		return fmt.Errorf("kv: failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
