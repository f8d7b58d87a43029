package statestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/dmitrymomot/volumekit/pkg/volstate"
)

var stateBucketName = []byte("volume_states")

// BoltConfig configures the embedded bbolt backend.
type BoltConfig struct {
	Path        string        `env:"BOLT_PATH" envDefault:"data/volstate.db"` // Path is the database file; parent directories are created.
	OpenTimeout time.Duration `env:"BOLT_OPEN_TIMEOUT" envDefault:"1s"`       // OpenTimeout bounds waiting for the file lock.
}

// BoltStore keeps records in a local bbolt file. Each write runs in its own
// read-write transaction, which bbolt serializes.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (or creates) the database described by cfg.
func OpenBoltStore(cfg BoltConfig) (*BoltStore, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Join(ErrFailedToConnect, err)
		}
	}
	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: cfg.OpenTimeout})
	if err != nil {
		return nil, errors.Join(ErrFailedToConnect, err)
	}
	s, err := NewBoltStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewBoltStore wraps an open database, creating the bucket if needed.
func NewBoltStore(db *bolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(stateBucketName)
		return err
	})
	if err != nil {
		return nil, errors.Join(ErrFailedToMigrate, err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) InitState(_ context.Context, id uuid.UUID, d volstate.Domain, state string) error {
	key := []byte(recordKey(id, d))
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(stateBucketName)
		if b.Get(key) != nil {
			return ErrAlreadyExists
		}
		return b.Put(key, []byte(state))
	})
}

func (s *BoltStore) GetState(_ context.Context, id uuid.UUID, d volstate.Domain) (string, error) {
	var state string
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(stateBucketName).Get([]byte(recordKey(id, d)))
		if v == nil {
			return ErrNotFound
		}
		state = string(v)
		return nil
	})
	return state, err
}

func (s *BoltStore) SetState(_ context.Context, id uuid.UUID, d volstate.Domain, expected, next string) error {
	key := []byte(recordKey(id, d))
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(stateBucketName)
		v := b.Get(key)
		if v == nil {
			return ErrNotFound
		}
		if string(v) != expected {
			return ErrConflict
		}
		return b.Put(key, []byte(next))
	})
}

// Close releases the database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
