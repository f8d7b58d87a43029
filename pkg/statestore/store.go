package statestore

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/volumekit/pkg/volstate"
)

// Store persists the current raw state value of a resource per domain.
// Implementations must make SetState atomic per (id, domain).
type Store interface {
	// InitState creates the record. Returns ErrAlreadyExists if one is present.
	InitState(ctx context.Context, id uuid.UUID, d volstate.Domain, state string) error

	// GetState returns the stored raw value. Returns ErrNotFound if no record exists.
	GetState(ctx context.Context, id uuid.UUID, d volstate.Domain) (string, error)

	// SetState replaces the stored value with next only if it still equals
	// expected. Returns ErrConflict on mismatch and ErrNotFound if no record exists.
	SetState(ctx context.Context, id uuid.UUID, d volstate.Domain, expected, next string) error
}

// recordKey is the flat key used by the key-value backends.
func recordKey(id uuid.UUID, d volstate.Domain) string {
	return id.String() + "/" + d.String()
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*BoltStore)(nil)
	_ Store = (*PostgresStore)(nil)
	_ Store = (*RedisStore)(nil)
	_ Store = (*MongoStore)(nil)
	_ Store = (*S3Store)(nil)
)
