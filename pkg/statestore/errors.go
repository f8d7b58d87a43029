package statestore

import "errors"

var (
	ErrNotFound      = errors.New("state record not found")
	ErrConflict      = errors.New("state record was modified concurrently")
	ErrAlreadyExists = errors.New("state record already exists")

	ErrFailedToConnect   = errors.New("failed to connect to state backend")
	ErrFailedToMigrate   = errors.New("failed to apply state store migrations")
	ErrHealthcheckFailed = errors.New("state backend healthcheck failed")
	ErrUnknownBackend    = errors.New("unknown state backend")
)

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is a lost compare-and-swap.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
