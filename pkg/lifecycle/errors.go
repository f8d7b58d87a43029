package lifecycle

import "errors"

var (
	ErrRegisterFailed   = errors.New("failed to register resource state")
	ErrReadFailed       = errors.New("failed to read resource state")
	ErrTransitionFailed = errors.New("failed to persist state transition")
)
