package volstate

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownDomain     = errors.New("unknown lifecycle domain")
	ErrUnknownState      = errors.New("unknown state")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrInvalidRegistry   = errors.New("invalid transition registry")
)

// UnknownDomainError reports a domain name outside the fixed set.
type UnknownDomainError struct {
	Name string
}

func (e *UnknownDomainError) Error() string {
	return fmt.Sprintf("unknown lifecycle domain '%s'", e.Name)
}

func (e *UnknownDomainError) Unwrap() error { return ErrUnknownDomain }

func NewUnknownDomainError(name string) *UnknownDomainError {
	return &UnknownDomainError{Name: name}
}

// UnknownStateError reports a base label missing from the domain's known states.
// Role is "old" or "new" depending on which argument carried the label.
type UnknownStateError struct {
	Domain Domain
	Role   string
	State  string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("unknown %s %s state '%s'", e.Role, e.Domain, e.State)
}

func (e *UnknownStateError) Unwrap() error { return ErrUnknownState }

func NewUnknownStateError(domain Domain, role, state string) *UnknownStateError {
	return &UnknownStateError{Domain: domain, Role: role, State: state}
}

// InvalidTransitionError reports a pair of known states with no edge between them.
type InvalidTransitionError struct {
	Domain Domain
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition from '%s' to '%s'", e.Domain, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

func NewInvalidTransitionError(domain Domain, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{Domain: domain, From: from, To: to}
}

func IsUnknownDomainError(err error) bool {
	var e *UnknownDomainError
	return errors.As(err, &e)
}

func IsUnknownStateError(err error) bool {
	var e *UnknownStateError
	return errors.As(err, &e)
}

func IsInvalidTransitionError(err error) bool {
	var e *InvalidTransitionError
	return errors.As(err, &e)
}
