package lifecycle

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/moby/locker"

	"github.com/dmitrymomot/volumekit/pkg/logger"
	"github.com/dmitrymomot/volumekit/pkg/statestore"
	"github.com/dmitrymomot/volumekit/pkg/volstate"
)

// Result describes a completed transition.
type Result struct {
	Previous string           `json:"previous"`
	Current  string           `json:"current"`
	Verdict  volstate.Verdict `json:"verdict"`
}

// Manager serializes state changes per resource.
type Manager struct {
	registry *volstate.Registry
	store    statestore.Store
	locks    *locker.Locker
	log      *slog.Logger
}

// NewManager creates a manager over store. Panics if store is nil.
func NewManager(store statestore.Store, opts ...Option) *Manager {
	if store == nil {
		panic("lifecycle: store is required")
	}
	m := &Manager{
		registry: volstate.Default(),
		store:    store,
		locks:    locker.New(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.Component("lifecycle"))
	return m
}

// Registry returns the registry used for validation.
func (m *Manager) Registry() *volstate.Registry {
	return m.registry
}

// Register creates the record of id in domain with an initial state.
// The base label of initial must be a known state of the domain.
func (m *Manager) Register(ctx context.Context, id uuid.UUID, d volstate.Domain, initial string) error {
	t, err := m.registry.TablesFor(d)
	if err != nil {
		return err
	}
	if _, err := t.Resolve("new", initial); err != nil {
		return err
	}

	if err := m.store.InitState(ctx, id, d, initial); err != nil {
		return errors.Join(ErrRegisterFailed, err)
	}
	m.log.DebugContext(ctx, "resource state registered",
		logger.ResourceID(id),
		logger.Domain(d.String()),
		slog.String("state", initial),
	)
	return nil
}

// Current returns the stored raw state of id in domain.
func (m *Manager) Current(ctx context.Context, id uuid.UUID, d volstate.Domain) (string, error) {
	if !d.Valid() {
		return "", volstate.NewUnknownDomainError(d.String())
	}
	state, err := m.store.GetState(ctx, id, d)
	if err != nil {
		return "", errors.Join(ErrReadFailed, err)
	}
	return state, nil
}

// Transition moves id in domain to next after strict validation. Validation
// options are passed through to the registry. An ignored transition returns
// VerdictIgnore and writes nothing.
func (m *Manager) Transition(ctx context.Context, id uuid.UUID, d volstate.Domain, next string, opts ...volstate.ValidateOption) (Result, error) {
	return m.transition(ctx, id, d, next, func(current string) (volstate.Verdict, error) {
		return m.registry.Validate(d, current, next, opts...)
	})
}

// TransitionQuiet moves id in domain to next using quiet validation. The
// write is skipped only when both base labels match.
func (m *Manager) TransitionQuiet(ctx context.Context, id uuid.UUID, d volstate.Domain, next string) (Result, error) {
	return m.transition(ctx, id, d, next, func(current string) (volstate.Verdict, error) {
		m.registry.ValidateQuiet(ctx, d, current, next)
		if volstate.BaseLabel(current) == volstate.BaseLabel(next) {
			return volstate.VerdictIgnore, nil
		}
		return volstate.VerdictAllow, nil
	})
}

func (m *Manager) transition(
	ctx context.Context,
	id uuid.UUID,
	d volstate.Domain,
	next string,
	decide func(current string) (volstate.Verdict, error),
) (Result, error) {
	if !d.Valid() {
		return Result{}, volstate.NewUnknownDomainError(d.String())
	}

	key := id.String()
	m.locks.Lock(key)
	defer func() { _ = m.locks.Unlock(key) }()

	current, err := m.store.GetState(ctx, id, d)
	if err != nil {
		return Result{}, errors.Join(ErrReadFailed, err)
	}

	verdict, err := decide(current)
	res := Result{Previous: current, Current: current, Verdict: verdict}
	if err != nil || verdict == volstate.VerdictIgnore {
		return res, err
	}

	if err := m.store.SetState(ctx, id, d, current, next); err != nil {
		return res, errors.Join(ErrTransitionFailed, err)
	}
	res.Current = next

	m.log.InfoContext(ctx, "state transition applied",
		logger.ResourceID(id),
		logger.Domain(d.String()),
		logger.Transition(current, next),
		logger.Verdict(verdict.String()),
	)
	return res, nil
}
