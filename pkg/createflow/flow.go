package createflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/volumekit/pkg/lifecycle"
	"github.com/dmitrymomot/volumekit/pkg/logger"
	"github.com/dmitrymomot/volumekit/pkg/volstate"
)

// Reservation identifies reserved quota until it is committed or rolled back.
type Reservation struct {
	ID     string
	SizeGB int
}

// Quotas reserves capacity for new volumes.
type Quotas interface {
	Reserve(ctx context.Context, req Request) (Reservation, error)
	Commit(ctx context.Context, r Reservation) error
	Rollback(ctx context.Context, r Reservation) error
}

// Scheduler places a created volume on a backend.
type Scheduler interface {
	Cast(ctx context.Context, req Request) error
}

// Result reports the volume created by a successful run.
type Result struct {
	VolumeID   uuid.UUID `json:"volume_id"`
	MicroState string    `json:"micro_state"`
	Steps      []string  `json:"steps"`
}

// Flow runs the create-volume pipeline.
type Flow struct {
	states    *lifecycle.Manager
	quotas    Quotas
	scheduler Scheduler
	log       *slog.Logger
}

// Option configures a Flow.
type Option func(*Flow)

// WithLogger sets the flow logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Flow) {
		if l != nil {
			f.log = l
		}
	}
}

// New creates a flow. Panics if any collaborator is nil.
func New(states *lifecycle.Manager, quotas Quotas, scheduler Scheduler, opts ...Option) *Flow {
	if states == nil {
		panic("createflow: lifecycle manager is required")
	}
	if quotas == nil {
		panic("createflow: quotas are required")
	}
	if scheduler == nil {
		panic("createflow: scheduler is required")
	}
	f := &Flow{
		states:    states,
		quotas:    quotas,
		scheduler: scheduler,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = f.log.With(logger.Component("createflow"))
	return f
}

// run carries data between steps of one invocation.
type run struct {
	req         Request
	reservation Reservation
	reserved    bool
}

type step struct {
	name    string
	execute func(ctx context.Context, r *run) error
	revert  func(ctx context.Context, r *run) error
}

func (f *Flow) steps() []step {
	return []step{
		{
			name: volstate.MicroStateExtractRequest,
			execute: func(_ context.Context, r *run) error {
				req, err := extract(r.req)
				if err != nil {
					return err
				}
				r.req = req
				return nil
			},
		},
		{
			name:    volstate.MicroStateQuotaReserve,
			execute: f.reserveQuota,
			revert:  f.rollbackQuota,
		},
		{
			name:    volstate.MicroStateEntryCreate,
			execute: f.createEntry,
			revert:  f.revertEntry,
		},
		{
			name:    volstate.MicroStateQuotaCommit,
			execute: f.commitQuota,
		},
		{
			name:    volstate.MicroStateVolumeCast,
			execute: f.castVolume,
		},
	}
}

// Run executes every step for req. On failure, completed steps are reverted
// and the returned error wraps ErrFlowFailed, the *StepError of the failed
// step and any revert failure.
func (f *Flow) Run(ctx context.Context, req Request) (Result, error) {
	r := &run{req: req}
	var done []step

	for _, s := range f.steps() {
		started := time.Now()
		if err := s.execute(ctx, r); err != nil {
			stepErr := &StepError{Step: s.name, Err: err}
			f.log.ErrorContext(ctx, "create volume step failed",
				logger.ResourceID(r.req.VolumeID),
				logger.Step(s.name),
				logger.Error(err),
			)
			return Result{VolumeID: r.req.VolumeID}, errors.Join(ErrFlowFailed, stepErr, f.revert(ctx, r, done))
		}
		f.log.DebugContext(ctx, "create volume step completed",
			logger.ResourceID(r.req.VolumeID),
			logger.Step(s.name),
			logger.Duration(time.Since(started)),
		)
		done = append(done, s)
		if s.name == volstate.MicroStateExtractRequest {
			ctx = logger.ContextWithAttrs(ctx, logger.ResourceID(r.req.VolumeID))
		}
	}

	names := make([]string, len(done))
	for i, s := range done {
		names[i] = s.name
	}
	return Result{
		VolumeID:   r.req.VolumeID,
		MicroState: volstate.MicroStateVolumeCast,
		Steps:      names,
	}, nil
}

// revert undoes done in reverse order. Every revert runs even if an earlier
// one fails.
func (f *Flow) revert(ctx context.Context, r *run, done []step) error {
	var errs []error
	for i := len(done) - 1; i >= 0; i-- {
		s := done[i]
		if s.revert == nil {
			continue
		}
		if err := s.revert(ctx, r); err != nil {
			f.log.ErrorContext(ctx, "create volume step revert failed",
				logger.ResourceID(r.req.VolumeID),
				logger.Step(s.name),
				logger.Error(err),
			)
			errs = append(errs, &StepError{Step: s.name, Err: err})
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrRevertFailed}, errs...)...)
}

func (f *Flow) reserveQuota(ctx context.Context, r *run) error {
	res, err := f.quotas.Reserve(ctx, r.req)
	if err != nil {
		return err
	}
	r.reservation = res
	r.reserved = true
	return nil
}

func (f *Flow) rollbackQuota(ctx context.Context, r *run) error {
	if !r.reserved {
		return nil
	}
	if err := f.quotas.Rollback(ctx, r.reservation); err != nil {
		return err
	}
	r.reserved = false
	return nil
}

func (f *Flow) createEntry(ctx context.Context, r *run) error {
	id := r.req.VolumeID
	if err := f.states.Register(ctx, id, volstate.DomainVolume, volstate.VolumeCreating); err != nil {
		return err
	}
	if err := f.states.Register(ctx, id, volstate.DomainMicroState, volstate.MicroStateEntryCreate); err != nil {
		// The volume record exists; put it in error so it is not left creating.
		_, verr := f.states.Transition(ctx, id, volstate.DomainVolume, volstate.VolumeError)
		return errors.Join(err, verr)
	}
	return nil
}

func (f *Flow) revertEntry(ctx context.Context, r *run) error {
	id := r.req.VolumeID
	_, verr := f.states.Transition(ctx, id, volstate.DomainVolume, volstate.VolumeError, volstate.WithIdentityIgnored())
	_, merr := f.states.TransitionQuiet(ctx, id, volstate.DomainMicroState, volstate.MicroStateDeleted)
	return errors.Join(verr, merr)
}

func (f *Flow) commitQuota(ctx context.Context, r *run) error {
	if err := f.quotas.Commit(ctx, r.reservation); err != nil {
		return err
	}
	r.reserved = false
	_, err := f.states.Transition(ctx, r.req.VolumeID, volstate.DomainMicroState, volstate.MicroStateQuotaCommit)
	return err
}

func (f *Flow) castVolume(ctx context.Context, r *run) error {
	if err := f.scheduler.Cast(ctx, r.req); err != nil {
		return err
	}
	_, err := f.states.Transition(ctx, r.req.VolumeID, volstate.DomainMicroState, volstate.MicroStateVolumeCast)
	return err
}
