package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/volumekit/pkg/createflow"
	"github.com/dmitrymomot/volumekit/pkg/lifecycle"
	"github.com/dmitrymomot/volumekit/pkg/logger"
	"github.com/dmitrymomot/volumekit/pkg/volstate"
)

const maxBodySize = 1 << 16

// Handler serves the transition tables and per-volume state records.
type Handler struct {
	states *lifecycle.Manager
	flow   *createflow.Flow
	log    *slog.Logger
	checks []Check
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// WithChecks registers readiness checks served on /readyz.
func WithChecks(checks ...Check) HandlerOption {
	return func(h *Handler) {
		h.checks = append(h.checks, checks...)
	}
}

// WithCreateFlow enables POST /volumes, which runs flow for each request.
func WithCreateFlow(flow *createflow.Flow) HandlerOption {
	return func(h *Handler) {
		h.flow = flow
	}
}

// NewHandler creates a handler over states. Panics if states is nil.
func NewHandler(states *lifecycle.Manager, opts ...HandlerOption) *Handler {
	if states == nil {
		panic("api: lifecycle manager is required")
	}
	h := &Handler{states: states, log: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.With(logger.Component("api"))
	return h
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// wrap renders errors returned by fn through the envelope.
func (h *Handler) wrap(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		status, code, msg := classify(err)
		if status >= http.StatusInternalServerError {
			h.log.ErrorContext(r.Context(), "request failed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				logger.Error(err),
			)
		}
		writeJSON(w, status, Response{Code: code, Error: &ErrorDetail{Code: code, Message: msg}})
	}
}

// DomainInfo describes one published table.
type DomainInfo struct {
	Name        string                `json:"name"`
	States      []string              `json:"states"`
	Transitions []volstate.Transition `json:"transitions"`
}

func (h *Handler) listDomains(w http.ResponseWriter, _ *http.Request) error {
	names := make([]string, 0, len(volstate.Domains()))
	for _, d := range volstate.Domains() {
		names = append(names, d.String())
	}
	writeData(w, http.StatusOK, names)
	return nil
}

func (h *Handler) getDomain(w http.ResponseWriter, r *http.Request) error {
	d, err := volstate.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		return err
	}
	t, err := h.states.Registry().TablesFor(d)
	if err != nil {
		return err
	}
	writeData(w, http.StatusOK, DomainInfo{
		Name:        d.String(),
		States:      t.States(),
		Transitions: t.Transitions(),
	})
	return nil
}

// ValidateRequest is the body of POST /domains/{domain}/validate.
type ValidateRequest struct {
	Old             string                `json:"old"`
	New             string                `json:"new"`
	IdentityIgnored bool                  `json:"identity_ignored"`
	Ignored         []volstate.Transition `json:"ignored"`
}

// ValidateResponse reports the verdict of an accepted transition.
type ValidateResponse struct {
	Verdict volstate.Verdict `json:"verdict"`
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) error {
	d, err := volstate.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		return err
	}
	var req ValidateRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	var opts []volstate.ValidateOption
	if req.IdentityIgnored {
		opts = append(opts, volstate.WithIdentityIgnored())
	}
	if len(req.Ignored) > 0 {
		opts = append(opts, volstate.WithIgnoredTransitions(req.Ignored...))
	}

	verdict, err := h.states.Registry().Validate(d, req.Old, req.New, opts...)
	if err != nil {
		return err
	}
	writeData(w, http.StatusOK, ValidateResponse{Verdict: verdict})
	return nil
}

// StateResponse is the stored state of one volume in one domain.
type StateResponse struct {
	VolumeID uuid.UUID `json:"volume_id"`
	Domain   string    `json:"domain"`
	State    string    `json:"state"`
}

// StateRequest is the body of POST and PUT /volumes/{id}/states/{domain}.
// Quiet applies only to PUT.
type StateRequest struct {
	State string `json:"state"`
	Quiet bool   `json:"quiet"`
}

// TransitionResponse reports an applied or ignored transition.
type TransitionResponse struct {
	VolumeID uuid.UUID        `json:"volume_id"`
	Domain   string           `json:"domain"`
	Previous string           `json:"previous"`
	Current  string           `json:"current"`
	Verdict  volstate.Verdict `json:"verdict"`
}

func (h *Handler) getState(w http.ResponseWriter, r *http.Request) error {
	id, d, err := volumeParams(r)
	if err != nil {
		return err
	}
	state, err := h.states.Current(volumeContext(r, id, d), id, d)
	if err != nil {
		return err
	}
	writeData(w, http.StatusOK, StateResponse{VolumeID: id, Domain: d.String(), State: state})
	return nil
}

func (h *Handler) registerState(w http.ResponseWriter, r *http.Request) error {
	id, d, err := volumeParams(r)
	if err != nil {
		return err
	}
	var req StateRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if err := h.states.Register(volumeContext(r, id, d), id, d, req.State); err != nil {
		return err
	}
	writeData(w, http.StatusCreated, StateResponse{VolumeID: id, Domain: d.String(), State: req.State})
	return nil
}

func (h *Handler) transitionState(w http.ResponseWriter, r *http.Request) error {
	id, d, err := volumeParams(r)
	if err != nil {
		return err
	}
	var req StateRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	ctx := volumeContext(r, id, d)
	var res lifecycle.Result
	if req.Quiet {
		res, err = h.states.TransitionQuiet(ctx, id, d, req.State)
	} else {
		res, err = h.states.Transition(ctx, id, d, req.State)
	}
	if err != nil {
		return err
	}
	writeData(w, http.StatusOK, TransitionResponse{
		VolumeID: id,
		Domain:   d.String(),
		Previous: res.Previous,
		Current:  res.Current,
		Verdict:  res.Verdict,
	})
	return nil
}

func (h *Handler) createVolume(w http.ResponseWriter, r *http.Request) error {
	var req createflow.Request
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	res, err := h.flow.Run(r.Context(), req)
	if err != nil {
		return err
	}
	writeData(w, http.StatusCreated, res)
	return nil
}

func volumeParams(r *http.Request) (uuid.UUID, volstate.Domain, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, 0, badRequest(fmt.Errorf("invalid volume id: %w", err))
	}
	d, err := volstate.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		return uuid.Nil, 0, err
	}
	return id, d, nil
}

// volumeContext tags every record logged for the request with the volume and
// domain.
func volumeContext(r *http.Request, id uuid.UUID, d volstate.Domain) context.Context {
	return logger.ContextWithAttrs(r.Context(), logger.ResourceID(id), logger.Domain(d.String()))
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest(fmt.Errorf("invalid request body: %w", err))
	}
	if dec.More() {
		return badRequest(errors.New("invalid request body: trailing data"))
	}
	return nil
}
