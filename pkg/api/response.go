package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/volumekit/pkg/createflow"
	"github.com/dmitrymomot/volumekit/pkg/statestore"
	"github.com/dmitrymomot/volumekit/pkg/volstate"
)

// Response is the JSON envelope of every endpoint.
type Response struct {
	Code  string       `json:"code,omitempty"`
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes returned in ErrorDetail.Code.
const (
	CodeOK                     = "ok"
	CodeBadRequest             = "bad_request"
	CodeUnknownDomain          = "unknown_domain"
	CodeUnknownState           = "unknown_state"
	CodeInvalidTransition      = "invalid_transition"
	CodeNotFound               = "not_found"
	CodeAlreadyExists          = "already_exists"
	CodeConcurrentModification = "concurrent_modification"
	CodeQuotaExceeded          = "quota_exceeded"
	CodeInternal               = "internal_error"
)

// httpError carries a status and code chosen by the handler.
type httpError struct {
	status int
	code   string
	err    error
}

func (e *httpError) Error() string { return e.err.Error() }
func (e *httpError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &httpError{status: http.StatusBadRequest, code: CodeBadRequest, err: err}
}

// classify maps err to a status, code and client-facing message.
func classify(err error) (int, string, string) {
	var he *httpError
	switch {
	case errors.As(err, &he):
		return he.status, he.code, he.err.Error()
	case errors.Is(err, createflow.ErrInvalidRequest):
		return http.StatusBadRequest, CodeBadRequest, requestProblem(err)
	case errors.Is(err, createflow.ErrQuotaExceeded):
		return http.StatusConflict, CodeQuotaExceeded, createflow.ErrQuotaExceeded.Error()
	case volstate.IsUnknownDomainError(err):
		return http.StatusNotFound, CodeUnknownDomain, err.Error()
	case volstate.IsUnknownStateError(err):
		return http.StatusUnprocessableEntity, CodeUnknownState, err.Error()
	case volstate.IsInvalidTransitionError(err):
		return http.StatusConflict, CodeInvalidTransition, err.Error()
	case statestore.IsNotFound(err):
		return http.StatusNotFound, CodeNotFound, statestore.ErrNotFound.Error()
	case errors.Is(err, statestore.ErrAlreadyExists):
		return http.StatusConflict, CodeAlreadyExists, statestore.ErrAlreadyExists.Error()
	case statestore.IsConflict(err):
		return http.StatusConflict, CodeConcurrentModification, statestore.ErrConflict.Error()
	default:
		return http.StatusInternalServerError, CodeInternal, http.StatusText(http.StatusInternalServerError)
	}
}

// requestProblem returns the message of the failed step, without the
// flow-level sentinel joined in front of it.
func requestProblem(err error) string {
	var se *createflow.StepError
	if errors.As(err, &se) {
		return se.Err.Error()
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Code: CodeOK, Data: data})
}
