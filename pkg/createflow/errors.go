package createflow

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest = errors.New("invalid create volume request")
	ErrFlowFailed     = errors.New("create volume flow failed")
	ErrRevertFailed   = errors.New("create volume flow revert failed")

	ErrQuotaExceeded       = errors.New("volume quota exceeded")
	ErrReservationNotFound = errors.New("quota reservation not found")
)

// StepError names the step that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// IsStepError reports whether err carries a failed step and returns its name.
func IsStepError(err error) (string, bool) {
	var e *StepError
	if errors.As(err, &e) {
		return e.Step, true
	}
	return "", false
}
