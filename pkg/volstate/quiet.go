package volstate

import (
	"context"

	"github.com/dmitrymomot/volumekit/pkg/logger"
)

// ValidateQuiet validates with identity ignored and never fails. Rejections
// are written as a single warning to the registry logger and reported as
// permitted, so callers on recovery paths can keep going.
func (r *Registry) ValidateQuiet(ctx context.Context, d Domain, oldState, newState string) bool {
	_, err := r.Validate(d, oldState, newState, WithIdentityIgnored())
	if err == nil {
		return true
	}

	r.Logger().WarnContext(ctx, "invalid or unknown state transition attempted",
		logger.Component("volstate"),
		logger.Domain(d.String()),
		logger.Transition(oldState, newState),
		logger.Error(err),
	)
	return true
}

// ValidateQuiet runs Registry.ValidateQuiet against the default registry.
func ValidateQuiet(ctx context.Context, d Domain, oldState, newState string) bool {
	return defaultRegistry.ValidateQuiet(ctx, d, oldState, newState)
}
