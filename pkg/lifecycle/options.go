package lifecycle

import (
	"log/slog"

	"github.com/dmitrymomot/volumekit/pkg/volstate"
)

// Option configures a Manager.
type Option func(*Manager)

// WithRegistry replaces the default transition registry.
func WithRegistry(r *volstate.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// WithLogger sets the logger for transition records.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}
