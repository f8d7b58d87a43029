package api

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrymomot/volumekit/pkg/logger"
)

// Check is a named readiness probe, usually a store healthcheck.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

const checkTimeout = 3 * time.Second

func (h *Handler) liveness(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "alive"})
}

// readiness runs every check and reports each result by name.
func (h *Handler) readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for _, c := range h.checks {
		if err := c.Fn(ctx); err != nil {
			h.log.ErrorContext(ctx, "readiness check failed", logger.Component(c.Name), logger.Error(err))
			results[c.Name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[c.Name] = "ok"
	}

	if status != http.StatusOK {
		writeJSON(w, status, Response{
			Code:  "not_ready",
			Data:  results,
			Error: &ErrorDetail{Code: "not_ready", Message: "one or more dependencies are unavailable"},
		})
		return
	}
	writeData(w, status, results)
}
