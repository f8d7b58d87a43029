package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/volumekit/pkg/logger"
)

// Routes returns the router serving every endpoint.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Get("/healthz", h.liveness)
	r.Get("/readyz", h.readiness)

	r.Route("/domains", func(r chi.Router) {
		r.Get("/", h.wrap(h.listDomains))
		r.Get("/{domain}", h.wrap(h.getDomain))
		r.Post("/{domain}/validate", h.wrap(h.validate))
	})

	if h.flow != nil {
		r.Post("/volumes", h.wrap(h.createVolume))
	}

	r.Route("/volumes/{id}/states/{domain}", func(r chi.Router) {
		r.Get("/", h.wrap(h.getState))
		r.Post("/", h.wrap(h.registerState))
		r.Put("/", h.wrap(h.transitionState))
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, Response{
			Code:  CodeNotFound,
			Error: &ErrorDetail{Code: CodeNotFound, Message: http.StatusText(http.StatusNotFound)},
		})
	})
	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)

		h.log.DebugContext(r.Context(), "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			logger.Duration(time.Since(started)),
		)
	})
}
