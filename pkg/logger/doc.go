// Package logger builds slog loggers with functional options and provides
// attribute helpers so that every component logs lifecycle data under the
// same keys.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "volstated"),
//	    logger.WithContextValue("request_id", middleware.RequestIDKey),
//	)
//	logger.SetAsDefault(log)
//
//	log.WarnContext(ctx, "invalid or unknown state transition attempted",
//	    logger.Domain("volume"),
//	    logger.Transition("available", "bogus"),
//	    logger.Error(err),
//	)
//
// # Architecture
//
// New picks slog.NewJSONHandler or slog.NewTextHandler, applies static
// attributes and wraps the result in LogHandlerDecorator, which runs the
// registered ContextExtractor callbacks on every record.
//
// Error and ResourceID return an empty attribute for nil input, so they can
// be passed unconditionally.
package logger
