package createflow

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/volumekit/pkg/logger"
)

// LogScheduler accepts every cast and only records it. It stands in for a
// placement service in single-node deployments.
type LogScheduler struct {
	log *slog.Logger
}

// NewLogScheduler returns a scheduler writing to log, or slog.Default if nil.
func NewLogScheduler(log *slog.Logger) *LogScheduler {
	if log == nil {
		log = slog.Default()
	}
	return &LogScheduler{log: log.With(logger.Component("scheduler"))}
}

func (s *LogScheduler) Cast(ctx context.Context, req Request) error {
	s.log.InfoContext(ctx, "volume cast",
		logger.ResourceID(req.VolumeID),
		slog.Int("size_gb", req.SizeGB),
		slog.String("volume_type_id", req.VolumeTypeID),
	)
	return nil
}
