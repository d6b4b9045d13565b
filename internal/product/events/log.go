package events

import (
	"context"
	"log/slog"

	"productverification/internal/product/models"
	"productverification/pkg/requestcontext"
)

// LogListener writes every event to a structured logger.
type LogListener struct {
	logger *slog.Logger
}

func NewLogListener(logger *slog.Logger) *LogListener {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogListener{logger: logger}
}

func (l *LogListener) Handle(ctx context.Context, e models.DomainEvent) error {
	l.logger.InfoContext(ctx, "domain event dispatched",
		"event_type", e.EventName(),
		"event_id", e.EventID(),
		"product_id", e.AggregateID(),
		"occurred_at", e.OccurredAt(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}
