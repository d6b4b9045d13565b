package events

import (
	"context"
	"fmt"
	"log/slog"

	"productverification/internal/product/models"
	"productverification/pkg/platform/circuit"
	"productverification/pkg/platform/sentinel"
)

// BreakerListener skips its inner listener while the breaker is open, so a
// broker outage costs one fast failure per event instead of a timeout.
type BreakerListener struct {
	next    Listener
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewBreakerListener(next Listener, breaker *circuit.Breaker, logger *slog.Logger) *BreakerListener {
	if logger == nil {
		logger = slog.Default()
	}
	return &BreakerListener{next: next, breaker: breaker, logger: logger}
}

func (l *BreakerListener) Handle(ctx context.Context, e models.DomainEvent) error {
	if !l.breaker.Allow() {
		return fmt.Errorf("%s circuit open: %w", l.breaker.Name(), sentinel.ErrUnavailable)
	}
	if err := l.next.Handle(ctx, e); err != nil {
		if _, change := l.breaker.RecordFailure(); change.Opened {
			l.logger.WarnContext(ctx, "event listener circuit opened",
				"circuit", l.breaker.Name(),
				"error", err,
			)
		}
		return err
	}
	if _, change := l.breaker.RecordSuccess(); change.Closed {
		l.logger.InfoContext(ctx, "event listener circuit closed", "circuit", l.breaker.Name())
	}
	return nil
}
