package service

import (
	"context"
	"time"

	"shareit/internal/domain"
	"shareit/internal/logging"

	"github.com/rs/zerolog"
)

// base holds what every service needs: the unit of work, the event bus, a clock and a logger.
type base struct {
	tx       domain.Transactor
	eventBus domain.EventPublisher
	now      domain.Clock
	logger   *zerolog.Logger
}

func newBase(tx domain.Transactor, eventBus domain.EventPublisher, clock domain.Clock, logger *zerolog.Logger, component string) base {
	if clock == nil {
		clock = time.Now
	}
	return base{
		tx:       tx,
		eventBus: eventBus,
		now:      clock,
		logger:   logging.Component(logger, component),
	}
}

func (b *base) log(ctx context.Context) *zerolog.Logger {
	return logging.FromContext(ctx, b.logger)
}

func (b *base) publish(ctx context.Context, eventType string, payload interface{}) {
	if b.eventBus == nil {
		return
	}
	if err := b.eventBus.PublishJSON(eventType, payload); err != nil {
		b.log(ctx).Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}

func (b *base) read(ctx context.Context, fn func(store domain.Store) error) error {
	return b.tx.WithinTx(ctx, true, fn)
}

func (b *base) write(ctx context.Context, fn func(store domain.Store) error) error {
	return b.tx.WithinTx(ctx, false, fn)
}
