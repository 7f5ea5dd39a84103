package events

import (
	"shareit/internal/metrics"

	"github.com/rs/zerolog"
)

// AllTypes lists every event the services publish.
var AllTypes = []string{
	EventBookingCreated,
	EventBookingApproved,
	EventBookingRejected,
	EventCommentAdded,
	EventRequestCreated,
}

// SubscribeLogger writes one audit line per event.
func SubscribeLogger(bus *EventBus, logger *zerolog.Logger) {
	for _, eventType := range AllTypes {
		bus.Subscribe(eventType, func(event *Event) error {
			logger.Info().
				Str("event", event.Type).
				RawJSON("payload", event.Payload).
				Time("at", event.CreatedAt).
				Msg("domain event")
			return nil
		})
	}
}

// SubscribeMetrics counts events by type.
func SubscribeMetrics(bus *EventBus) {
	for _, eventType := range AllTypes {
		bus.Subscribe(eventType, func(event *Event) error {
			metrics.IncEvent(event.Type)
			return nil
		})
	}
}
